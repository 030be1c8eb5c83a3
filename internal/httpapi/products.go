package httpapi

import (
	"encoding/json"
	"net/http"
	"os"

	"localcart-be/internal/logger"
	"localcart-be/internal/product"
	"localcart-be/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) ListProducts(c *gin.Context) {
	shopID, err := utils.ToInt64(c.Query("shopId"))
	if err != nil {
		badRequest(c, "shopId is required")
		return
	}

	products, err := h.Products.ListByShop(c.Request.Context(), shopID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	p, err := h.Products.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	input, stored, ok := h.bindProduct(c)
	if !ok {
		return
	}

	p, err := h.Products.Create(c.Request.Context(), input)
	if err != nil {
		discardUpload(c, stored)
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	input, stored, ok := h.bindProduct(c)
	if !ok {
		return
	}

	p, err := h.Products.Update(c.Request.Context(), id, input)
	if err != nil {
		discardUpload(c, stored)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) AdjustStock(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var adj product.StockAdjustment
	if err := c.ShouldBindJSON(&adj); err != nil {
		badRequest(c, err.Error())
		return
	}

	stock, err := h.Products.AdjustStock(c.Request.Context(), id, adj)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock": stock})
}

// bindProduct accepts JSON or a multipart form. In a form, units travel as
// a JSON string and the picture as the "image" file.
func (h *Handler) bindProduct(c *gin.Context) (product.SaveProductInput, string, bool) {
	var input product.SaveProductInput
	if err := c.ShouldBind(&input); err != nil {
		badRequest(c, err.Error())
		return input, "", false
	}

	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return input, "", true
	}

	if raw := c.PostForm("units"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Units); err != nil {
			badRequest(c, "units must be a JSON array")
			return input, "", false
		}
	}

	file, err := c.FormFile("image")
	if err != nil {
		return input, "", true
	}
	if h.Images == nil {
		badRequest(c, "image upload is not enabled")
		return input, "", false
	}

	path, url, err := h.Images.Allocate(file.Filename)
	if err != nil {
		fail(c, err)
		return input, "", false
	}
	if err := c.SaveUploadedFile(file, path); err != nil {
		fail(c, err)
		return input, "", false
	}

	input.ImageURL = &url
	return input, path, true
}

func discardUpload(c *gin.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		logger.FromCtx(c.Request.Context()).Warn("orphan upload left on disk",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}
