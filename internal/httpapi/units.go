package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createUnitRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
}

func (h *Handler) ListUnits(c *gin.Context) {
	units, err := h.Units.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

func (h *Handler) CreateUnit(c *gin.Context) {
	var req createUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	u, err := h.Units.Create(c.Request.Context(), req.Name, req.Category)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}
