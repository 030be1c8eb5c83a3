package httpapi

import (
	"net/http"

	"localcart-be/internal/address"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) ListAddresses(c *gin.Context) {
	list, err := h.Addresses.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) SaveAddress(c *gin.Context) {
	var input address.SaveAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	a, err := h.Addresses.Save(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}

	status := http.StatusOK
	if input.ID == "" {
		status = http.StatusCreated
	}
	c.JSON(status, a)
}

func (h *Handler) DeleteAddress(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}

	if err := h.Addresses.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
}

func (h *Handler) SetDefaultAddress(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}

	if err := h.Addresses.SetDefault(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "default address updated"})
}

func uuidParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid address id")
		return uuid.Nil, false
	}
	return id, true
}
