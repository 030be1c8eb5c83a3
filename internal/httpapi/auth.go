package httpapi

import (
	"net/http"

	"localcart-be/internal/user"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var input user.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	sess, err := h.Users.Register(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}

	h.setToken(c, sess.Token)
	c.JSON(http.StatusCreated, sess)
}

func (h *Handler) Login(c *gin.Context) {
	var input user.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	sess, err := h.Users.Login(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}

	h.setToken(c, sess.Token)
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) Refresh(c *gin.Context) {
	sess, err := h.Users.Refresh(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	h.setToken(c, sess.Token)
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, "", -1, "/", "", h.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) setToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(tokenCookie, token, tokenCookieAge, "/", "", h.SecureCookie, true)
}
