package api

import (
	"context"
	"immofds/server/internal/auth"
	"immofds/server/internal/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var in models.LoginInput
	if !h.bindJSON(c, &in) {
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Refresh(c *gin.Context) {
	var in models.RefreshInput
	if !h.bindJSON(c, &in) {
		return
	}
	resp, err := h.auth.Refresh(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	var in models.RefreshInput
	if !h.bindJSON(c, &in) {
		return
	}
	if err := h.auth.Logout(c.Request.Context(), in); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	page, err := parsePage(c, h.cfg.Listings.AdminPageSize, h.cfg.Listings.MaxPageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}
	result, err := h.users.List(c.Request.Context(), page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var in models.CreateUserInput
	if !h.bindJSON(c, &in) {
		return
	}
	user, err := h.users.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var in models.UpdateUserInput
	if !h.bindJSON(c, &in) {
		return
	}
	user, err := h.users.Update(c.Request.Context(), id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.users.Delete(c.Request.Context(), id, auth.CurrentUserID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PurgeExpiredSessions drops refresh tokens that can no longer be used.
func (h *Handler) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return h.auth.PurgeExpired(ctx)
}
