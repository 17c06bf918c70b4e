package api

import (
	"immofds/server/internal/apperr"
	"immofds/server/internal/auth"
	"immofds/server/internal/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

type NoteRequest struct {
	Content string `json:"content"`
}

type ContactStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SubmitGeneralContact(c *gin.Context) {
	var in models.GeneralContactInput
	if !h.bindJSON(c, &in) {
		return
	}
	req, err := h.contacts.SubmitGeneral(c.Request.Context(), in)
	h.respondSubmitted(c, req, err)
}

func (h *Handler) SubmitSellYourHome(c *gin.Context) {
	var in models.SellYourHomeInput
	if !h.bindJSON(c, &in) {
		return
	}
	req, err := h.contacts.SubmitSellYourHome(c.Request.Context(), in)
	h.respondSubmitted(c, req, err)
}

func (h *Handler) SubmitVisitRequest(c *gin.Context) {
	var in models.VisitRequestInput
	if !h.bindJSON(c, &in) {
		return
	}
	req, err := h.contacts.SubmitVisitRequest(c.Request.Context(), in)
	h.respondSubmitted(c, req, err)
}

func (h *Handler) respondSubmitted(c *gin.Context, req *models.ContactRequest, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.ContactReceived(req.Type)
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListContacts(c *gin.Context) {
	var errs queryErrors
	filter := models.ContactFilter{
		Status: enumParam[models.ContactStatus](c, "status", &errs),
		Type:   enumParam[models.ContactType](c, "type", &errs),
	}
	if err := errs.err(); err != nil {
		h.respondError(c, err)
		return
	}
	page, err := parsePage(c, h.cfg.Listings.AdminPageSize, h.cfg.Listings.MaxPageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.contacts.List(c.Request.Context(), filter, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetContact(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	req, err := h.contacts.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) DeleteContact(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.contacts.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateContactStatus(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body ContactStatusRequest
	if !h.bindJSON(c, &body) {
		return
	}
	status := normaliseEnum(body.Status)
	if status == "" {
		h.respondError(c, apperr.Validation("status is required"))
		return
	}
	req, err := h.contacts.UpdateStatus(c.Request.Context(), id, models.ContactStatus(status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) AddContactNote(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body NoteRequest
	if !h.bindJSON(c, &body) {
		return
	}
	note, err := h.contacts.AddNote(c.Request.Context(), id, auth.CurrentUserID(c), body.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *Handler) UpdateContactNote(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	noteID, err := parseID(c, "noteId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body NoteRequest
	if !h.bindJSON(c, &body) {
		return
	}
	note, err := h.contacts.UpdateNote(c.Request.Context(), id, noteID, auth.CurrentUserID(c), body.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *Handler) DeleteContactNote(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	noteID, err := parseID(c, "noteId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.contacts.DeleteNote(c.Request.Context(), id, noteID, auth.CurrentUserID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
