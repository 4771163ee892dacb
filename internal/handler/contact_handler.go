package handler

import (
	"net/http"
	"strconv"

	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/service"
)

type ContactHandler struct {
	contact *service.ContactService
}

func NewContactHandler(contact *service.ContactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Submit accepts a contact form post from the public site. Rate limiting
// happens in middleware; validation in the service.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.ContactRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.contact.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]string{"id": msg.ID})
}

// List is the admin view of received messages.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	messages, meta, err := h.contact.List(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessMeta(w, http.StatusOK, messages, meta)
}
