package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/doctrot/site-server-go/internal/httputil"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/service"
)

func (h *AdminHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)

	subs, total, err := h.contacts.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": subs,
		"total": total,
	})
}

func (h *AdminHandler) UnreadContacts(w http.ResponseWriter, r *http.Request) {
	n, err := h.contacts.CountUnread(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *AdminHandler) MarkContactRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.contacts.MarkRead(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	deleted, err := h.contacts.Delete(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// PublicHandler serves the unauthenticated site API under /api.
type PublicHandler struct {
	contacts     *service.ContactService
	blogs        *service.BlogService
	contactLimit func(http.Handler) http.Handler
}

func NewPublicHandler(contacts *service.ContactService, blogs *service.BlogService, contactLimit func(http.Handler) http.Handler) *PublicHandler {
	return &PublicHandler{contacts: contacts, blogs: blogs, contactLimit: contactLimit}
}

func (h *PublicHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/blogs", h.ListBlogs)
	r.Get("/blogs/summary", h.BlogSummaries)
	r.Get("/blogs/categories", h.BlogCategories)
	r.Get("/blogs/{id}", h.GetBlog)
	r.Get("/blogs/{id}/related", h.RelatedBlogs)

	r.With(optional(h.contactLimit)).Post("/contact", h.CreateContact)

	return r
}

func (h *PublicHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req model.CreateContactSubmissionParams
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.contacts.Create(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      sub.ID,
		"message": "Message received",
	})
}
