package handler

import (
	"net/http"

	"github.com/doctrot/site-server-go/internal/httputil"
	"github.com/doctrot/site-server-go/internal/model"
	"github.com/doctrot/site-server-go/internal/service"
)

func (h *PublicHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	listBlogs(w, r, h.blogs)
}

func (h *PublicHandler) BlogSummaries(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blogs.ListSummaries(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PublicHandler) BlogCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.blogs.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *PublicHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	post, err := h.blogs.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PublicHandler) RelatedBlogs(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	posts, err := h.blogs.Related(r.Context(), id, service.RelatedPostsLimit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *AdminHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	listBlogs(w, r, h.blogs)
}

func (h *AdminHandler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	var req model.SaveBlogPostParams
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	post, err := h.blogs.Create(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *AdminHandler) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req model.SaveBlogPostParams
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	post, err := h.blogs.Update(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *AdminHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.blogs.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func listBlogs(w http.ResponseWriter, r *http.Request, blogs *service.BlogService) {
	p := ParsePage(r)
	page, err := blogs.ListPaginated(r.Context(), p.Page, p.Limit, p.Category)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
