package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/doctrot/site-server-go/internal/audit"
	apperrors "github.com/doctrot/site-server-go/internal/errors"
	"github.com/doctrot/site-server-go/internal/httputil"
	"github.com/doctrot/site-server-go/internal/middleware"
	"github.com/doctrot/site-server-go/internal/service"
	"github.com/doctrot/site-server-go/internal/util"
)

// AdminOptions carries the route-level collaborators of the admin API. Nil
// middlewares are skipped.
type AdminOptions struct {
	Auth        func(http.Handler) http.Handler
	LoginLimit  func(http.Handler) http.Handler
	ForgotLimit func(http.Handler) http.Handler
	Events      http.Handler
	// ResetLinkFallback returns the reset link in the response when the
	// email could not be delivered.
	ResetLinkFallback bool
}

type AdminHandler struct {
	accounts *service.AccountService
	resets   *service.PasswordResetService
	contacts *service.ContactService
	blogs    *service.BlogService
	opts     AdminOptions
}

func NewAdminHandler(
	accounts *service.AccountService,
	resets *service.PasswordResetService,
	contacts *service.ContactService,
	blogs *service.BlogService,
	opts AdminOptions,
) *AdminHandler {
	return &AdminHandler{
		accounts: accounts,
		resets:   resets,
		contacts: contacts,
		blogs:    blogs,
		opts:     opts,
	}
}

// Routes is mounted at /admin/api.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(optional(h.opts.LoginLimit)).Post("/login", h.Login)
	r.With(optional(h.opts.ForgotLimit)).Post("/forgot-password", h.ForgotPassword)
	r.Get("/reset-password/verify", h.VerifyResetToken)
	r.Post("/reset-password", h.ResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(optional(h.opts.Auth))

		r.Get("/me", h.Me)
		r.Put("/email", h.UpdateEmail)
		r.Put("/password", h.ChangePassword)

		r.Get("/contacts", h.ListContacts)
		r.Get("/contacts/unread-count", h.UnreadContacts)
		r.Patch("/contacts/{id}/read", h.MarkContactRead)
		r.Delete("/contacts/{id}", h.DeleteContact)

		r.Get("/blogs", h.ListBlogs)
		r.Post("/blogs", h.CreateBlog)
		r.Put("/blogs/{id}", h.UpdateBlog)
		r.Delete("/blogs/{id}", h.DeleteBlog)

		if h.opts.Events != nil {
			r.Get("/events", h.opts.Events.ServeHTTP)
		}
	})

	return r
}

func optional(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.WriteError(w, apperrors.MissingRequired("username and password"))
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.ErrCodeRateLimitExceeded) {
			log.Error().Err(err).Msg("admin login error")
		}
		httputil.WriteError(w, err)
		return
	}

	if user == nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure, Username: req.Username})
		httputil.WriteError(w, apperrors.InvalidCredential("Invalid credentials"))
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, Username: user.Username})
	writeJSON(w, http.StatusOK, newAdminView(user))
}

func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAdmin(r.Context())
	if user == nil {
		var err error
		user, err = h.accounts.GetAdmin(r.Context())
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, newAdminView(user))
}

func (h *AdminHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !util.IsValidEmail(req.Email) {
		httputil.WriteError(w, apperrors.ValidationError("email must be a valid email address"))
		return
	}

	if err := h.accounts.UpdateEmail(r.Context(), req.Email); err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.accounts.GetAdmin(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAdminView(user))
}

func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated successfully"})
}
