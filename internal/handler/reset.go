package handler

import (
	"net/http"

	apperrors "github.com/doctrot/site-server-go/internal/errors"
	"github.com/doctrot/site-server-go/internal/httputil"
	"github.com/doctrot/site-server-go/internal/util"
)

type forgotPasswordResponse struct {
	Sent     bool   `json:"sent"`
	Message  string `json:"message"`
	ResetURL string `json:"resetUrl,omitempty"`
}

func (h *AdminHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.resets.SendResetEmail(r.Context(), req.Email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if result.Sent {
		writeJSON(w, http.StatusOK, forgotPasswordResponse{
			Sent:    true,
			Message: "A reset link has been sent to your email address",
		})
		return
	}

	if !h.opts.ResetLinkFallback {
		httputil.WriteError(w, apperrors.New(apperrors.ErrCodeExternal, "The reset email could not be sent"))
		return
	}

	writeJSON(w, http.StatusOK, forgotPasswordResponse{
		Sent:     false,
		Message:  "The email could not be sent. Use the link below to reset your password",
		ResetURL: result.ResetURL,
	})
}

func (h *AdminHandler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("reset_token")
	if _, err := h.resets.VerifyToken(r.Context(), token); err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.resets.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated successfully"})
}
