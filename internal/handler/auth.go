package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/oracle312/AuthService/internal/auth"
	"github.com/oracle312/AuthService/internal/domain"
)

const (
	msgSignupSuccessful   = "Signup successful."
	msgDuplicateUser      = "Username or email already exists."
	msgInvalidCredentials = "Invalid username or password."
	msgPasswordTooLong    = "Password must be at most 72 bytes."
	msgSignupBusy         = "Another signup for this username or email is in progress, please retry."
)

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username   string  `json:"username" validate:"required,max=50"`
		Password   string  `json:"password" validate:"required"`
		Name       string  `json:"name" validate:"required,max=100"`
		Email      string  `json:"email" validate:"required,email,max=255"`
		Position   *string `json:"position" validate:"omitempty,max=100"`
		Department *string `json:"department" validate:"omitempty,max=100"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	_, err := h.authenticator.Signup(r.Context(), auth.SignupInput{
		Username:   req.Username,
		Password:   req.Password,
		Name:       req.Name,
		Email:      req.Email,
		Position:   req.Position,
		Department: req.Department,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateUser):
			h.errorResponse(w, r, http.StatusBadRequest, msgDuplicateUser)
		case errors.Is(err, auth.ErrPasswordTooLong):
			h.errorResponse(w, r, http.StatusBadRequest, msgPasswordTooLong)
		case errors.Is(err, auth.ErrSignupLockTimeout):
			h.errorResponse(w, r, http.StatusServiceUnavailable, msgSignupBusy)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, msgSignupSuccessful)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 验证用户名和密码，两种失败情况返回相同的响应
	identity, err := h.authenticator.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			h.errorResponse(w, r, http.StatusUnauthorized, msgInvalidCredentials)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 生成 JWT
	signed, err := h.issuer.Issue(identity, time.Now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, domain.LoginResponse{
		Token:      signed.Token,
		Expiry:     signed.Expiry,
		Name:       identity.Name,
		Department: domain.Deref(identity.Department),
		Position:   domain.Deref(identity.Position),
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		h.errorResponse(w, r, http.StatusUnauthorized, "Invalid token.")
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		h.errorResponse(w, r, http.StatusUnauthorized, "Invalid token.")
		return
	}

	user, err := h.authenticator.Profile(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			h.errorResponse(w, r, http.StatusNotFound, "User not found.")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.writeJSON(w, r, http.StatusOK, user)
}
