package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/oracle312/AuthService/internal/auth"
	"github.com/oracle312/AuthService/internal/config"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				if h.config.Environment == config.EnvProduction {
					slog.Error("panic 调用栈", "stack", string(debug.Stack()))
					return
				}
				fmt.Print(string(debug.Stack())) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 从 Authorization 头中获取 token
		header := r.Header.Get("Authorization")
		scheme, tokenString, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			h.errorResponse(w, r, http.StatusUnauthorized, "Missing bearer token.")
			return
		}

		// 验证 token
		claims, err := h.issuer.Validate(strings.TrimSpace(tokenString), time.Now())
		if err != nil {
			slog.Debug("无效的令牌", "error", err)
			h.errorResponse(w, r, http.StatusUnauthorized, "Invalid token.")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsCtxKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) *auth.AuthClaims {
	claims, _ := ctx.Value(ClaimsCtxKey).(*auth.AuthClaims)
	return claims
}
