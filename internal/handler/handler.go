package handler

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/oracle312/AuthService/internal/auth"
	"github.com/oracle312/AuthService/internal/config"
)

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	authenticator *auth.Authenticator
	issuer        *auth.TokenIssuer
	translator    ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, authenticator *auth.Authenticator, issuer *auth.TokenIssuer) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// 校验错误信息中使用 json 字段名
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		authenticator: authenticator,
		issuer:        issuer,
		translator:    trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.errorResponse(w, r, http.StatusNotFound, "Not found.")
	})
	h.Mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.errorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	h.Mux.Get("/healthz", h.Healthz)

	// 认证相关
	h.Mux.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)

		// 以下 API 必须要在登录后才允许调用
		r.With(h.auth).Get("/me", h.Me)
	})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
