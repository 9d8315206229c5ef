package handlers

import (
	"net/http"

	"github.com/Rakhulsr/kidstore/app/helpers"
	"github.com/Rakhulsr/kidstore/app/services"
	"github.com/Rakhulsr/kidstore/app/utils/apperr"
	"github.com/Rakhulsr/kidstore/app/utils/sessions"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/csrf"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

type AuthHandler struct {
	render       *render.Render
	accounts     *services.AccountService
	cart         *services.CartService
	sessionStore sessions.SessionStore
	validate     *validator.Validate
	log          *logrus.Entry
}

func NewAuthHandler(render *render.Render, accounts *services.AccountService, cart *services.CartService, sessionStore sessions.SessionStore, validate *validator.Validate, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{
		render:       render,
		accounts:     accounts,
		cart:         cart,
		sessionStore: sessionStore,
		validate:     validate,
		log:          log,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID string) error {
	if err := h.sessionStore.SetUserID(w, r, userID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to create session", err)
	}
	return nil
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	if err := h.startSession(w, r, user.ID); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := helpers.Bind(r, h.validate, &req); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Infof("Login: failed attempt for %s", req.Email)
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	if err := h.startSession(w, r, user.ID); err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}
	h.render.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionStore.ClearSession(w, r); err != nil {
		h.log.Warnf("Logout: failed to clear session: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user with the cart badge count and a fresh CSRF
// token for subsequent writes.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	rc := caller(r)
	user, err := h.accounts.User(r.Context(), rc.UserID)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	count, err := h.cart.ItemCount(r.Context(), rc.UserID)
	if err != nil {
		helpers.WriteError(h.render, w, h.log, err)
		return
	}

	h.render.JSON(w, http.StatusOK, map[string]interface{}{
		"user":          user,
		"cartItemCount": count,
		"csrfToken":     csrf.Token(r),
	})
}
