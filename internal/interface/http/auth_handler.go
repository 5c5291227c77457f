package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gymbro/gymbro-api/config"
	"github.com/gymbro/gymbro-api/internal/application"
	"github.com/gymbro/gymbro-api/internal/domain/entity"
	"github.com/gymbro/gymbro-api/pkg/helpers"
	"github.com/gymbro/gymbro-api/pkg/response"
	"github.com/gymbro/gymbro-api/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AccountService
	Logger  *logrus.Logger
	Cfg     *config.Config
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *application.AccountService, logger *logrus.Logger, cfg *config.Config, cookies *helpers.CookieManager) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cfg: cfg, Cookies: cookies}
}

type userView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Confirmed bool   `json:"confirmed"`
}

func viewOf(u *entity.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, Confirmed: u.Confirmed}
}

// acknowledge runs op and always answers with the same 200 body. The real
// outcome is only visible in the logs, never to the caller, so the response
// cannot be used to probe which addresses have accounts.
func (h *AuthHandler) acknowledge(c *gin.Context, msg string, op func() error) {
	if err := op(); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Info("suppressed account op error")
	}
	response.Success[any](c, http.StatusOK, nil, msg, nil)
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,pwd"`
		Name     string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		response.Error[any](c, http.StatusUnprocessableEntity, "There was a problem with creating user", nil)
		return
	}
	response.Success(c, http.StatusCreated, viewOf(u), "user registered", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}
	tok, exp, err := h.Svc.IssueAccessToken(u)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "could not issue token", nil)
		return
	}
	h.Cookies.SetAccessToken(c, tok, exp)
	response.Success(c, http.StatusOK, viewOf(u), "login success", nil)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}

// Profile GET /api/auth/me (auth required)
func (h *AuthHandler) Profile(c *gin.Context) {
	uid := c.GetString("userID")
	u, err := h.Svc.GetProfile(uid)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	response.Success(c, http.StatusOK, viewOf(u), "profile", nil)
}

// ResendVerification POST /api/auth/resend-verification {email}
// Answers identically whether the address exists, is unknown, or is already
// confirmed.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	h.acknowledge(c, "Email sent if possible", func() error {
		return h.Svc.RequestEmailVerification(c.Request.Context(), req.Email)
	})
}

// Confirm GET /api/auth/confirm/:token
// Lands the user on the front-end confirmation page on success.
func (h *AuthHandler) Confirm(c *gin.Context) {
	tok := c.Param("token")
	if _, err := h.Svc.ConfirmEmail(c.Request.Context(), tok); err != nil {
		response.Error[any](c, http.StatusUnprocessableEntity, "There was an error while verifying email", nil)
		return
	}
	c.Redirect(http.StatusFound, h.Cfg.FrontendURL+"/email-confirmed")
}

// ForgotPassword POST /api/auth/forgot-password {email}
// Same fixed-ack contract as ResendVerification.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	h.acknowledge(c, "Email sent if user exists", func() error {
		return h.Svc.RequestPasswordReset(c.Request.Context(), req.Email)
	})
}

// ResetPassword POST /api/auth/reset-password {token, password}
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		response.Error[any](c, http.StatusUnprocessableEntity, "There was a problem with changing password", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Password changed successfully", nil)
}
