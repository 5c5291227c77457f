package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymbro/gymbro-api/config"
	"github.com/gymbro/gymbro-api/internal/application"
	"github.com/gymbro/gymbro-api/internal/domain/entity"
	repo "github.com/gymbro/gymbro-api/internal/domain/repository"
	"github.com/gymbro/gymbro-api/pkg/helpers"
	"github.com/gymbro/gymbro-api/pkg/token"
	"github.com/gymbro/gymbro-api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

type stubUserRepo struct {
	GetByEmailFunc     func(email string) (*entity.User, error)
	GetByIDFunc        func(id string) (*entity.User, error)
	SetConfirmedFunc   func(id string) error
	UpdatePasswordFunc func(id, hash string, changedAt time.Time) error
}

func (s *stubUserRepo) Create(u *entity.User) error { return nil }
func (s *stubUserRepo) Update(u *entity.User) error { return nil }
func (s *stubUserRepo) GetByEmail(email string) (*entity.User, error) {
	if s.GetByEmailFunc != nil {
		return s.GetByEmailFunc(email)
	}
	return nil, repo.ErrNotFound
}
func (s *stubUserRepo) GetByID(id string) (*entity.User, error) {
	if s.GetByIDFunc != nil {
		return s.GetByIDFunc(id)
	}
	return nil, repo.ErrNotFound
}
func (s *stubUserRepo) SetConfirmed(id string) error {
	if s.SetConfirmedFunc != nil {
		return s.SetConfirmedFunc(id)
	}
	return nil
}
func (s *stubUserRepo) UpdatePassword(id, hash string, changedAt time.Time) error {
	if s.UpdatePasswordFunc != nil {
		return s.UpdatePasswordFunc(id, hash, changedAt)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		EmailSecret:          "email-secret",
		ChangePasswordSecret: "reset-secret",
		AccessTokenSecret:    "access-secret",
		EmailTokenTTL:        24 * time.Hour,
		ChangePasswordTTL:    24 * time.Hour,
		AccessTokenTTL:       48 * time.Hour,
		APIBaseURL:           "http://localhost:8080",
		FrontendURL:          "http://front.example",
		CookieDomain:         "localhost",
	}
}

func newTestRouter(users repo.UserRepository) (*gin.Engine, *AuthHandler) {
	cfg := testConfig()
	tokens := token.NewService(
		cfg.EmailSecret, cfg.ChangePasswordSecret, cfg.AccessTokenSecret,
		cfg.EmailTokenTTL, cfg.ChangePasswordTTL, cfg.AccessTokenTTL,
	)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := application.NewAccountService(users, tokens, nil, logger, cfg)
	h := NewAuthHandler(svc, logger, cfg, helpers.NewCookie(cfg.CookieDomain, false))

	r := gin.New()
	r.POST("/api/auth/resend-verification", h.ResendVerification)
	r.GET("/api/auth/confirm/:token", h.Confirm)
	r.POST("/api/auth/forgot-password", h.ForgotPassword)
	r.POST("/api/auth/reset-password", h.ResetPassword)
	return r, h
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// normalize strips the per-request fields so two responses can be compared
// structurally.
func normalize(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	delete(m, "timestamp")
	delete(m, "request_id")
	return m
}

func TestResendVerificationSameResponseForAnyEmail(t *testing.T) {
	known := &entity.User{ID: "u1", Email: "member@gymbro.shop", Confirmed: false}
	confirmed := &entity.User{ID: "u2", Email: "done@gymbro.shop", Confirmed: true}
	users := &stubUserRepo{
		GetByEmailFunc: func(email string) (*entity.User, error) {
			switch email {
			case known.Email:
				return known, nil
			case confirmed.Email:
				return confirmed, nil
			}
			return nil, repo.ErrNotFound
		},
	}
	r, _ := newTestRouter(users)

	wKnown := postJSON(t, r, "/api/auth/resend-verification", gin.H{"email": known.Email})
	wConfirmed := postJSON(t, r, "/api/auth/resend-verification", gin.H{"email": confirmed.Email})
	wUnknown := postJSON(t, r, "/api/auth/resend-verification", gin.H{"email": "nobody@gymbro.shop"})

	assert.Equal(t, http.StatusOK, wKnown.Code)
	assert.Equal(t, http.StatusOK, wConfirmed.Code)
	assert.Equal(t, http.StatusOK, wUnknown.Code)

	nKnown := normalize(t, wKnown)
	assert.Equal(t, "Email sent if possible", nKnown["message"])
	assert.Equal(t, nKnown, normalize(t, wConfirmed))
	assert.Equal(t, nKnown, normalize(t, wUnknown))
}

func TestForgotPasswordSameResponseForAnyEmail(t *testing.T) {
	known := &entity.User{ID: "u1", Email: "member@gymbro.shop"}
	users := &stubUserRepo{
		GetByEmailFunc: func(email string) (*entity.User, error) {
			if email == known.Email {
				return known, nil
			}
			return nil, repo.ErrNotFound
		},
	}
	r, _ := newTestRouter(users)

	wKnown := postJSON(t, r, "/api/auth/forgot-password", gin.H{"email": known.Email})
	wUnknown := postJSON(t, r, "/api/auth/forgot-password", gin.H{"email": "nobody@gymbro.shop"})

	assert.Equal(t, http.StatusOK, wKnown.Code)
	assert.Equal(t, http.StatusOK, wUnknown.Code)

	nKnown := normalize(t, wKnown)
	assert.Equal(t, "Email sent if user exists", nKnown["message"])
	assert.Equal(t, nKnown, normalize(t, wUnknown))
}

func TestConfirmRedirectsToFrontend(t *testing.T) {
	user := &entity.User{ID: "u1", Email: "member@gymbro.shop"}
	users := &stubUserRepo{
		GetByIDFunc: func(id string) (*entity.User, error) {
			if id == user.ID {
				return user, nil
			}
			return nil, repo.ErrNotFound
		},
		SetConfirmedFunc: func(id string) error {
			user.Confirmed = true
			return nil
		},
	}
	r, h := newTestRouter(users)

	tok, _, err := h.Svc.Tokens.Issue(token.PurposeEmailConfirm, user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/confirm/"+tok, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://front.example/email-confirmed", w.Header().Get("Location"))
	assert.True(t, user.Confirmed)

	// A second visit with the same token must fail, not re-confirm.
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/api/auth/confirm/"+tok, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w2.Code)
	assert.Equal(t, "There was an error while verifying email", normalize(t, w2)["message"])
}

func TestConfirmRejectsGarbageToken(t *testing.T) {
	r, _ := newTestRouter(&stubUserRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/confirm/not-a-token", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "There was an error while verifying email", normalize(t, w)["message"])
}

func TestResetPassword(t *testing.T) {
	user := &entity.User{ID: "u1", Email: "member@gymbro.shop"}
	var gotHash string
	users := &stubUserRepo{
		GetByIDFunc: func(id string) (*entity.User, error) {
			if id == user.ID {
				return user, nil
			}
			return nil, repo.ErrNotFound
		},
		UpdatePasswordFunc: func(id, hash string, changedAt time.Time) error {
			gotHash = hash
			return nil
		},
	}
	r, h := newTestRouter(users)

	tok, _, err := h.Svc.Tokens.Issue(token.PurposePasswordReset, user.ID)
	require.NoError(t, err)

	w := postJSON(t, r, "/api/auth/reset-password", gin.H{"token": tok, "password": "newpassword1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password changed successfully", normalize(t, w)["message"])
	assert.NotEmpty(t, gotHash)
	assert.True(t, helpers.CompareHashAndPassword(gotHash, "newpassword1"))

	// An access token must not pass as a reset token.
	access, _, err := h.Svc.Tokens.Issue(token.PurposeAccess, user.ID)
	require.NoError(t, err)
	w2 := postJSON(t, r, "/api/auth/reset-password", gin.H{"token": access, "password": "newpassword2"})
	assert.Equal(t, http.StatusUnprocessableEntity, w2.Code)
	assert.Equal(t, "There was a problem with changing password", normalize(t, w2)["message"])
}
