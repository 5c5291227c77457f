package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gymbro/gymbro-api/config"
	"github.com/gymbro/gymbro-api/internal/domain/entity"
	repo "github.com/gymbro/gymbro-api/internal/domain/repository"
	"github.com/gymbro/gymbro-api/pkg/helpers"
	"github.com/gymbro/gymbro-api/pkg/mailer"
	tpl "github.com/gymbro/gymbro-api/pkg/mailer/templates"
	"github.com/gymbro/gymbro-api/pkg/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyConfirmed   = errors.New("email already confirmed")
)

// AccountService owns the confirmed and password-credential transitions of a
// user. Confirmed only ever moves false -> true; the password credential has
// no state enum, only a change timestamp written on successful reset.
type AccountService struct {
	Repo   repo.UserRepository
	Tokens *token.Service
	Mail   mailer.Dispatcher
	Logger *logrus.Logger
	Cfg    *config.Config
}

func NewAccountService(r repo.UserRepository, tokens *token.Service, mail mailer.Dispatcher, logger *logrus.Logger, cfg *config.Config) *AccountService {
	return &AccountService{Repo: r, Tokens: tokens, Mail: mail, Logger: logger, Cfg: cfg}
}

// Register creates an unconfirmed account and fires the verification email.
func (s *AccountService) Register(ctx context.Context, email, password, name string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Email: email, Password: hash, Name: name}
	if err := s.Repo.Create(u); err != nil {
		return nil, err
	}
	s.sendVerification(ctx, u)
	return u, nil
}

// Authenticate validates email/password without issuing a token.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueAccessToken signs a short-lived access token bound to the user id.
// There is no refresh mechanism; re-authentication is the only renewal path.
func (s *AccountService) IssueAccessToken(u *entity.User) (string, time.Time, error) {
	return s.Tokens.Issue(token.PurposeAccess, u.ID)
}

// RequestEmailVerification issues a confirmation token and dispatches the
// confirmation link if the address belongs to an unconfirmed account. The
// caller is expected to hide every returned error behind a fixed response.
func (s *AccountService) RequestEmailVerification(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.Confirmed {
		return ErrAlreadyConfirmed
	}
	return s.sendVerification(ctx, u)
}

// sendVerification mints the confirmation token and enqueues the mail.
// Dispatch failures are logged and swallowed: a token may be issued with no
// corresponding email ever delivered.
func (s *AccountService) sendVerification(ctx context.Context, u *entity.User) error {
	tok, _, err := s.Tokens.Issue(token.PurposeEmailConfirm, u.ID)
	if err != nil {
		return err
	}
	link := s.Cfg.APIBaseURL + "/api/auth/confirm/" + tok
	s.dispatch(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.ConfirmEmail,
		Data:     map[string]any{"Link": link},
	})
	return nil
}

// ConfirmEmail redeems a confirmation token. Confirming an already-confirmed
// account is an error, not an idempotent success.
func (s *AccountService) ConfirmEmail(ctx context.Context, tokenStr string) (*entity.User, error) {
	uid, err := s.Tokens.Verify(token.PurposeEmailConfirm, tokenStr)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.GetByID(uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.Confirmed {
		return nil, ErrAlreadyConfirmed
	}
	if err := s.Repo.SetConfirmed(u.ID); err != nil {
		return nil, err
	}
	u.Confirmed = true
	return u, nil
}

// RequestPasswordReset issues a reset token and dispatches the change-password
// link. Same hiding contract as RequestEmailVerification.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	tok, _, err := s.Tokens.Issue(token.PurposePasswordReset, u.ID)
	if err != nil {
		return err
	}
	link := s.Cfg.FrontendURL + "/change-password/" + tok
	s.dispatch(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: tpl.ChangePassword,
		Data:     map[string]any{"Link": link},
	})
	return nil
}

// ResetPassword redeems a reset token and commits the new credential
// together with its change timestamp.
func (s *AccountService) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	uid, err := s.Tokens.Verify(token.PurposePasswordReset, tokenStr)
	if err != nil {
		return err
	}
	if _, err := s.Repo.GetByID(uid); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(uid, hash, time.Now().UTC())
}

// GetProfile loads a user by id.
func (s *AccountService) GetProfile(userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *AccountService) dispatch(ctx context.Context, job mailer.EmailJob) {
	if s.Mail == nil || (s.Cfg != nil && !s.Cfg.MailSendEnabled) {
		return
	}
	if err := s.Mail.Send(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("to", job.To).Warn("email dispatch failed")
	}
}
