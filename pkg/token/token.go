package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose selects the signing secret, TTL and claim shape for a token. Each
// purpose uses its own secret so a token minted for one flow fails
// verification in every other flow.
type Purpose string

const (
	PurposeEmailConfirm  Purpose = "email_confirm"
	PurposePasswordReset Purpose = "password_reset"
	PurposeAccess        Purpose = "access"
)

var (
	// ErrMissingSecret means the secret for the requested purpose was never
	// configured. Checked before signing, never after.
	ErrMissingSecret = errors.New("token secret not configured")
	// ErrInvalid covers bad signatures, malformed tokens and cross-purpose
	// replay. Handlers collapse it with ErrExpired into one generic failure.
	ErrInvalid = errors.New("invalid token")
	ErrExpired = errors.New("token expired")
)

type purposeConfig struct {
	secret []byte
	ttl    time.Duration
}

// Service signs and verifies short-lived tokens. Stateless: validity is
// purely signature plus expiry, there is no revocation list.
type Service struct {
	purposes map[Purpose]purposeConfig
}

func NewService(emailSecret, changePasswordSecret, accessSecret string, emailTTL, changePasswordTTL, accessTTL time.Duration) *Service {
	return &Service{
		purposes: map[Purpose]purposeConfig{
			PurposeEmailConfirm:  {secret: []byte(emailSecret), ttl: emailTTL},
			PurposePasswordReset: {secret: []byte(changePasswordSecret), ttl: changePasswordTTL},
			PurposeAccess:        {secret: []byte(accessSecret), ttl: accessTTL},
		},
	}
}

// The password-reset claim carries its subject under a different field name
// than the confirmation claim, so the payloads never overlap even before the
// signature check.
type emailConfirmClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

type passwordResetClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type accessClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Issue signs a token of the given purpose bound to subjectID and returns it
// together with its expiry.
func (s *Service) Issue(purpose Purpose, subjectID string) (string, time.Time, error) {
	pc, ok := s.purposes[purpose]
	if !ok || len(pc.secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}
	exp := time.Now().Add(pc.ttl)
	registered := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	var claims jwt.Claims
	switch purpose {
	case PurposeEmailConfirm:
		claims = &emailConfirmClaims{ID: subjectID, RegisteredClaims: registered}
	case PurposePasswordReset:
		claims = &passwordResetClaims{UserID: subjectID, RegisteredClaims: registered}
	default:
		claims = &accessClaims{UserID: subjectID, RegisteredClaims: registered}
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(pc.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature and expiry against the purpose's secret and
// returns the subject id. Expiry is reported as ErrExpired, every other
// failure as ErrInvalid.
func (s *Service) Verify(purpose Purpose, tokenStr string) (string, error) {
	pc, ok := s.purposes[purpose]
	if !ok || len(pc.secret) == 0 {
		return "", ErrMissingSecret
	}

	var claims jwt.Claims
	switch purpose {
	case PurposeEmailConfirm:
		claims = &emailConfirmClaims{}
	case PurposePasswordReset:
		claims = &passwordResetClaims{}
	default:
		claims = &accessClaims{}
	}

	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return pc.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	if !tkn.Valid {
		return "", ErrInvalid
	}

	var subject string
	switch c := claims.(type) {
	case *emailConfirmClaims:
		subject = c.ID
	case *passwordResetClaims:
		subject = c.UserID
	case *accessClaims:
		subject = c.UserID
	}
	if subject == "" {
		return "", ErrInvalid
	}
	return subject, nil
}
