package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService("email-secret", "reset-secret", "access-secret",
		24*time.Hour, 24*time.Hour, 48*time.Hour)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := newTestService()

	for _, purpose := range []Purpose{PurposeEmailConfirm, PurposePasswordReset, PurposeAccess} {
		t.Run(string(purpose), func(t *testing.T) {
			tok, exp, err := svc.Issue(purpose, "user-123")
			require.NoError(t, err)
			require.NotEmpty(t, tok)
			assert.True(t, exp.After(time.Now()))

			subject, err := svc.Verify(purpose, tok)
			require.NoError(t, err)
			assert.Equal(t, "user-123", subject)
		})
	}
}

func TestVerifyRejectsCrossPurpose(t *testing.T) {
	svc := newTestService()
	purposes := []Purpose{PurposeEmailConfirm, PurposePasswordReset, PurposeAccess}

	for _, issued := range purposes {
		tok, _, err := svc.Issue(issued, "user-123")
		require.NoError(t, err)
		for _, verified := range purposes {
			if issued == verified {
				continue
			}
			_, err := svc.Verify(verified, tok)
			assert.ErrorIs(t, err, ErrInvalid, "token for %s must not verify as %s", issued, verified)
		}
	}
}

func TestVerifyExpired(t *testing.T) {
	svc := NewService("email-secret", "reset-secret", "access-secret",
		-time.Minute, -time.Minute, -time.Minute)

	tok, _, err := svc.Issue(PurposeEmailConfirm, "user-123")
	require.NoError(t, err)

	_, err = svc.Verify(PurposeEmailConfirm, tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestMissingSecret(t *testing.T) {
	svc := NewService("", "reset-secret", "", 24*time.Hour, 24*time.Hour, 48*time.Hour)

	_, _, err := svc.Issue(PurposeEmailConfirm, "user-123")
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, _, err = svc.Issue(PurposeAccess, "user-123")
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = svc.Verify(PurposeEmailConfirm, "whatever")
	assert.ErrorIs(t, err, ErrMissingSecret)

	// The configured purpose still works.
	tok, _, err := svc.Issue(PurposePasswordReset, "user-123")
	require.NoError(t, err)
	subject, err := svc.Verify(PurposePasswordReset, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
}

func TestVerifyTamperedToken(t *testing.T) {
	svc := newTestService()

	tok, _, err := svc.Issue(PurposeAccess, "user-123")
	require.NoError(t, err)

	_, err = svc.Verify(PurposeAccess, tok+"x")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Verify(PurposeAccess, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := newTestService()
	other := NewService("different", "different", "different",
		24*time.Hour, 24*time.Hour, 48*time.Hour)

	tok, _, err := issuer.Issue(PurposeEmailConfirm, "user-123")
	require.NoError(t, err)

	_, err = other.Verify(PurposeEmailConfirm, tok)
	assert.ErrorIs(t, err, ErrInvalid)
}
