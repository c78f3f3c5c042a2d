package auth

import "quizbox/internal/models"

// Verifier decides whether a sign-in attempt matches the stored user.
// Swapping in a real implementation (backend check, password hash) does
// not touch the store logic.
type Verifier interface {
	Verify(stored *models.User, email, password string) error
}

// EmailOnlyVerifier accepts any attempt whose email matches the stored
// record exactly. The password is ignored; this mirrors the local
// single-slot stub the service ships with.
type EmailOnlyVerifier struct{}

func (EmailOnlyVerifier) Verify(stored *models.User, email, _ string) error {
	if stored == nil || stored.Email != email {
		return ErrInvalidCredentials
	}
	return nil
}
