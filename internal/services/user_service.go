package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/isdelr/clinique-espoir-be/internal/store"
	"github.com/rs/zerolog/log"
)

// AccountServiceProvider defines the interface for patient account services.
type AccountServiceProvider interface {
	Register(ctx context.Context, reg models.Registration) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

// AccountService provides business logic for patient accounts.
type AccountService struct {
	store  store.Store
	events EventServiceProvider
}

// NewAccountService creates a new AccountService.
func NewAccountService(st store.Store, events EventServiceProvider) *AccountService {
	return &AccountService{store: st, events: events}
}

// Register validates the sign-up form and creates the account.
func (s *AccountService) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Phone = strings.TrimSpace(reg.Phone)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", reg.Name},
		{"email", reg.Email},
		{"phone", reg.Phone},
		{"password", reg.Password},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return models.User{}, &models.ValidationError{Fields: missing}
	}

	user, err := s.store.CreateUser(ctx, reg)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to register user: %w", err)
	}

	if err := s.events.CreateEvent(ctx, "account.register", "info", fmt.Sprintf("Patient account created for %s.", user.Name), nil); err != nil {
		log.Warn().Err(err).Msg("Failed to record registration event")
	}
	return user, nil
}

// Authenticate verifies a user's credentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, models.ErrAuth
	}
	user, err := s.store.Authenticate(ctx, email, password)
	if err != nil {
		return models.User{}, fmt.Errorf("authentication failed: %w", err)
	}
	return user, nil
}
