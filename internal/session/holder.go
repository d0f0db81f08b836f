package session

import (
	"context"
	"sync"

	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Accounts registers and authenticates patients.
type Accounts interface {
	Register(ctx context.Context, reg models.Registration) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

// Holder tracks the logged-in patient. The identity is whatever the slot
// holds; there is no expiry and no signature.
type Holder struct {
	accounts Accounts
	slot     Slot

	mu      sync.RWMutex
	current *models.User
}

// New restores the session from slot. A slot that cannot be read or parsed
// starts the holder logged out.
func New(ctx context.Context, accounts Accounts, slot Slot) *Holder {
	h := &Holder{accounts: accounts, slot: slot}
	user, ok, err := slot.Load(ctx)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("Ignoring unreadable session")
	case ok:
		h.current = &user
	}
	return h
}

// Current returns the logged-in user, if any.
func (h *Holder) Current() (models.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return models.User{}, false
	}
	return *h.current, true
}

// Login authenticates and replaces the current user.
func (h *Holder) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := h.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	return user, h.set(ctx, user)
}

// Register creates the account and logs it in.
func (h *Holder) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	user, err := h.accounts.Register(ctx, reg)
	if err != nil {
		return models.User{}, err
	}
	return user, h.set(ctx, user)
}

// Logout forgets the current user.
func (h *Holder) Logout(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = nil
	return h.slot.Clear(ctx)
}

// set keeps the in-memory identity even when the slot write fails; the
// caller gets the write error.
func (h *Holder) set(ctx context.Context, user models.User) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = &user
	if err := h.slot.Save(ctx, user); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to persist session")
		return err
	}
	return nil
}
