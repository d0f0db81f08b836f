// Package session remembers which patient is logged in on this client.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/isdelr/clinique-espoir-be/internal/kv"
	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/isdelr/clinique-espoir-be/internal/store"
)

// Slot persists the current user between restarts.
type Slot interface {
	// Load reports false when nothing is stored. A stored value that does
	// not parse is returned as an error.
	Load(ctx context.Context) (models.User, bool, error)
	Save(ctx context.Context, user models.User) error
	Clear(ctx context.Context) error
}

// KVSlot keeps the user as JSON under the session slot of a key-value area.
type KVSlot struct {
	area kv.KV
}

// NewKVSlot creates a slot in area.
func NewKVSlot(area kv.KV) *KVSlot {
	return &KVSlot{area: area}
}

func (s *KVSlot) Load(ctx context.Context) (models.User, bool, error) {
	raw, ok, err := s.area.Get(ctx, store.SlotSession)
	if err != nil || !ok {
		return models.User{}, false, err
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return models.User{}, false, fmt.Errorf("session slot is corrupt: %w", err)
	}
	return user, true, nil
}

// Save stores user. models.User has no password field, so none is written.
func (s *KVSlot) Save(ctx context.Context, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.area.Put(ctx, store.SlotSession, raw)
}

func (s *KVSlot) Clear(ctx context.Context) error {
	return s.area.Delete(ctx, store.SlotSession)
}
