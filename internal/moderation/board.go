package moderation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/isdelr/clinique-espoir-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Lifecycle is the part of the appointment service the board drives.
type Lifecycle interface {
	ListAll(ctx context.Context) ([]models.Appointment, error)
	SetStatus(ctx context.Context, id string, status models.AppointmentStatus) (models.Appointment, error)
}

// reconcileTimeout bounds the re-read that follows a status change.
const reconcileTimeout = 10 * time.Second

// Phase tells whether the working copy mirrors the store.
type Phase string

const (
	// PhaseSynced means the copy is the last listing read from the store.
	PhaseSynced Phase = "synced"
	// PhasePredicted means a status change was applied locally and the
	// store has not been re-read since.
	PhasePredicted Phase = "predicted"
)

// Snapshot describes the board state for the dashboard header.
type Snapshot struct {
	Phase       Phase     `json:"phase"`
	RefreshedAt time.Time `json:"refreshedAt"`
	Size        int       `json:"size"`
}

// Board is the dashboard's working copy of the appointment collection.
// Status changes show immediately and are then replaced by a fresh listing,
// whether or not the store accepted them.
type Board struct {
	lifecycle Lifecycle
	now       func() time.Time

	mu          sync.Mutex
	items       []models.Appointment
	phase       Phase
	refreshedAt time.Time
	started     uint64 // refreshes begun
	applied     uint64 // newest refresh whose listing is in items
}

// NewBoard creates an empty board. Call Refresh to load it.
func NewBoard(lifecycle Lifecycle) *Board {
	return &Board{lifecycle: lifecycle, now: time.Now, phase: PhaseSynced}
}

// WithClock replaces the clock used for Today and refresh times.
func (b *Board) WithClock(now func() time.Time) *Board {
	b.now = now
	return b
}

// Refresh replaces the working copy with a fresh listing. A listing that
// finishes after a newer one is discarded.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	b.started++
	seq := b.started
	b.mu.Unlock()

	items, err := b.lifecycle.ListAll(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if seq <= b.applied {
		return nil
	}
	b.applied = seq
	b.items = items
	b.phase = PhaseSynced
	b.refreshedAt = b.now()
	return nil
}

// SetStatus shows the new status at once, asks the lifecycle to apply it and
// then re-reads the store unconditionally. The re-read runs even when ctx is
// cancelled after the change. The lifecycle error, if any, is returned after
// the re-read.
func (b *Board) SetStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	b.predict(id, status)

	_, setErr := b.lifecycle.SetStatus(ctx, id, status)
	if setErr != nil {
		log.Warn().Err(setErr).Str("appointment_id", id).Str("status", string(status)).Msg("Status change failed, reconciling board")
	}

	reconcileCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()
	refreshErr := b.Refresh(reconcileCtx)
	if refreshErr != nil {
		log.Error().Err(refreshErr).Msg("Failed to refresh board after status change")
	}
	return errors.Join(setErr, refreshErr)
}

func (b *Board) predict(id string, status models.AppointmentStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == id {
			// the copy may be shared with an earlier View
			items := make([]models.Appointment, len(b.items))
			copy(items, b.items)
			items[i].Status = status
			b.items = items
			b.phase = PhasePredicted
			return
		}
	}
}

// View derives the dashboard from the working copy.
func (b *Board) View(q Query) View {
	b.mu.Lock()
	items := b.items
	b.mu.Unlock()
	return Derive(items, q, b.now())
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{Phase: b.phase, RefreshedAt: b.refreshedAt, Size: len(b.items)}
}
