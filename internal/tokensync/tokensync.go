// Package tokensync keeps renderer tokens eventually consistent with
// encounter state. The orchestrator pushes field changes and turn starts out
// through Sync; the gateway pushes renderer-originated position updates back
// in through ReconcilePosition, which must never run the reaction trigger
// engine.
package tokensync

//go:generate mockgen -destination=mock/mock_sync.go -package=tokensyncmock github.com/KirkDiggler/encounter-api/internal/tokensync Sync

import (
	"context"
	"sync"

	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/errors"
)

// Updates carries the synced field set of one token. It is a full snapshot
// of the synced fields, not a diff; the renderer overwrites.
type Updates struct {
	HP         int32
	MaxHP      int32
	TempHP     int32
	Conditions []entities.Condition
	Position   entities.PositionZone
	Defeated   bool
}

// UpdatesFor derives the synced field set from a participant.
func UpdatesFor(p *entities.Participant) Updates {
	return Updates{
		HP:         p.CurrentHP,
		MaxHP:      p.MaxHP,
		TempHP:     p.TempHP,
		Conditions: append([]entities.Condition(nil), p.Conditions...),
		Position:   p.Position,
		Defeated:   p.IsDefeated(),
	}
}

// UpdateListener receives token field changes.
type UpdateListener func(encounterID, tokenID string, updates Updates)

// TurnListener receives turn-start notifications.
type TurnListener func(encounterID, participantID string)

// ReconcileFunc writes an inbound position into the encounter. The wired
// implementation is the orchestrator's position update, which bypasses the
// trigger engine.
type ReconcileFunc func(ctx context.Context, encounterID, participantID string, zone entities.PositionZone) error

// Sync is the boundary between the encounter state machine and the renderer.
type Sync interface {
	// UpdateToken publishes the participant's current synced fields.
	UpdateToken(encounterID string, participant *entities.Participant)

	// TurnStarted announces that the participant's turn began.
	TurnStarted(encounterID, participantID string)

	// ReconcilePosition applies a renderer-originated position update.
	ReconcilePosition(ctx context.Context, encounterID, participantID string, zone entities.PositionZone) error
}

// Broadcaster fans updates out to registered listeners. Listeners are called
// synchronously in registration order; the orchestrator invokes Broadcaster
// outside its encounter lock, so a slow listener delays notifications but
// never blocks combat resolution.
type Broadcaster struct {
	mu        sync.RWMutex
	updates   []UpdateListener
	turns     []TurnListener
	reconcile ReconcileFunc
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Ensure Broadcaster implements Sync
var _ Sync = (*Broadcaster)(nil)

// OnUpdate registers a listener for token field changes.
func (b *Broadcaster) OnUpdate(fn UpdateListener) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, fn)
}

// OnTurnStarted registers a listener for turn-start notifications.
func (b *Broadcaster) OnTurnStarted(fn TurnListener) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.turns = append(b.turns, fn)
}

// SetReconciler wires the inbound position path.
func (b *Broadcaster) SetReconciler(fn ReconcileFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reconcile = fn
}

// UpdateToken publishes the participant's synced fields to every listener.
func (b *Broadcaster) UpdateToken(encounterID string, participant *entities.Participant) {
	if participant == nil {
		return
	}

	updates := UpdatesFor(participant)

	b.mu.RLock()
	listeners := append([]UpdateListener(nil), b.updates...)
	b.mu.RUnlock()

	for _, fn := range listeners {
		fn(encounterID, participant.ID, updates)
	}
}

// TurnStarted announces the turn start to every listener.
func (b *Broadcaster) TurnStarted(encounterID, participantID string) {
	b.mu.RLock()
	listeners := append([]TurnListener(nil), b.turns...)
	b.mu.RUnlock()

	for _, fn := range listeners {
		fn(encounterID, participantID)
	}
}

// ReconcilePosition forwards the inbound position to the wired reconciler.
func (b *Broadcaster) ReconcilePosition(ctx context.Context, encounterID, participantID string, zone entities.PositionZone) error {
	b.mu.RLock()
	fn := b.reconcile
	b.mu.RUnlock()

	if fn == nil {
		return errors.Unavailable("no position reconciler is registered")
	}

	return fn(ctx, encounterID, participantID, zone)
}
