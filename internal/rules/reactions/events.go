// Package reactions detects reaction opportunities: it scans combat events
// against a table of trigger rules and a registry of reaction-granting
// features, producing the pending opportunities the encounter state machine
// arbitrates.
package reactions

import (
	"github.com/KirkDiggler/encounter-api/internal/entities"
)

// EventType classifies a combat occurrence the trigger engine can react to.
type EventType string

const (
	// EventMovement is a zone transition by a participant
	EventMovement EventType = "movement"
	// EventSpellCast is a leveled spell being cast
	EventSpellCast EventType = "spell_cast"
	// EventAttackHit is a weapon attack that hit its target
	EventAttackHit EventType = "attack_hit"
	// EventDamageTaken is damage about to be applied to a participant
	EventDamageTaken EventType = "damage_taken"
)

// Event is one combat occurrence derived from a proposed action and its
// computed outcome. Events are scanned before the outcome is finalized so
// reactions can still alter it.
type Event struct {
	Type EventType

	// ActorID caused the event; TargetID received it (damage recipient,
	// attack target). TargetID may equal ActorID for self-inflicted
	// damage.
	ActorID  string
	TargetID string

	// ActionID links back to the provoking CombatAction.
	ActionID string

	Amount     int32
	DamageType entities.DamageType

	SpellID    string
	SpellLevel int32

	// Ranged marks weapon attacks made at range.
	Ranged bool

	Movement *entities.Movement

	Round int32
}

// NewMovementEvent builds the event for a zone transition.
func NewMovementEvent(actorID, actionID string, move entities.Movement, round int32) Event {
	return Event{
		Type:     EventMovement,
		ActorID:  actorID,
		ActionID: actionID,
		Movement: &move,
		Round:    round,
	}
}

// NewSpellCastEvent builds the event for a leveled spell being cast.
func NewSpellCastEvent(actorID, actionID, spellID string, level, round int32) Event {
	return Event{
		Type:       EventSpellCast,
		ActorID:    actorID,
		ActionID:   actionID,
		SpellID:    spellID,
		SpellLevel: level,
		Round:      round,
	}
}

// NewAttackHitEvent builds the event for a weapon attack that hit.
func NewAttackHitEvent(actorID, targetID, actionID string, ranged bool, round int32) Event {
	return Event{
		Type:     EventAttackHit,
		ActorID:  actorID,
		TargetID: targetID,
		ActionID: actionID,
		Ranged:   ranged,
		Round:    round,
	}
}

// NewDamageEvent builds the event for damage about to be applied.
func NewDamageEvent(actorID, targetID, actionID string, amount int32, damageType entities.DamageType, round int32) Event {
	return Event{
		Type:       EventDamageTaken,
		ActorID:    actorID,
		TargetID:   targetID,
		ActionID:   actionID,
		Amount:     amount,
		DamageType: damageType,
		Round:      round,
	}
}
