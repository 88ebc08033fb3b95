package engine

import (
	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/rules/reactions"
)

// RollInitiativeInput contains the participants to roll initiative for
type RollInitiativeInput struct {
	Participants []*entities.Participant
}

// InitiativeEntry is one participant's initiative result
type InitiativeEntry struct {
	ParticipantID string
	Roll          int32 // natural d20
	Initiative    int32 // roll plus dexterity modifier
}

// RollInitiativeOutput contains the rolled initiative order
type RollInitiativeOutput struct {
	// Entries are sorted highest initiative first; ties keep the input
	// order (stable).
	Entries []InitiativeEntry

	// TurnOrder is the participant IDs in final order.
	TurnOrder []string
}

// ResolveAttackInput contains an attack to resolve
type ResolveAttackInput struct {
	ActionID string
	Attacker *entities.Participant
	Target   *entities.Participant

	// DamageFormula is dice notation ("1d8+3"). Empty falls back to the
	// attacker's standard attack formula, then to a plain 1d8.
	DamageFormula    string
	DamageType       entities.DamageType
	WeaponProperties []string
}

// ResolveAttackOutput contains the computed, not yet applied, outcome
type ResolveAttackOutput struct {
	Outcome *entities.ActionOutcome
}

// ResolveSavingThrowInput contains a saving throw to resolve
type ResolveSavingThrowInput struct {
	ActionID string
	Target   *entities.Participant
	Ability  entities.Ability

	// DC of zero means the default saving throw DC.
	DC            int32
	DamageFormula string
	DamageType    entities.DamageType
	HalfOnSave    bool
}

// ResolveSavingThrowOutput contains the computed, not yet applied, outcome
type ResolveSavingThrowOutput struct {
	Outcome *entities.ActionOutcome
}

// ResolveHealInput contains a heal to resolve. Formula takes precedence
// over Amount when both are set.
type ResolveHealInput struct {
	ActionID string
	Target   *entities.Participant
	Formula  string
	Amount   int32
}

// ResolveHealOutput contains the computed, not yet applied, outcome
type ResolveHealOutput struct {
	Outcome *entities.ActionOutcome
}

// ApplyOutcomeInput lands a computed outcome on its target
type ApplyOutcomeInput struct {
	Target  *entities.Participant
	Outcome *entities.ActionOutcome
}

// ApplyOutcomeOutput reports what actually happened to the target
type ApplyOutcomeOutput struct {
	DamageDealt    int32
	Healed         int32
	TargetDefeated bool
	Revived        bool
}

// ApplyReactionInput applies a validated reaction choice. Outcome is the
// suspended action's pending outcome (nil for pure movement); Actor is the
// participant who triggered the reaction; Target is the original action's
// target when one exists.
type ApplyReactionInput struct {
	ReactionActionID string
	Reactor          *entities.Participant
	Actor            *entities.Participant
	Target           *entities.Participant
	Descriptor       *reactions.Descriptor
	Outcome          *entities.ActionOutcome
}

// ApplyReactionOutput reports the reaction's consequences. Outcome is the
// (possibly modified) pending outcome passed in; ReactionOutcome is the
// reaction's own resolution for dice-bearing reactions, already applied.
type ApplyReactionOutput struct {
	Outcome          *entities.ActionOutcome
	ReactionOutcome  *entities.ActionOutcome
	SlotConsumed     int32
	MovementCanceled bool
}
