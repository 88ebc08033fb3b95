// Package engine wraps the rpg toolkit
package engine

//go:generate mockgen -destination=mock/mock_engine.go -package=enginemock github.com/KirkDiggler/encounter-api/internal/engine Engine

import (
	"context"

	"github.com/KirkDiggler/encounter-api/internal/entities"
)

// Engine provides combat mechanics and rules calculations
type Engine interface {
	// Initiative and turn order
	RollInitiative(ctx context.Context, input *RollInitiativeInput) (*RollInitiativeOutput, error)

	// Action resolution. Resolve methods compute outcomes WITHOUT
	// applying them, so the state machine can suspend finalization in a
	// reaction window; ApplyOutcome lands a computed outcome.
	ResolveAttack(ctx context.Context, input *ResolveAttackInput) (*ResolveAttackOutput, error)
	ResolveSavingThrow(ctx context.Context, input *ResolveSavingThrowInput) (*ResolveSavingThrowOutput, error)
	ResolveHeal(ctx context.Context, input *ResolveHealInput) (*ResolveHealOutput, error)
	ApplyOutcome(ctx context.Context, input *ApplyOutcomeInput) (*ApplyOutcomeOutput, error)

	// Reaction effect application
	ApplyReaction(ctx context.Context, input *ApplyReactionInput) (*ApplyReactionOutput, error)

	// Utility methods
	CalculateProficiencyBonus(level int32) int32
	CalculateAbilityModifier(score int32) int32
	CalculateAttackModifier(participant *entities.Participant, weaponProperties []string) int32
	CalculateSaveModifier(participant *entities.Participant, ability entities.Ability) int32
	CalculateSkillModifier(participant *entities.Participant, skill string, ability entities.Ability) int32
}
