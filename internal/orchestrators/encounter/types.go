package encounter

import (
	"github.com/KirkDiggler/encounter-api/internal/engine"
	"github.com/KirkDiggler/encounter-api/internal/entities"
)

// CreateEncounterInput seeds a new encounter with its combatants.
type CreateEncounterInput struct {
	Participants []*entities.Participant
}

// CreateEncounterOutput returns the encounter in its setup phase.
type CreateEncounterOutput struct {
	Encounter *entities.Encounter
}

// StartEncounterInput identifies the encounter to start.
type StartEncounterInput struct {
	EncounterID string
}

// StartEncounterOutput returns the started encounter and its rolled
// initiative, highest first.
type StartEncounterOutput struct {
	Encounter  *entities.Encounter
	Initiative []engine.InitiativeEntry
}

// SubmitActionInput proposes an action for the active participant. Action
// carries the type, target, and parameters; the orchestrator assigns ID,
// round, and turn-order bookkeeping.
type SubmitActionInput struct {
	EncounterID string
	Action      *entities.CombatAction
}

// SubmitActionOutput returns the computed result of the proposed action.
// When Opportunities is non-empty the outcome is provisional: the action is
// suspended in a reaction window and nothing has been applied yet.
type SubmitActionOutput struct {
	Encounter     *entities.Encounter
	Outcome       *entities.ActionOutcome
	Opportunities []*entities.ReactionOpportunity
}

// ResolveReactionInput answers one pending reaction opportunity, either with
// a chosen reaction type or by declining it.
type ResolveReactionInput struct {
	EncounterID   string
	OpportunityID string
	ParticipantID string

	// Reaction is the chosen reaction type. Ignored when Decline is set.
	Reaction entities.ActionType

	// Decline passes on the opportunity without spending the reaction.
	Decline bool
}

// ResolveReactionOutput reports how the window advanced. Outcome is the
// original action's final, applied outcome once the window closes; it is nil
// while other opportunities remain pending after a decline.
type ResolveReactionOutput struct {
	Encounter *entities.Encounter
	Outcome   *entities.ActionOutcome

	// ReactionOutcome is the reaction's own resolution for dice-bearing
	// reactions (opportunity attack, deflect missiles, hellish rebuke).
	ReactionOutcome *entities.ActionOutcome

	// SlotConsumed is the spell slot level the reaction burned, zero for
	// slotless reactions.
	SlotConsumed int32
}

// EndTurnInput ends the active participant's turn.
type EndTurnInput struct {
	EncounterID string
}

// EndTurnOutput reports whose turn begins next and the current round.
type EndTurnOutput struct {
	Encounter           *entities.Encounter
	ActiveParticipantID string
	Round               int32
}

// EndEncounterInput ends the encounter immediately.
type EndEncounterInput struct {
	EncounterID string
}

// EndEncounterOutput returns the final snapshot.
type EndEncounterOutput struct {
	Encounter *entities.Encounter
}

// ListPendingOpportunitiesInput lists open reaction opportunities.
// ParticipantID filters to one reactor; empty lists all pending.
type ListPendingOpportunitiesInput struct {
	EncounterID   string
	ParticipantID string
}

// ListPendingOpportunitiesOutput carries the matching opportunities.
type ListPendingOpportunitiesOutput struct {
	Opportunities []*entities.ReactionOpportunity
}

// GetEncounterInput reads one encounter snapshot.
type GetEncounterInput struct {
	EncounterID string
}

// GetEncounterOutput carries the snapshot.
type GetEncounterOutput struct {
	Encounter *entities.Encounter
}

// UpdatePositionInput reconciles a renderer-originated position. It never
// triggers reactions.
type UpdatePositionInput struct {
	EncounterID   string
	ParticipantID string
	Position      entities.PositionZone
}

// UpdatePositionOutput returns the updated snapshot.
type UpdatePositionOutput struct {
	Encounter *entities.Encounter
}
