package reactions

import (
	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/errors"
	"github.com/KirkDiggler/encounter-api/internal/pkg/idgen"
)

// Engine scans combat events against the trigger table and produces
// pending reaction opportunities. It is pure detection: lifecycle
// (suspension, consumption, expiry) belongs to the encounter orchestrator.
type Engine struct {
	registry *FeatureRegistry
	idGen    idgen.Generator
	rules    []rule
}

// Config holds the engine's dependencies.
type Config struct {
	// Registry defines the available reaction capabilities. Defaults to
	// DefaultFeatureRegistry when nil.
	Registry *FeatureRegistry

	// IDGenerator mints opportunity IDs.
	IDGenerator idgen.Generator
}

// Validate ensures required dependencies are present.
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()

	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

// NewEngine creates a trigger engine from the config.
func NewEngine(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := cfg.Registry
	if registry == nil {
		registry = DefaultFeatureRegistry()
	}

	return &Engine{
		registry: registry,
		idGen:    cfg.IDGenerator,
		rules:    triggerRules(),
	}, nil
}

// Registry exposes the engine's reaction capability registry.
func (e *Engine) Registry() *FeatureRegistry {
	return e.registry
}

// Scan evaluates the events against every participant and returns the
// reaction opportunities they give rise to. The acting participant never
// reacts to its own action. Participants that are defeated, incapacitated,
// or out of reactions are silently ineligible: no error, no opportunity.
func (e *Engine) Scan(enc *entities.Encounter, events []Event) []*entities.ReactionOpportunity {
	var opportunities []*entities.ReactionOpportunity

	for _, ev := range events {
		for _, row := range e.rules {
			if !row.matches(ev) {
				continue
			}

			desc := e.registry.GetByReaction(row.reaction)
			if desc == nil {
				continue
			}

			actor := enc.FindParticipant(ev.ActorID)

			for _, reactor := range enc.Participants {
				if reactor.ID == ev.ActorID {
					continue
				}
				if reactor.IsDefeated() || reactor.IsIncapacitated() {
					continue
				}
				if reactor.ReactionsRemaining <= 0 {
					continue
				}
				if !row.applies(reactor, actor, ev, enc) {
					continue
				}
				if !desc.Eligible(reactor, ev) {
					continue
				}

				opportunities = append(opportunities, &entities.ReactionOpportunity{
					ID:                 e.idGen.Generate(),
					ParticipantID:      reactor.ID,
					Trigger:            row.trigger,
					Description:        row.describe(participantName(actor, ev.ActorID), ev),
					Offered:            []entities.ActionType{row.reaction},
					TriggeredBy:        ev.ActorID,
					Round:              ev.Round,
					ExpiresAtEndOfTurn: true,
				})
			}
		}
	}

	return opportunities
}

// ValidateChoice checks a reaction choice against the opportunity and the
// reactor's current resources at resolution time. It returns the chosen
// reaction's descriptor so the caller can apply its effect and consume its
// slot cost. The encounter is not mutated.
func (e *Engine) ValidateChoice(reactor *entities.Participant, opp *entities.ReactionOpportunity, chosen entities.ActionType) (*Descriptor, error) {
	desc := e.registry.GetByReaction(chosen)
	if desc == nil {
		// An unregistered reaction type is a programming error, not a
		// rejected request; silently dropping it would corrupt the
		// round's causal history.
		return nil, errors.Internalf("unrecognized reaction type: %s", chosen)
	}

	if !opp.Offers(chosen) {
		return nil, errors.FailedPreconditionf("opportunity %s does not offer %s", opp.ID, chosen)
	}

	if reactor == nil {
		return nil, errors.NotFoundf("reactor %s not in encounter", opp.ParticipantID)
	}

	if reactor.IsDefeated() || reactor.IsIncapacitated() {
		return nil, errors.FailedPreconditionf("participant %s cannot react", reactor.ID)
	}

	if reactor.ReactionsRemaining <= 0 {
		return nil, errors.FailedPreconditionf("participant %s has no reaction remaining this round", reactor.ID)
	}

	if desc.MinSlotLevel > 0 && !reactor.HasUnusedSlot(desc.MinSlotLevel) {
		return nil, errors.ResourceExhaustedf("participant %s has no unused spell slot of level %d or higher", reactor.ID, desc.MinSlotLevel)
	}

	if desc.MinSlotLevel == 0 && !desc.Eligible(reactor, Event{}) {
		// Capability grants can be lost between detection and
		// resolution (e.g. a condition stripped the feature's use).
		return nil, errors.FailedPreconditionf("participant %s is no longer eligible for %s", reactor.ID, chosen)
	}

	return desc, nil
}

func participantName(p *entities.Participant, fallbackID string) string {
	if p != nil {
		return p.Name
	}
	return fallbackID
}
