// Package encounter implements the combat state machine: encounter
// lifecycle, the round/turn cycle, action resolution, and the reaction
// window that suspends an action until a reaction is taken or every
// offered opportunity is declined.
package encounter

//go:generate mockgen -destination=mock/mock_service.go -package=encountermock github.com/KirkDiggler/encounter-api/internal/orchestrators/encounter Service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/encounter-api/internal/engine"
	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/errors"
	"github.com/KirkDiggler/encounter-api/internal/pkg/clock"
	"github.com/KirkDiggler/encounter-api/internal/pkg/idgen"
	encounterrepo "github.com/KirkDiggler/encounter-api/internal/repositories/encounters"
	"github.com/KirkDiggler/encounter-api/internal/rules/movement"
	"github.com/KirkDiggler/encounter-api/internal/rules/reactions"
	"github.com/KirkDiggler/encounter-api/internal/tokensync"
)

// Service defines the interface for encounter operations
type Service interface {
	// CreateEncounter creates an encounter in the setup phase from a
	// participant roster
	CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*CreateEncounterOutput, error)

	// StartEncounter rolls initiative, fixes the turn order, and begins
	// round 1 with the first participant's turn
	StartEncounter(ctx context.Context, input *StartEncounterInput) (*StartEncounterOutput, error)

	// SubmitAction resolves the active participant's action. If the
	// action provokes reactions the encounter suspends in a reaction
	// window and the returned outcome is provisional.
	SubmitAction(ctx context.Context, input *SubmitActionInput) (*SubmitActionOutput, error)

	// ResolveReaction spends or declines one pending reaction
	// opportunity. The suspended action lands once the window closes.
	ResolveReaction(ctx context.Context, input *ResolveReactionInput) (*ResolveReactionOutput, error)

	// EndTurn advances to the next non-defeated participant, starting a
	// new round when the order wraps
	EndTurn(ctx context.Context, input *EndTurnInput) (*EndTurnOutput, error)

	// EndEncounter terminates the encounter immediately
	EndEncounter(ctx context.Context, input *EndEncounterInput) (*EndEncounterOutput, error)

	// GetEncounter returns the current encounter snapshot
	GetEncounter(ctx context.Context, input *GetEncounterInput) (*GetEncounterOutput, error)

	// ListPendingOpportunities returns the open reaction opportunities,
	// optionally filtered to one participant
	ListPendingOpportunities(ctx context.Context, input *ListPendingOpportunitiesInput) (*ListPendingOpportunitiesOutput, error)

	// UpdatePosition reconciles a participant's zone from the renderer
	// without running action resolution
	UpdatePosition(ctx context.Context, input *UpdatePositionInput) (*UpdatePositionOutput, error)
}

// Config holds the dependencies for the encounter orchestrator
type Config struct {
	Engine        engine.Engine
	TriggerEngine *reactions.Engine
	Repository    encounterrepo.Repository
	TokenSync     tokensync.Sync
	IDGenerator   idgen.Generator

	// Clock is optional and defaults to the real clock.
	Clock clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()

	if c.Engine == nil {
		vb.RequiredField("Engine")
	}
	if c.TriggerEngine == nil {
		vb.RequiredField("TriggerEngine")
	}
	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.TokenSync == nil {
		vb.RequiredField("TokenSync")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	engine   engine.Engine
	triggers *reactions.Engine
	repo     encounterrepo.Repository
	tokens   tokensync.Sync
	idGen    idgen.Generator
	clock    clock.Clock

	// mu guards locks. Each encounter gets its own mutex so independent
	// encounters never contend.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOrchestrator creates a new encounter orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &orchestrator{
		engine:   cfg.Engine,
		triggers: cfg.TriggerEngine,
		repo:     cfg.Repository,
		tokens:   cfg.TokenSync,
		idGen:    cfg.IDGenerator,
		clock:    clk,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

var _ Service = (*orchestrator)(nil)

// CreateEncounter creates an encounter in the setup phase
func (o *orchestrator) CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*CreateEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if len(input.Participants) == 0 {
		return nil, errors.InvalidArgument("at least one participant is required")
	}

	now := o.clock.Now().Unix()
	enc := &entities.Encounter{
		ID:        o.idGen.Generate(),
		Phase:     entities.PhaseSetup,
		Status:    entities.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	seen := make(map[string]bool, len(input.Participants))
	for _, p := range input.Participants {
		seeded, err := seedParticipant(p)
		if err != nil {
			return nil, err
		}
		if seen[seeded.ID] {
			return nil, errors.InvalidArgumentf("duplicate participant ID %s", seeded.ID)
		}
		seen[seeded.ID] = true
		enc.Participants = append(enc.Participants, seeded)
	}

	if _, err := o.repo.Save(ctx, &encounterrepo.SaveInput{Encounter: enc}); err != nil {
		return nil, err
	}

	slog.Info("created encounter",
		"encounter_id", enc.ID,
		"participants", len(enc.Participants),
	)

	o.pushUpdates(enc.ID, enc.Participants)

	return &CreateEncounterOutput{Encounter: enc}, nil
}

// seedParticipant validates and normalizes one roster entry. The caller's
// struct is cloned so later mutations never alias encounter state.
func seedParticipant(p *entities.Participant) (*entities.Participant, error) {
	if p == nil {
		return nil, errors.InvalidArgument("participant is required")
	}
	if p.ID == "" {
		return nil, errors.InvalidArgument("participant ID is required")
	}
	if p.MaxHP <= 0 {
		return nil, errors.InvalidArgumentf("participant %s must have positive max HP", p.ID)
	}
	if p.CurrentHP < 0 || p.CurrentHP > p.MaxHP {
		return nil, errors.InvalidArgumentf("participant %s has current HP outside 0..%d", p.ID, p.MaxHP)
	}

	seeded := p.Clone()
	if seeded.CurrentHP == 0 {
		seeded.CurrentHP = seeded.MaxHP
	}
	if seeded.Position == "" {
		seeded.Position = entities.ZoneRanged
	}
	if !movement.ValidZone(seeded.Position) {
		return nil, errors.InvalidArgumentf("participant %s has unknown position zone %q", p.ID, seeded.Position)
	}
	if seeded.ReactionsRemaining <= 0 {
		seeded.ReactionsRemaining = 1
	}
	return seeded, nil
}

// StartEncounter rolls initiative and begins the first turn
func (o *orchestrator) StartEncounter(ctx context.Context, input *StartEncounterInput) (*StartEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	unlock := o.lockEncounter(input.EncounterID)
	defer unlock()

	enc, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	if enc.Status == entities.StatusEnded {
		return nil, errors.FailedPrecondition("encounter has ended")
	}
	if enc.Phase != entities.PhaseSetup {
		return nil, errors.FailedPreconditionf("encounter %s has already started", enc.ID)
	}

	rolled, err := o.engine.RollInitiative(ctx, &engine.RollInitiativeInput{Participants: enc.Participants})
	if err != nil {
		return nil, err
	}

	for _, entry := range rolled.Entries {
		if p := enc.FindParticipant(entry.ParticipantID); p != nil {
			p.Initiative = entry.Initiative
		}
	}

	enc.TurnOrder = rolled.TurnOrder
	enc.Round = 1
	enc.ActiveIndex = 0
	enc.Phase = entities.PhaseTurnActive

	active := o.beginTurn(enc)
	if active == nil {
		return nil, errors.Internalf("encounter %s has no active participant after initiative", enc.ID)
	}

	if err := o.saveEncounter(ctx, enc); err != nil {
		return nil, err
	}

	slog.Info("started encounter",
		"encounter_id", enc.ID,
		"round", enc.Round,
		"first_turn", active.ID,
	)

	unlock()
	o.tokens.TurnStarted(enc.ID, active.ID)

	return &StartEncounterOutput{
		Encounter:  enc,
		Initiative: rolled.Entries,
	}, nil
}

// SubmitAction resolves the active participant's proposed action
func (o *orchestrator) SubmitAction(ctx context.Context, input *SubmitActionInput) (*SubmitActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}
	if input.Action == nil {
		return nil, errors.InvalidArgument("action is required")
	}
	if input.Action.ActorID == "" {
		return nil, errors.InvalidArgument("actor ID is required")
	}
	if input.Action.Type == "" {
		return nil, errors.InvalidArgument("action type is required")
	}
	if input.Action.IsReaction() {
		return nil, errors.InvalidArgument("reactions resolve through their opportunity, not as turn actions")
	}

	unlock := o.lockEncounter(input.EncounterID)
	defer unlock()

	enc, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	if err := requireTurnActive(enc); err != nil {
		return nil, err
	}

	actor := enc.FindParticipant(input.Action.ActorID)
	if actor == nil {
		return nil, errors.NotFoundf("participant %s not in encounter", input.Action.ActorID)
	}
	if enc.ActiveParticipantID() != actor.ID {
		return nil, errors.FailedPreconditionf("it is not %s's turn", actor.ID)
	}
	if actor.IsDefeated() || actor.IsIncapacitated() {
		return nil, errors.FailedPreconditionf("participant %s cannot act", actor.ID)
	}

	action := input.Action.Clone()
	action.ID = o.idGen.Generate()
	action.Round = enc.Round
	action.TurnOrder = enc.ActiveIndex + 1

	outcome, events, err := o.resolveAction(ctx, enc, actor, action)
	if err != nil {
		return nil, err
	}

	opportunities := o.triggers.Scan(enc, events)
	if len(opportunities) > 0 {
		enc.Phase = entities.PhaseReactionWindow
		enc.PendingAction = action
		enc.PendingOutcome = outcome
		enc.PendingOpportunities = opportunities

		if err := o.saveEncounter(ctx, enc); err != nil {
			return nil, err
		}

		slog.Info("action suspended in reaction window",
			"encounter_id", enc.ID,
			"action_id", action.ID,
			"action_type", action.Type,
			"opportunities", len(opportunities),
		)

		return &SubmitActionOutput{
			Encounter:     enc,
			Outcome:       outcome,
			Opportunities: opportunities,
		}, nil
	}

	touched, err := o.finalize(ctx, enc, action, outcome, false)
	if err != nil {
		return nil, err
	}

	if err := o.saveEncounter(ctx, enc); err != nil {
		return nil, err
	}

	slog.Info("action resolved",
		"encounter_id", enc.ID,
		"action_id", action.ID,
		"action_type", action.Type,
		"actor_id", actor.ID,
	)

	unlock()
	o.pushUpdates(enc.ID, touched)

	return &SubmitActionOutput{
		Encounter: enc,
		Outcome:   outcome,
	}, nil
}

// resolveAction computes an action's outcome without applying it, and
// returns the trigger events the action raises. Resource costs that are
// part of declaring the action (spell slots, the disengage flag) are spent
// here; everything else waits for finalize.
func (o *orchestrator) resolveAction(ctx context.Context, enc *entities.Encounter, actor *entities.Participant, action *entities.CombatAction) (*entities.ActionOutcome, []reactions.Event, error) {
	switch action.Type {
	case entities.ActionAttack:
		return o.resolveAttack(ctx, enc, actor, action)

	case entities.ActionCastSpell:
		return o.resolveSpell(ctx, enc, actor, action)

	case entities.ActionHeal:
		target, err := requireTarget(enc, action.TargetID)
		if err != nil {
			return nil, nil, err
		}
		out, err := o.engine.ResolveHeal(ctx, &engine.ResolveHealInput{
			ActionID: action.ID,
			Target:   target,
			Formula:  action.DamageFormula,
		})
		if err != nil {
			return nil, nil, err
		}
		return out.Outcome, nil, nil

	case entities.ActionMove, entities.ActionDash:
		return o.resolveMovement(enc, actor, action)

	case entities.ActionDisengage:
		actor.DisengageActive = true
		return &entities.ActionOutcome{
			ActionID:    action.ID,
			Description: fmt.Sprintf("%s disengages", actor.Name),
		}, nil, nil

	case entities.ActionDodge:
		return &entities.ActionOutcome{
			ActionID:    action.ID,
			Description: fmt.Sprintf("%s takes a defensive stance", actor.Name),
		}, nil, nil

	case entities.ActionHelp:
		desc := fmt.Sprintf("%s helps", actor.Name)
		if helped := enc.FindParticipant(action.TargetID); helped != nil {
			desc = fmt.Sprintf("%s helps %s", actor.Name, helped.Name)
		}
		return &entities.ActionOutcome{
			ActionID:    action.ID,
			Description: desc,
		}, nil, nil

	case entities.ActionDamageDealt:
		return nil, nil, errors.InvalidArgument("damage_dealt actions are recorded by resolution, not submitted")

	default:
		return nil, nil, errors.Internalf("unrecognized action type: %s", action.Type)
	}
}

func (o *orchestrator) resolveAttack(ctx context.Context, enc *entities.Encounter, actor *entities.Participant, action *entities.CombatAction) (*entities.ActionOutcome, []reactions.Event, error) {
	target, err := requireTarget(enc, action.TargetID)
	if err != nil {
		return nil, nil, err
	}
	if target.IsDefeated() {
		return nil, nil, errors.FailedPreconditionf("target %s is already defeated", target.ID)
	}

	out, err := o.engine.ResolveAttack(ctx, &engine.ResolveAttackInput{
		ActionID:         action.ID,
		Attacker:         actor,
		Target:           target,
		DamageFormula:    action.DamageFormula,
		DamageType:       action.DamageType,
		WeaponProperties: action.WeaponProperties,
	})
	if err != nil {
		return nil, nil, err
	}

	outcome := out.Outcome
	action.Hit = outcome.Hit

	var events []reactions.Event
	if outcome.Hit {
		ranged := hasWeaponProperty(action.WeaponProperties, entities.WeaponPropertyRanged)
		events = append(events, reactions.NewAttackHitEvent(actor.ID, target.ID, action.ID, ranged, enc.Round))
		if outcome.Damage > 0 {
			events = append(events, reactions.NewDamageEvent(actor.ID, target.ID, action.ID, outcome.Damage, outcome.DamageType, enc.Round))
		}
	}
	return outcome, events, nil
}

func (o *orchestrator) resolveSpell(ctx context.Context, enc *entities.Encounter, actor *entities.Participant, action *entities.CombatAction) (*entities.ActionOutcome, []reactions.Event, error) {
	if action.SpellID == "" {
		return nil, nil, errors.InvalidArgument("spell ID is required")
	}
	if len(actor.PreparedSpells) > 0 && !actor.HasPreparedSpell(action.SpellID) {
		return nil, nil, errors.FailedPreconditionf("participant %s does not have %s prepared", actor.ID, action.SpellID)
	}

	var target *entities.Participant
	if action.SaveAbility != "" {
		var err error
		target, err = requireTarget(enc, action.TargetID)
		if err != nil {
			return nil, nil, err
		}
		if target.IsDefeated() {
			return nil, nil, errors.FailedPreconditionf("target %s is already defeated", target.ID)
		}
	}

	// The slot burns on the cast itself; a counterspelled cast still
	// spends it.
	if action.SpellLevel > 0 {
		if !actor.ConsumeSlot(action.SpellLevel) {
			return nil, nil, errors.ResourceExhaustedf("participant %s has no unused level %d spell slot", actor.ID, action.SpellLevel)
		}
	}

	var events []reactions.Event
	if action.SpellLevel > 0 {
		events = append(events, reactions.NewSpellCastEvent(actor.ID, action.ID, action.SpellID, action.SpellLevel, enc.Round))
	}

	if target == nil {
		return &entities.ActionOutcome{
			ActionID:    action.ID,
			Description: fmt.Sprintf("%s casts %s", actor.Name, action.SpellID),
		}, events, nil
	}

	out, err := o.engine.ResolveSavingThrow(ctx, &engine.ResolveSavingThrowInput{
		ActionID:      action.ID,
		Target:        target,
		Ability:       action.SaveAbility,
		DC:            action.SaveDC,
		DamageFormula: action.DamageFormula,
		DamageType:    action.DamageType,
		HalfOnSave:    action.HalfOnSave,
	})
	if err != nil {
		return nil, nil, err
	}

	if out.Outcome.Damage > 0 {
		events = append(events, reactions.NewDamageEvent(actor.ID, target.ID, action.ID, out.Outcome.Damage, out.Outcome.DamageType, enc.Round))
	}
	return out.Outcome, events, nil
}

func (o *orchestrator) resolveMovement(enc *entities.Encounter, actor *entities.Participant, action *entities.CombatAction) (*entities.ActionOutcome, []reactions.Event, error) {
	if action.Movement == nil {
		return nil, nil, errors.InvalidArgument("movement is required")
	}

	move := *action.Movement
	if !movement.ValidZone(move.From) || !movement.ValidZone(move.To) {
		return nil, nil, errors.InvalidArgumentf("unknown movement zone in %s to %s", move.From, move.To)
	}
	if move.From != actor.Position {
		return nil, nil, errors.InvalidArgumentf("movement starts at %s but %s stands in %s", move.From, actor.ID, actor.Position)
	}
	if move.From == move.To {
		return nil, nil, errors.InvalidArgument("movement must change zones")
	}

	if action.Terrain == "" {
		action.Terrain = entities.TerrainClear
	}

	dashed := action.Type == entities.ActionDash
	if !movement.CanTraverse(actor, move, action.Terrain, dashed) {
		return nil, nil, errors.FailedPreconditionf("participant %s lacks the movement to reach %s", actor.ID, move.To)
	}

	outcome := &entities.ActionOutcome{
		ActionID:     action.ID,
		MovementCost: movement.Cost(move, action.Terrain),
		Description:  fmt.Sprintf("%s moves from %s to %s", actor.Name, move.From, move.To),
	}

	// The trigger table decides whether the movement provokes; the event
	// is raised unconditionally.
	events := []reactions.Event{reactions.NewMovementEvent(actor.ID, action.ID, move, enc.Round)}
	return outcome, events, nil
}

// finalize lands a computed outcome: applies it to the world, appends the
// action to the log, clears any pending window, and returns the encounter
// to the turn-active phase. It returns the participants whose synced fields
// changed.
func (o *orchestrator) finalize(ctx context.Context, enc *entities.Encounter, action *entities.CombatAction, outcome *entities.ActionOutcome, movementCanceled bool) ([]*entities.Participant, error) {
	var touched []*entities.Participant

	switch action.Type {
	case entities.ActionAttack, entities.ActionCastSpell, entities.ActionHeal:
		if target := enc.FindParticipant(action.TargetID); target != nil {
			if _, err := o.engine.ApplyOutcome(ctx, &engine.ApplyOutcomeInput{
				Target:  target,
				Outcome: outcome,
			}); err != nil {
				return nil, err
			}
			touched = appendParticipant(touched, target)
		}

	case entities.ActionMove, entities.ActionDash:
		if !movementCanceled && action.Movement != nil {
			if actor := enc.FindParticipant(action.ActorID); actor != nil {
				actor.Position = action.Movement.To
				touched = appendParticipant(touched, actor)
			}
		}
	}

	enc.ActionLog = append(enc.ActionLog, action)
	enc.PendingAction = nil
	enc.PendingOutcome = nil
	enc.PendingOpportunities = nil
	enc.Phase = entities.PhaseTurnActive

	return touched, nil
}

// ResolveReaction spends or declines one pending opportunity
func (o *orchestrator) ResolveReaction(ctx context.Context, input *ResolveReactionInput) (*ResolveReactionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}
	if input.OpportunityID == "" {
		return nil, errors.InvalidArgument("opportunity ID is required")
	}
	if input.ParticipantID == "" {
		return nil, errors.InvalidArgument("participant ID is required")
	}
	if !input.Decline && input.Reaction == "" {
		return nil, errors.InvalidArgument("a reaction choice or a decline is required")
	}

	unlock := o.lockEncounter(input.EncounterID)
	defer unlock()

	enc, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	if enc.Status == entities.StatusEnded || enc.Phase == entities.PhaseEnded {
		return nil, errors.FailedPrecondition("encounter has ended")
	}
	if enc.Phase != entities.PhaseReactionWindow {
		return nil, errors.FailedPrecondition("no reaction window is open")
	}

	opp := enc.FindOpportunity(input.OpportunityID)
	if opp == nil {
		// Covers unknown IDs and double submission of a consumed
		// opportunity alike.
		return nil, errors.NotFoundf("opportunity %s is not pending", input.OpportunityID)
	}
	if opp.ParticipantID != input.ParticipantID {
		return nil, errors.FailedPreconditionf("opportunity %s belongs to %s", opp.ID, opp.ParticipantID)
	}

	if input.Decline {
		return o.declineReaction(ctx, enc, opp, unlock)
	}

	reactor := enc.FindParticipant(input.ParticipantID)
	if reactor == nil {
		return nil, errors.NotFoundf("participant %s not in encounter", input.ParticipantID)
	}

	desc, err := o.triggers.ValidateChoice(reactor, opp, input.Reaction)
	if err != nil {
		return nil, err
	}

	pending := enc.PendingAction
	if pending == nil {
		return nil, errors.Internalf("encounter %s has a reaction window with no pending action", enc.ID)
	}
	actor := enc.FindParticipant(pending.ActorID)
	target := enc.FindParticipant(pending.TargetID)

	reactionID := o.idGen.Generate()
	applied, err := o.engine.ApplyReaction(ctx, &engine.ApplyReactionInput{
		ReactionActionID: reactionID,
		Reactor:          reactor,
		Actor:            actor,
		Target:           target,
		Descriptor:       desc,
		Outcome:          enc.PendingOutcome,
	})
	if err != nil {
		return nil, err
	}

	// The reaction lands before the suspended action in the causal log.
	enc.ActionLog = append(enc.ActionLog, reactionRecord(reactionID, enc.Round, reactor, actor, desc, input.Reaction, applied.SlotConsumed))

	// One reaction closes the window; unchosen opportunities lapse.
	enc.PendingOpportunities = nil

	finalOutcome := applied.Outcome
	if finalOutcome == nil {
		finalOutcome = enc.PendingOutcome
	}

	touched, err := o.finalize(ctx, enc, pending, finalOutcome, applied.MovementCanceled)
	if err != nil {
		return nil, err
	}
	touched = appendParticipant(touched, reactor)
	touched = appendParticipant(touched, actor)

	if err := o.saveEncounter(ctx, enc); err != nil {
		return nil, err
	}

	slog.Info("reaction resolved",
		"encounter_id", enc.ID,
		"opportunity_id", opp.ID,
		"reactor_id", reactor.ID,
		"reaction", input.Reaction,
		"movement_canceled", applied.MovementCanceled,
	)

	unlock()
	o.pushUpdates(enc.ID, touched)

	return &ResolveReactionOutput{
		Encounter:       enc,
		Outcome:         finalOutcome,
		ReactionOutcome: applied.ReactionOutcome,
		SlotConsumed:    applied.SlotConsumed,
	}, nil
}

// declineReaction forfeits one opportunity. The window stays open while
// other participants still hold offers; the last decline lands the
// suspended action unchanged.
func (o *orchestrator) declineReaction(ctx context.Context, enc *entities.Encounter, opp *entities.ReactionOpportunity, unlock func()) (*ResolveReactionOutput, error) {
	enc.RemoveOpportunity(opp.ID)

	if len(enc.PendingOpportunities) > 0 {
		if err := o.saveEncounter(ctx, enc); err != nil {
			return nil, err
		}

		slog.Info("reaction declined",
			"encounter_id", enc.ID,
			"opportunity_id", opp.ID,
			"remaining", len(enc.PendingOpportunities),
		)

		return &ResolveReactionOutput{Encounter: enc}, nil
	}

	pending := enc.PendingAction
	outcome := enc.PendingOutcome
	if pending == nil {
		return nil, errors.Internalf("encounter %s has a reaction window with no pending action", enc.ID)
	}

	touched, err := o.finalize(ctx, enc, pending, outcome, false)
	if err != nil {
		return nil, err
	}

	if err := o.saveEncounter(ctx, enc); err != nil {
		return nil, err
	}

	slog.Info("reaction window closed without a reaction",
		"encounter_id", enc.ID,
		"action_id", pending.ID,
	)

	unlock()
	o.pushUpdates(enc.ID, touched)

	return &ResolveReactionOutput{
		Encounter: enc,
		Outcome:   outcome,
	}, nil
}

// reactionRecord builds the out-of-band log entry for a spent reaction.
func reactionRecord(id string, round int32, reactor, actor *entities.Participant, desc *reactions.Descriptor, chosen entities.ActionType, slotConsumed int32) *entities.CombatAction {
	record := &entities.CombatAction{
		ID:            id,
		ActorID:       reactor.ID,
		Type:          chosen,
		Round:         round,
		TurnOrder:     0,
		DamageFormula: desc.DamageFormula,
		DamageType:    desc.DamageType,
		SpellLevel:    slotConsumed,
	}

	switch desc.Kind {
	case reactions.EffectAttack, reactions.EffectRiposte, reactions.EffectNegateSpell:
		if actor != nil {
			record.TargetID = actor.ID
		}
	default:
		// Self-wards target the reactor.
		record.TargetID = reactor.ID
	}
	return record
}

// EndTurn advances the turn order
func (o *orchestrator) EndTurn(ctx context.Context, input *EndTurnInput) (*EndTurnOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	unlock := o.lockEncounter(input.EncounterID)
	defer unlock()

	enc, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	if err := requireTurnActive(enc); err != nil {
		return nil, err
	}

	next, wrapped := advanceTurn(enc)
	if next == nil {
		// Nobody left standing to take a turn.
		endNow(enc)
		if err := o.saveEncounter(ctx, enc); err != nil {
			return nil, err
		}

		slog.Info("encounter ended: no active participants remain",
			"encounter_id", enc.ID,
			"round", enc.Round,
		)

		return &EndTurnOutput{Encounter: enc, Round: enc.Round}, nil
	}

	if wrapped {
		enc.Round++
	}
	o.beginTurn(enc)

	if err := o.saveEncounter(ctx, enc); err != nil {
		return nil, err
	}

	slog.Info("turn advanced",
		"encounter_id", enc.ID,
		"round", enc.Round,
		"active_participant", next.ID,
	)

	unlock()
	o.tokens.TurnStarted(enc.ID, next.ID)

	return &EndTurnOutput{
		Encounter:           enc,
		ActiveParticipantID: next.ID,
		Round:               enc.Round,
	}, nil
}

// EndEncounter terminates the encounter
func (o *orchestrator) EndEncounter(ctx context.Context, input *EndEncounterInput) (*EndEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	unlock := o.lockEncounter(input.EncounterID)
	defer unlock()

	enc, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	if enc.Status == entities.StatusEnded {
		return nil, errors.FailedPrecondition("encounter has already ended")
	}

	endNow(enc)

	if err := o.saveEncounter(ctx, enc); err != nil {
		return nil, err
	}

	slog.Info("encounter ended",
		"encounter_id", enc.ID,
		"round", enc.Round,
	)

	return &EndEncounterOutput{Encounter: enc}, nil
}

// GetEncounter returns the current snapshot
func (o *orchestrator) GetEncounter(ctx context.Context, input *GetEncounterInput) (*GetEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	enc, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	return &GetEncounterOutput{Encounter: enc}, nil
}

// ListPendingOpportunities returns open reaction opportunities
func (o *orchestrator) ListPendingOpportunities(ctx context.Context, input *ListPendingOpportunitiesInput) (*ListPendingOpportunitiesOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}

	enc, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	var matches []*entities.ReactionOpportunity
	for _, opp := range enc.PendingOpportunities {
		if input.ParticipantID == "" || opp.ParticipantID == input.ParticipantID {
			matches = append(matches, opp)
		}
	}

	return &ListPendingOpportunitiesOutput{Opportunities: matches}, nil
}

// UpdatePosition reconciles a renderer-reported zone change. This is a
// bookkeeping write: it never raises trigger events, so renderer-driven
// moves cannot provoke reactions.
func (o *orchestrator) UpdatePosition(ctx context.Context, input *UpdatePositionInput) (*UpdatePositionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}
	if input.ParticipantID == "" {
		return nil, errors.InvalidArgument("participant ID is required")
	}
	if !movement.ValidZone(input.Position) {
		return nil, errors.InvalidArgumentf("unknown position zone %q", input.Position)
	}

	unlock := o.lockEncounter(input.EncounterID)
	defer unlock()

	enc, err := o.loadEncounter(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}

	if enc.Status == entities.StatusEnded || enc.Phase == entities.PhaseEnded {
		return nil, errors.FailedPrecondition("encounter has ended")
	}

	p := enc.FindParticipant(input.ParticipantID)
	if p == nil {
		return nil, errors.NotFoundf("participant %s not in encounter", input.ParticipantID)
	}

	p.Position = input.Position

	if err := o.saveEncounter(ctx, enc); err != nil {
		return nil, err
	}

	slog.Debug("reconciled position",
		"encounter_id", enc.ID,
		"participant_id", p.ID,
		"position", p.Position,
	)

	unlock()
	o.tokens.UpdateToken(enc.ID, p)

	return &UpdatePositionOutput{Encounter: enc}, nil
}

// beginTurn resets the per-turn resources of the participant whose turn
// starts. Reactions refresh exactly here, never when another participant's
// turn begins, and condition durations tick down at the owner's turn start.
func (o *orchestrator) beginTurn(enc *entities.Encounter) *entities.Participant {
	p := enc.ActiveParticipant()
	if p == nil {
		return nil
	}

	p.TickConditions()
	p.ReactionsRemaining = 1
	p.BonusActionUsed = false
	p.DisengageActive = false
	return p
}

// advanceTurn moves ActiveIndex to the next non-defeated participant and
// reports whether the scan wrapped past the end of the order. Returns nil
// when every participant is defeated.
func advanceTurn(enc *entities.Encounter) (*entities.Participant, bool) {
	n := len(enc.TurnOrder)
	if n == 0 {
		return nil, false
	}

	wrapped := false
	for i := 1; i <= n; i++ {
		step := int(enc.ActiveIndex) + i
		if step >= n {
			wrapped = true
		}
		idx := step % n
		candidate := enc.FindParticipant(enc.TurnOrder[idx])
		if candidate == nil || candidate.IsDefeated() {
			continue
		}
		enc.ActiveIndex = int32(idx)
		return candidate, wrapped
	}
	return nil, false
}

// endNow moves the encounter to its terminal state and discards any
// suspended window.
func endNow(enc *entities.Encounter) {
	enc.Status = entities.StatusEnded
	enc.Phase = entities.PhaseEnded
	enc.PendingAction = nil
	enc.PendingOutcome = nil
	enc.PendingOpportunities = nil
}

// requireTurnActive rejects mutation when the encounter is not accepting
// turn actions.
func requireTurnActive(enc *entities.Encounter) error {
	if enc.Status == entities.StatusEnded || enc.Phase == entities.PhaseEnded {
		return errors.FailedPrecondition("encounter has ended")
	}
	if enc.Phase == entities.PhaseReactionWindow {
		return errors.FailedPrecondition("a reaction window is open")
	}
	if enc.Phase != entities.PhaseTurnActive {
		return errors.FailedPrecondition("encounter has not started")
	}
	return nil
}

func requireTarget(enc *entities.Encounter, targetID string) (*entities.Participant, error) {
	if targetID == "" {
		return nil, errors.InvalidArgument("target ID is required")
	}
	target := enc.FindParticipant(targetID)
	if target == nil {
		return nil, errors.NotFoundf("participant %s not in encounter", targetID)
	}
	return target, nil
}

func hasWeaponProperty(properties []string, want string) bool {
	for _, p := range properties {
		if p == want {
			return true
		}
	}
	return false
}

func appendParticipant(list []*entities.Participant, p *entities.Participant) []*entities.Participant {
	if p == nil {
		return list
	}
	for _, existing := range list {
		if existing.ID == p.ID {
			return list
		}
	}
	return append(list, p)
}

// lockEncounter serializes writers per encounter. The returned unlock is
// idempotent so callers can release early to fire token notifications
// outside the lock and still keep the deferred call.
func (o *orchestrator) lockEncounter(id string) func() {
	o.mu.Lock()
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	o.mu.Unlock()

	l.Lock()
	var once sync.Once
	return func() { once.Do(l.Unlock) }
}

func (o *orchestrator) loadEncounter(ctx context.Context, id string) (*entities.Encounter, error) {
	out, err := o.repo.Get(ctx, &encounterrepo.GetInput{EncounterID: id})
	if err != nil {
		return nil, err
	}
	return out.Encounter, nil
}

func (o *orchestrator) saveEncounter(ctx context.Context, enc *entities.Encounter) error {
	enc.UpdatedAt = o.clock.Now().Unix()
	_, err := o.repo.Update(ctx, &encounterrepo.UpdateInput{Encounter: enc})
	return err
}

// pushUpdates fires token updates after the encounter lock is released.
func (o *orchestrator) pushUpdates(encounterID string, participants []*entities.Participant) {
	for _, p := range participants {
		o.tokens.UpdateToken(encounterID, p)
	}
}
