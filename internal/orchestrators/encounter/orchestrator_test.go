package encounter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/encounter-api/internal/engine"
	enginemock "github.com/KirkDiggler/encounter-api/internal/engine/mock"
	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/errors"
	"github.com/KirkDiggler/encounter-api/internal/orchestrators/encounter"
	"github.com/KirkDiggler/encounter-api/internal/pkg/idgen"
	"github.com/KirkDiggler/encounter-api/internal/repositories/encounters"
	encounterrepomock "github.com/KirkDiggler/encounter-api/internal/repositories/encounters/mock"
	"github.com/KirkDiggler/encounter-api/internal/rules/reactions"
	"github.com/KirkDiggler/encounter-api/internal/testutils/builders"
	"github.com/KirkDiggler/encounter-api/internal/tokensync"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockEngine  *enginemock.MockEngine
	repo        *encounters.InMemoryRepository
	broadcaster *tokensync.Broadcaster
	svc         encounter.Service
	ctx         context.Context

	turnStarts   []string
	tokenUpdates map[string]int
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.mockEngine = enginemock.NewMockEngine(s.ctrl)
	s.repo = encounters.NewInMemory()

	s.turnStarts = nil
	s.tokenUpdates = make(map[string]int)
	s.broadcaster = tokensync.NewBroadcaster()
	s.broadcaster.OnTurnStarted(func(_, participantID string) {
		s.turnStarts = append(s.turnStarts, participantID)
	})
	s.broadcaster.OnUpdate(func(_, tokenID string, _ tokensync.Updates) {
		s.tokenUpdates[tokenID]++
	})

	triggers, err := reactions.NewEngine(&reactions.Config{
		IDGenerator: idgen.NewSequential("opp"),
	})
	s.Require().NoError(err)

	s.svc, err = encounter.NewOrchestrator(&encounter.Config{
		Engine:        s.mockEngine,
		TriggerEngine: triggers,
		Repository:    s.repo,
		TokenSync:     s.broadcaster,
		IDGenerator:   idgen.NewSequential("act"),
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) fighter() *entities.Participant {
	return builders.NewParticipantBuilder().
		WithID("fighter-1").
		WithName("Brynn").
		WithSide(entities.SideAlly).
		WithHP(28, 28).
		WithArmorClass(16).
		WithPosition(entities.ZoneMelee).
		Build()
}

func (s *OrchestratorTestSuite) wizard() *entities.Participant {
	return builders.NewParticipantBuilder().
		WithID("wizard-1").
		WithName("Imara").
		WithSide(entities.SideAlly).
		WithHP(14, 14).
		WithArmorClass(12).
		WithPosition(entities.ZoneRanged).
		WithPreparedSpells(entities.SpellShield, "fireball", "fire_bolt").
		WithSpellSlots(map[int32]int32{1: 2, 3: 1}).
		Build()
}

func (s *OrchestratorTestSuite) goblin() *entities.Participant {
	return builders.NewParticipantBuilder().
		WithID("goblin-1").
		WithName("Skar").
		WithSide(entities.SideEnemy).
		WithHP(7, 7).
		WithArmorClass(13).
		WithPosition(entities.ZoneMelee).
		Build()
}

func (s *OrchestratorTestSuite) cultist() *entities.Participant {
	return builders.NewParticipantBuilder().
		WithID("cultist-1").
		WithName("Vex").
		WithSide(entities.SideEnemy).
		WithHP(22, 22).
		WithPosition(entities.ZoneMelee).
		WithSpellSlots(map[int32]int32{3: 1}).
		Build()
}

// expectInitiative stubs the dice engine so the turn order is exactly the
// given sequence.
func (s *OrchestratorTestSuite) expectInitiative(order ...string) {
	entries := make([]engine.InitiativeEntry, len(order))
	for i, id := range order {
		entries[i] = engine.InitiativeEntry{
			ParticipantID: id,
			Roll:          int32(20 - i),
			Initiative:    int32(20 - 2*i),
		}
	}
	s.mockEngine.EXPECT().
		RollInitiative(gomock.Any(), gomock.Any()).
		Return(&engine.RollInitiativeOutput{Entries: entries, TurnOrder: order}, nil)
}

// startedEncounter creates and starts an encounter with a fixed turn order,
// then clears the notification captures so tests assert only their own.
func (s *OrchestratorTestSuite) startedEncounter(participants []*entities.Participant, order ...string) string {
	created, err := s.svc.CreateEncounter(s.ctx, &encounter.CreateEncounterInput{Participants: participants})
	s.Require().NoError(err)

	s.expectInitiative(order...)
	_, err = s.svc.StartEncounter(s.ctx, &encounter.StartEncounterInput{EncounterID: created.Encounter.ID})
	s.Require().NoError(err)

	s.resetNotifications()
	return created.Encounter.ID
}

func (s *OrchestratorTestSuite) resetNotifications() {
	s.turnStarts = nil
	s.tokenUpdates = make(map[string]int)
}

func (s *OrchestratorTestSuite) load(encounterID string) *entities.Encounter {
	got, err := s.repo.Get(s.ctx, &encounters.GetInput{EncounterID: encounterID})
	s.Require().NoError(err)
	return got.Encounter
}

// mutate edits the stored encounter directly, bypassing the orchestrator.
func (s *OrchestratorTestSuite) mutate(encounterID string, fn func(*entities.Encounter)) {
	enc := s.load(encounterID)
	fn(enc)
	_, err := s.repo.Update(s.ctx, &encounters.UpdateInput{Encounter: enc})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TestNewOrchestratorValidation() {
	svc, err := encounter.NewOrchestrator(nil)
	s.Error(err)
	s.Nil(svc)

	svc, err = encounter.NewOrchestrator(&encounter.Config{})
	s.Error(err)
	s.Nil(svc)
	s.Contains(err.Error(), "Engine")
	s.Contains(err.Error(), "Repository")
	s.Contains(err.Error(), "IDGenerator")
}

func (s *OrchestratorTestSuite) TestCreateEncounterSeedsDefaults() {
	bare := &entities.Participant{
		ID:    "bare-1",
		Name:  "Bare",
		Side:  entities.SideEnemy,
		MaxHP: 9,
	}

	out, err := s.svc.CreateEncounter(s.ctx, &encounter.CreateEncounterInput{
		Participants: []*entities.Participant{s.fighter(), bare},
	})
	s.Require().NoError(err)

	enc := out.Encounter
	s.NotEmpty(enc.ID)
	s.Equal(entities.PhaseSetup, enc.Phase)
	s.Equal(entities.StatusActive, enc.Status)
	s.NotZero(enc.CreatedAt)
	s.Equal(enc.CreatedAt, enc.UpdatedAt)

	seeded := enc.FindParticipant("bare-1")
	s.Require().NotNil(seeded)
	s.Equal(int32(9), seeded.CurrentHP, "zero current HP seeds to full")
	s.Equal(entities.ZoneRanged, seeded.Position, "empty position seeds to ranged")
	s.Equal(int32(1), seeded.ReactionsRemaining)

	// The caller's struct is cloned, not aliased.
	bare.CurrentHP = 1
	s.Equal(int32(9), s.load(enc.ID).FindParticipant("bare-1").CurrentHP)

	// Every participant gets an initial token push.
	s.Equal(1, s.tokenUpdates["fighter-1"])
	s.Equal(1, s.tokenUpdates["bare-1"])
}

func (s *OrchestratorTestSuite) TestCreateEncounterValidation() {
	cases := []struct {
		name  string
		input *encounter.CreateEncounterInput
	}{
		{"nil input", nil},
		{"no participants", &encounter.CreateEncounterInput{}},
		{"nil participant", &encounter.CreateEncounterInput{
			Participants: []*entities.Participant{nil},
		}},
		{"missing ID", &encounter.CreateEncounterInput{
			Participants: []*entities.Participant{{Name: "Nameless", MaxHP: 5}},
		}},
		{"no max HP", &encounter.CreateEncounterInput{
			Participants: []*entities.Participant{{ID: "p1", MaxHP: 0}},
		}},
		{"HP above max", &encounter.CreateEncounterInput{
			Participants: []*entities.Participant{{ID: "p1", MaxHP: 5, CurrentHP: 9}},
		}},
		{"duplicate IDs", &encounter.CreateEncounterInput{
			Participants: []*entities.Participant{s.fighter(), s.fighter()},
		}},
		{"unknown zone", &encounter.CreateEncounterInput{
			Participants: []*entities.Participant{
				builders.NewParticipantBuilder().WithID("p1").WithPosition("underwater").Build(),
			},
		}},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			out, err := s.svc.CreateEncounter(s.ctx, tc.input)
			s.Nil(out)
			s.True(errors.IsInvalidArgument(err), "expected invalid argument, got %v", err)
		})
	}
}

func (s *OrchestratorTestSuite) TestStartEncounter() {
	created, err := s.svc.CreateEncounter(s.ctx, &encounter.CreateEncounterInput{
		Participants: []*entities.Participant{s.fighter(), s.wizard(), s.goblin()},
	})
	s.Require().NoError(err)

	s.expectInitiative("wizard-1", "fighter-1", "goblin-1")

	out, err := s.svc.StartEncounter(s.ctx, &encounter.StartEncounterInput{EncounterID: created.Encounter.ID})
	s.Require().NoError(err)

	s.Len(out.Initiative, 3)
	s.Equal([]string{"wizard-1", "fighter-1", "goblin-1"}, out.Encounter.TurnOrder)
	s.Equal(int32(1), out.Encounter.Round)
	s.Equal(int32(0), out.Encounter.ActiveIndex)
	s.Equal(entities.PhaseTurnActive, out.Encounter.Phase)
	s.Equal(int32(20), out.Encounter.FindParticipant("wizard-1").Initiative)
	s.Equal(int32(18), out.Encounter.FindParticipant("fighter-1").Initiative)
	s.Equal(int32(16), out.Encounter.FindParticipant("goblin-1").Initiative)

	s.Equal([]string{"wizard-1"}, s.turnStarts)

	// Starting twice is rejected.
	_, err = s.svc.StartEncounter(s.ctx, &encounter.StartEncounterInput{EncounterID: created.Encounter.ID})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestStartEncounterMissing() {
	_, err := s.svc.StartEncounter(s.ctx, &encounter.StartEncounterInput{EncounterID: "enc-missing"})
	s.True(errors.IsNotFound(err))

	_, err = s.svc.StartEncounter(s.ctx, &encounter.StartEncounterInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestSubmitActionTurnGuards() {
	created, err := s.svc.CreateEncounter(s.ctx, &encounter.CreateEncounterInput{
		Participants: []*entities.Participant{s.fighter(), s.goblin()},
	})
	s.Require().NoError(err)
	encID := created.Encounter.ID

	attack := func(actorID string) *entities.CombatAction {
		return &entities.CombatAction{
			ActorID:  actorID,
			TargetID: "goblin-1",
			Type:     entities.ActionAttack,
		}
	}

	// Before the encounter starts nothing may act.
	_, err = s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{EncounterID: encID, Action: attack("fighter-1")})
	s.True(errors.IsFailedPrecondition(err))

	s.expectInitiative("fighter-1", "goblin-1")
	_, err = s.svc.StartEncounter(s.ctx, &encounter.StartEncounterInput{EncounterID: encID})
	s.Require().NoError(err)

	// Not the goblin's turn.
	_, err = s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "goblin-1", TargetID: "fighter-1", Type: entities.ActionAttack},
	})
	s.True(errors.IsFailedPrecondition(err))

	// Unknown actor.
	_, err = s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{EncounterID: encID, Action: attack("stranger-1")})
	s.True(errors.IsNotFound(err))

	// Reaction types are not turn actions.
	_, err = s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "fighter-1", Type: entities.ReactionShieldSpell},
	})
	s.True(errors.IsInvalidArgument(err))

	// An unrecognized type fails fast rather than being dropped.
	_, err = s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "fighter-1", Type: "somersault"},
	})
	s.True(errors.IsInternal(err))

	// Nothing was logged by the rejected submissions.
	s.Empty(s.load(encID).ActionLog)
}

func (s *OrchestratorTestSuite) TestSubmitAttackFinalizesWithoutReactions() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.fighter(), s.goblin()},
		"fighter-1", "goblin-1",
	)

	s.mockEngine.EXPECT().
		ResolveAttack(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ResolveAttackInput) (*engine.ResolveAttackOutput, error) {
			s.Equal("fighter-1", input.Attacker.ID)
			s.Equal("goblin-1", input.Target.ID)
			return &engine.ResolveAttackOutput{Outcome: &entities.ActionOutcome{
				ActionID:    input.ActionID,
				AttackRoll:  15,
				AttackTotal: 20,
				Hit:         true,
				Damage:      6,
				DamageType:  entities.DamageSlashing,
			}}, nil
		})
	s.mockEngine.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ApplyOutcomeInput) (*engine.ApplyOutcomeOutput, error) {
			dealt := input.Target.ApplyDamage(input.Outcome.Damage)
			return &engine.ApplyOutcomeOutput{DamageDealt: dealt}, nil
		})

	out, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action: &entities.CombatAction{
			ActorID:       "fighter-1",
			TargetID:      "goblin-1",
			Type:          entities.ActionAttack,
			DamageFormula: "1d8+3",
			DamageType:    entities.DamageSlashing,
		},
	})
	s.Require().NoError(err)

	s.Empty(out.Opportunities)
	s.True(out.Outcome.Hit)
	s.Equal(int32(6), out.Outcome.Damage)

	stored := s.load(encID)
	s.Equal(entities.PhaseTurnActive, stored.Phase)
	s.Equal(int32(1), stored.FindParticipant("goblin-1").CurrentHP)
	s.Require().Len(stored.ActionLog, 1)
	logged := stored.ActionLog[0]
	s.Equal(entities.ActionAttack, logged.Type)
	s.Equal(int32(1), logged.Round)
	s.Equal(int32(1), logged.TurnOrder)
	s.True(logged.Hit)
	s.NotEmpty(logged.ID)

	s.Equal(1, s.tokenUpdates["goblin-1"])
}

func (s *OrchestratorTestSuite) TestShieldReactionLifecycle() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.goblin(), s.wizard(), s.fighter()},
		"goblin-1", "wizard-1", "fighter-1",
	)

	s.mockEngine.EXPECT().
		ResolveAttack(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ResolveAttackInput) (*engine.ResolveAttackOutput, error) {
			return &engine.ResolveAttackOutput{Outcome: &entities.ActionOutcome{
				ActionID:    input.ActionID,
				AttackRoll:  14,
				AttackTotal: 18,
				Hit:         true,
				Damage:      6,
				DamageType:  entities.DamagePiercing,
			}}, nil
		})

	out, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action: &entities.CombatAction{
			ActorID:  "goblin-1",
			TargetID: "wizard-1",
			Type:     entities.ActionAttack,
		},
	})
	s.Require().NoError(err)

	// The wizard has shield prepared with a level 1 slot: one opportunity,
	// and the outcome is suspended rather than applied.
	s.Require().Len(out.Opportunities, 1)
	opp := out.Opportunities[0]
	s.Equal("wizard-1", opp.ParticipantID)
	s.Equal(entities.TriggerDamageTaken, opp.Trigger)
	s.Equal([]entities.ActionType{entities.ReactionShieldSpell}, opp.Offered)
	s.Equal("goblin-1", opp.TriggeredBy)
	s.True(opp.ExpiresAtEndOfTurn)

	stored := s.load(encID)
	s.Equal(entities.PhaseReactionWindow, stored.Phase)
	s.Require().NotNil(stored.PendingAction)
	s.Equal(int32(6), stored.PendingOutcome.Damage)
	s.Equal(int32(14), stored.FindParticipant("wizard-1").CurrentHP, "nothing applies while suspended")
	s.Empty(s.tokenUpdates, "no token pushes for a provisional outcome")

	// The window blocks the turn cycle.
	_, err = s.svc.EndTurn(s.ctx, &encounter.EndTurnInput{EncounterID: encID})
	s.True(errors.IsFailedPrecondition(err))
	_, err = s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "goblin-1", TargetID: "fighter-1", Type: entities.ActionAttack},
	})
	s.True(errors.IsFailedPrecondition(err))

	s.mockEngine.EXPECT().
		ApplyReaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ApplyReactionInput) (*engine.ApplyReactionOutput, error) {
			s.Equal(entities.SpellShield, input.Descriptor.ID)
			s.Equal("wizard-1", input.Reactor.ID)
			s.Equal("goblin-1", input.Actor.ID)

			input.Reactor.ReactionsRemaining--
			s.True(input.Reactor.ConsumeSlot(1))

			modified := input.Outcome.Clone()
			modified.ACBonus = 5
			modified.Hit = false
			modified.Damage = 0
			return &engine.ApplyReactionOutput{Outcome: modified, SlotConsumed: 1}, nil
		})
	s.mockEngine.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		Return(&engine.ApplyOutcomeOutput{}, nil)

	reactOut, err := s.svc.ResolveReaction(s.ctx, &encounter.ResolveReactionInput{
		EncounterID:   encID,
		OpportunityID: opp.ID,
		ParticipantID: "wizard-1",
		Reaction:      entities.ReactionShieldSpell,
	})
	s.Require().NoError(err)

	s.False(reactOut.Outcome.Hit, "shield turned the hit into a miss")
	s.Equal(int32(1), reactOut.SlotConsumed)

	stored = s.load(encID)
	s.Equal(entities.PhaseTurnActive, stored.Phase)
	s.Nil(stored.PendingAction)
	s.Nil(stored.PendingOutcome)
	s.Empty(stored.PendingOpportunities)

	wizard := stored.FindParticipant("wizard-1")
	s.Equal(int32(14), wizard.CurrentHP)
	s.Equal(int32(0), wizard.ReactionsRemaining)
	s.Equal(int32(1), wizard.SpellSlots[1].Current)

	// Causal order: the reaction lands before the attack it answered.
	s.Require().Len(stored.ActionLog, 2)
	s.Equal(entities.ReactionShieldSpell, stored.ActionLog[0].Type)
	s.Equal("wizard-1", stored.ActionLog[0].ActorID)
	s.Equal("wizard-1", stored.ActionLog[0].TargetID)
	s.Equal(int32(0), stored.ActionLog[0].TurnOrder)
	s.Equal(int32(1), stored.ActionLog[0].SpellLevel)
	s.Equal(entities.ActionAttack, stored.ActionLog[1].Type)

	// The window is gone; resolving again is rejected.
	_, err = s.svc.ResolveReaction(s.ctx, &encounter.ResolveReactionInput{
		EncounterID:   encID,
		OpportunityID: opp.ID,
		ParticipantID: "wizard-1",
		Reaction:      entities.ReactionShieldSpell,
	})
	s.True(errors.IsFailedPrecondition(err))

	// The wizard's reaction is spent for the round: the same attack now
	// resolves without opening a window.
	s.mockEngine.EXPECT().
		ResolveAttack(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ResolveAttackInput) (*engine.ResolveAttackOutput, error) {
			return &engine.ResolveAttackOutput{Outcome: &entities.ActionOutcome{
				ActionID:   input.ActionID,
				Hit:        true,
				Damage:     4,
				DamageType: entities.DamagePiercing,
			}}, nil
		})
	s.mockEngine.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ApplyOutcomeInput) (*engine.ApplyOutcomeOutput, error) {
			return &engine.ApplyOutcomeOutput{DamageDealt: input.Target.ApplyDamage(input.Outcome.Damage)}, nil
		})

	again, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action: &entities.CombatAction{
			ActorID:  "goblin-1",
			TargetID: "wizard-1",
			Type:     entities.ActionAttack,
		},
	})
	s.Require().NoError(err)
	s.Empty(again.Opportunities, "a spent reaction is soft ineligibility, not an error")
	s.Equal(int32(10), s.load(encID).FindParticipant("wizard-1").CurrentHP)

	// The budget refreshes at the start of the wizard's own turn.
	_, err = s.svc.EndTurn(s.ctx, &encounter.EndTurnInput{EncounterID: encID})
	s.Require().NoError(err)
	s.Equal(int32(1), s.load(encID).FindParticipant("wizard-1").ReactionsRemaining)
}

func (s *OrchestratorTestSuite) TestDeclineLandsOriginalOutcome() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.goblin(), s.wizard()},
		"goblin-1", "wizard-1",
	)

	s.mockEngine.EXPECT().
		ResolveAttack(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ResolveAttackInput) (*engine.ResolveAttackOutput, error) {
			return &engine.ResolveAttackOutput{Outcome: &entities.ActionOutcome{
				ActionID:   input.ActionID,
				Hit:        true,
				Damage:     6,
				DamageType: entities.DamagePiercing,
			}}, nil
		})

	out, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "goblin-1", TargetID: "wizard-1", Type: entities.ActionAttack},
	})
	s.Require().NoError(err)
	s.Require().Len(out.Opportunities, 1)

	s.mockEngine.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ApplyOutcomeInput) (*engine.ApplyOutcomeOutput, error) {
			return &engine.ApplyOutcomeOutput{DamageDealt: input.Target.ApplyDamage(input.Outcome.Damage)}, nil
		})

	declineOut, err := s.svc.ResolveReaction(s.ctx, &encounter.ResolveReactionInput{
		EncounterID:   encID,
		OpportunityID: out.Opportunities[0].ID,
		ParticipantID: "wizard-1",
		Decline:       true,
	})
	s.Require().NoError(err)
	s.Equal(int32(6), declineOut.Outcome.Damage)
	s.Nil(declineOut.ReactionOutcome)

	stored := s.load(encID)
	wizard := stored.FindParticipant("wizard-1")
	s.Equal(entities.PhaseTurnActive, stored.Phase)
	s.Equal(int32(8), wizard.CurrentHP)
	s.Equal(int32(1), wizard.ReactionsRemaining, "declining costs nothing")
	s.Equal(int32(2), wizard.SpellSlots[1].Current, "declining burns no slot")
	s.Len(stored.ActionLog, 1, "no reaction entry is logged for a decline")
}

func (s *OrchestratorTestSuite) TestDeclineKeepsWindowWhileOthersPend() {
	protector := builders.NewParticipantBuilder().
		WithID("fighter-1").
		WithName("Brynn").
		WithSide(entities.SideAlly).
		WithHP(28, 28).
		WithPosition(entities.ZoneAdjacent).
		WithFightingStyles(entities.FightingStyleProtection).
		Build()

	encID := s.startedEncounter(
		[]*entities.Participant{s.goblin(), s.wizard(), protector},
		"goblin-1", "wizard-1", "fighter-1",
	)

	s.mockEngine.EXPECT().
		ResolveAttack(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ResolveAttackInput) (*engine.ResolveAttackOutput, error) {
			return &engine.ResolveAttackOutput{Outcome: &entities.ActionOutcome{
				ActionID:   input.ActionID,
				Hit:        true,
				Damage:     5,
				DamageType: entities.DamagePiercing,
			}}, nil
		})

	out, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "goblin-1", TargetID: "wizard-1", Type: entities.ActionAttack},
	})
	s.Require().NoError(err)

	// Both the protector (ally attacked nearby) and the wizard (shield)
	// get offers from the same attack.
	s.Require().Len(out.Opportunities, 2)
	byParticipant := map[string]*entities.ReactionOpportunity{}
	for _, opp := range out.Opportunities {
		byParticipant[opp.ParticipantID] = opp
	}
	s.Require().Contains(byParticipant, "fighter-1")
	s.Require().Contains(byParticipant, "wizard-1")
	s.Equal(entities.TriggerAllyAttackedNearby, byParticipant["fighter-1"].Trigger)

	// A participant cannot answer someone else's opportunity.
	_, err = s.svc.ResolveReaction(s.ctx, &encounter.ResolveReactionInput{
		EncounterID:   encID,
		OpportunityID: byParticipant["fighter-1"].ID,
		ParticipantID: "wizard-1",
		Decline:       true,
	})
	s.True(errors.IsFailedPrecondition(err))

	// First decline leaves the window open for the other offer.
	wizDecline, err := s.svc.ResolveReaction(s.ctx, &encounter.ResolveReactionInput{
		EncounterID:   encID,
		OpportunityID: byParticipant["wizard-1"].ID,
		ParticipantID: "wizard-1",
		Decline:       true,
	})
	s.Require().NoError(err)
	s.Nil(wizDecline.Outcome, "the action stays suspended")
	s.Equal(entities.PhaseReactionWindow, s.load(encID).Phase)

	// Re-submitting the consumed opportunity is a rejected request.
	_, err = s.svc.ResolveReaction(s.ctx, &encounter.ResolveReactionInput{
		EncounterID:   encID,
		OpportunityID: byParticipant["wizard-1"].ID,
		ParticipantID: "wizard-1",
		Decline:       true,
	})
	s.True(errors.IsNotFound(err))

	// The last decline lands the suspended attack.
	s.mockEngine.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ApplyOutcomeInput) (*engine.ApplyOutcomeOutput, error) {
			return &engine.ApplyOutcomeOutput{DamageDealt: input.Target.ApplyDamage(input.Outcome.Damage)}, nil
		})

	final, err := s.svc.ResolveReaction(s.ctx, &encounter.ResolveReactionInput{
		EncounterID:   encID,
		OpportunityID: byParticipant["fighter-1"].ID,
		ParticipantID: "fighter-1",
		Decline:       true,
	})
	s.Require().NoError(err)
	s.Equal(int32(5), final.Outcome.Damage)

	stored := s.load(encID)
	s.Equal(entities.PhaseTurnActive, stored.Phase)
	s.Equal(int32(9), stored.FindParticipant("wizard-1").CurrentHP)
}

func (s *OrchestratorTestSuite) TestMovementProvokesOpportunityAttack() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.goblin(), s.fighter()},
		"goblin-1", "fighter-1",
	)

	out, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action: &entities.CombatAction{
			ActorID:  "goblin-1",
			Type:     entities.ActionMove,
			Movement: &entities.Movement{From: entities.ZoneMelee, To: entities.ZoneRanged},
		},
	})
	s.Require().NoError(err)

	s.Require().Len(out.Opportunities, 1)
	opp := out.Opportunities[0]
	s.Equal("fighter-1", opp.ParticipantID)
	s.Equal(entities.TriggerCreatureLeavesReach, opp.Trigger)
	s.Equal([]entities.ActionType{entities.ReactionOpportunityAttack}, opp.Offered)
	s.Equal(int32(30), out.Outcome.MovementCost)
	s.Equal(entities.ZoneMelee, s.load(encID).FindParticipant("goblin-1").Position, "position holds while suspended")

	// The opportunity attack drops the goblin mid-step: the movement is
	// canceled and the goblin never changes zones.
	s.mockEngine.EXPECT().
		ApplyReaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ApplyReactionInput) (*engine.ApplyReactionOutput, error) {
			s.Equal(reactions.EffectAttack, input.Descriptor.Kind)
			input.Reactor.ReactionsRemaining--
			dealt := input.Actor.ApplyDamage(7)
			return &engine.ApplyReactionOutput{
				Outcome: input.Outcome,
				ReactionOutcome: &entities.ActionOutcome{
					ActionID:       input.ReactionActionID,
					Hit:            true,
					Damage:         dealt,
					DamageType:     entities.DamageSlashing,
					TargetDefeated: true,
				},
				MovementCanceled: true,
			}, nil
		})

	reactOut, err := s.svc.ResolveReaction(s.ctx, &encounter.ResolveReactionInput{
		EncounterID:   encID,
		OpportunityID: opp.ID,
		ParticipantID: "fighter-1",
		Reaction:      entities.ReactionOpportunityAttack,
	})
	s.Require().NoError(err)
	s.Require().NotNil(reactOut.ReactionOutcome)
	s.True(reactOut.ReactionOutcome.TargetDefeated)

	stored := s.load(encID)
	goblin := stored.FindParticipant("goblin-1")
	s.Equal(entities.ZoneMelee, goblin.Position, "canceled movement never lands")
	s.True(goblin.IsDefeated())
	s.Equal(entities.PhaseTurnActive, stored.Phase)

	s.Require().Len(stored.ActionLog, 2)
	s.Equal(entities.ReactionOpportunityAttack, stored.ActionLog[0].Type)
	s.Equal("fighter-1", stored.ActionLog[0].ActorID)
	s.Equal("goblin-1", stored.ActionLog[0].TargetID)
	s.Equal(entities.ActionMove, stored.ActionLog[1].Type)
}

func (s *OrchestratorTestSuite) TestDisengagePreventsOpportunityAttacks() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.goblin(), s.fighter()},
		"goblin-1", "fighter-1",
	)

	_, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "goblin-1", Type: entities.ActionDisengage},
	})
	s.Require().NoError(err)

	out, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action: &entities.CombatAction{
			ActorID:  "goblin-1",
			Type:     entities.ActionMove,
			Movement: &entities.Movement{From: entities.ZoneMelee, To: entities.ZoneRanged},
		},
	})
	s.Require().NoError(err)

	s.Empty(out.Opportunities, "disengage suppresses the provocation")
	stored := s.load(encID)
	s.Equal(entities.ZoneRanged, stored.FindParticipant("goblin-1").Position)
	s.Len(stored.ActionLog, 2)
	s.Equal(1, s.tokenUpdates["goblin-1"])
}

func (s *OrchestratorTestSuite) TestMovementValidation() {
	// The fighter sits at ranged so no opportunity attack can interfere.
	distantFighter := s.fighter()
	distantFighter.Position = entities.ZoneRanged

	encID := s.startedEncounter(
		[]*entities.Participant{s.goblin(), distantFighter},
		"goblin-1", "fighter-1",
	)

	submit := func(action *entities.CombatAction) error {
		_, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{EncounterID: encID, Action: action})
		return err
	}

	// Missing movement payload.
	err := submit(&entities.CombatAction{ActorID: "goblin-1", Type: entities.ActionMove})
	s.True(errors.IsInvalidArgument(err))

	// From must match the actor's actual zone.
	err = submit(&entities.CombatAction{
		ActorID:  "goblin-1",
		Type:     entities.ActionMove,
		Movement: &entities.Movement{From: entities.ZoneDistant, To: entities.ZoneRanged},
	})
	s.True(errors.IsInvalidArgument(err))

	// Melee to distant is three zone steps: beyond a 30 ft walk.
	err = submit(&entities.CombatAction{
		ActorID:  "goblin-1",
		Type:     entities.ActionMove,
		Movement: &entities.Movement{From: entities.ZoneMelee, To: entities.ZoneDistant},
	})
	s.True(errors.IsFailedPrecondition(err))

	// Dashing doubles the budget and makes the same move legal.
	out, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action: &entities.CombatAction{
			ActorID:  "goblin-1",
			Type:     entities.ActionDash,
			Movement: &entities.Movement{From: entities.ZoneMelee, To: entities.ZoneDistant},
		},
	})
	s.Require().NoError(err)
	s.Equal(int32(45), out.Outcome.MovementCost)
	s.Equal(entities.ZoneDistant, s.load(encID).FindParticipant("goblin-1").Position)
}

func (s *OrchestratorTestSuite) TestCastSpellSlotBurnsEvenWhenCountered() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.wizard(), s.cultist(), s.goblin()},
		"wizard-1", "cultist-1", "goblin-1",
	)

	s.mockEngine.EXPECT().
		ResolveSavingThrow(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ResolveSavingThrowInput) (*engine.ResolveSavingThrowOutput, error) {
			s.Equal("goblin-1", input.Target.ID)
			s.Equal(entities.AbilityDexterity, input.Ability)
			return &engine.ResolveSavingThrowOutput{Outcome: &entities.ActionOutcome{
				ActionID:    input.ActionID,
				SaveRoll:    7,
				SaveTotal:   9,
				SaveDC:      input.DC,
				SaveSuccess: false,
				Damage:      14,
				DamageType:  entities.DamageFire,
			}}, nil
		})

	out, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action: &entities.CombatAction{
			ActorID:       "wizard-1",
			TargetID:      "goblin-1",
			Type:          entities.ActionCastSpell,
			SpellID:       "fireball",
			SpellLevel:    3,
			SaveAbility:   entities.AbilityDexterity,
			SaveDC:        15,
			DamageFormula: "8d6",
			DamageType:    entities.DamageFire,
			HalfOnSave:    true,
		},
	})
	s.Require().NoError(err)

	s.Require().Len(out.Opportunities, 1)
	opp := out.Opportunities[0]
	s.Equal("cultist-1", opp.ParticipantID)
	s.Equal(entities.TriggerSpellCastInRange, opp.Trigger)

	// The slot burned at the moment of casting, while the effect is still
	// suspended.
	s.Equal(int32(0), s.load(encID).FindParticipant("wizard-1").SpellSlots[3].Current)

	s.mockEngine.EXPECT().
		ApplyReaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ApplyReactionInput) (*engine.ApplyReactionOutput, error) {
			s.Equal(reactions.EffectNegateSpell, input.Descriptor.Kind)
			input.Reactor.ReactionsRemaining--
			s.True(input.Reactor.ConsumeSlot(3))

			negated := input.Outcome.Clone()
			negated.Negated = true
			negated.Damage = 0
			return &engine.ApplyReactionOutput{Outcome: negated, SlotConsumed: 3}, nil
		})
	s.mockEngine.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		Return(&engine.ApplyOutcomeOutput{}, nil)

	reactOut, err := s.svc.ResolveReaction(s.ctx, &encounter.ResolveReactionInput{
		EncounterID:   encID,
		OpportunityID: opp.ID,
		ParticipantID: "cultist-1",
		Reaction:      entities.ReactionCounterspell,
	})
	s.Require().NoError(err)
	s.True(reactOut.Outcome.Negated)
	s.Equal(int32(3), reactOut.SlotConsumed)

	stored := s.load(encID)
	s.Equal(int32(7), stored.FindParticipant("goblin-1").CurrentHP, "negated spell deals nothing")
	s.Equal(int32(0), stored.FindParticipant("wizard-1").SpellSlots[3].Current, "countered cast still costs the slot")
	s.Equal(int32(0), stored.FindParticipant("cultist-1").SpellSlots[3].Current)

	s.Require().Len(stored.ActionLog, 2)
	s.Equal(entities.ReactionCounterspell, stored.ActionLog[0].Type)
	s.Equal("cultist-1", stored.ActionLog[0].ActorID)
	s.Equal("wizard-1", stored.ActionLog[0].TargetID)
	s.Equal(int32(3), stored.ActionLog[0].SpellLevel)

	// The slot is gone: the same cast is now a rejected request, with
	// nothing logged or mutated.
	_, err = s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action: &entities.CombatAction{
			ActorID:     "wizard-1",
			TargetID:    "goblin-1",
			Type:        entities.ActionCastSpell,
			SpellID:     "fireball",
			SpellLevel:  3,
			SaveAbility: entities.AbilityDexterity,
		},
	})
	s.True(errors.IsResourceExhausted(err))
	s.Len(s.load(encID).ActionLog, 2)
}

func (s *OrchestratorTestSuite) TestCastSpellValidation() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.wizard(), s.goblin()},
		"wizard-1", "goblin-1",
	)

	// Unprepared spell.
	_, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action: &entities.CombatAction{
			ActorID: "wizard-1",
			Type:    entities.ActionCastSpell,
			SpellID: "magic_missile",
		},
	})
	s.True(errors.IsFailedPrecondition(err))

	// Missing spell ID.
	_, err = s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "wizard-1", Type: entities.ActionCastSpell},
	})
	s.True(errors.IsInvalidArgument(err))

	// A cantrip needs no slot and raises no spell-cast trigger, so it
	// resolves immediately even with a counterspeller on the field.
	out, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action: &entities.CombatAction{
			ActorID: "wizard-1",
			Type:    entities.ActionCastSpell,
			SpellID: "fire_bolt",
		},
	})
	s.Require().NoError(err)
	s.Empty(out.Opportunities)
	s.Contains(out.Outcome.Description, "fire_bolt")

	stored := s.load(encID)
	s.Equal(int32(2), stored.FindParticipant("wizard-1").SpellSlots[1].Current)
	s.Equal(int32(1), stored.FindParticipant("wizard-1").SpellSlots[3].Current)
	s.Len(stored.ActionLog, 1)
}

func (s *OrchestratorTestSuite) TestHealRevivesDefeatedAlly() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.fighter(), s.wizard(), s.goblin()},
		"fighter-1", "wizard-1", "goblin-1",
	)

	s.mutate(encID, func(enc *entities.Encounter) {
		wizard := enc.FindParticipant("wizard-1")
		wizard.CurrentHP = 0
		wizard.AddCondition(entities.Condition{
			Name:   entities.ConditionUnconscious,
			Rounds: entities.DurationIndefinite,
		})
	})

	// Attacking a downed participant is rejected; healing one is not.
	_, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "fighter-1", TargetID: "wizard-1", Type: entities.ActionAttack},
	})
	s.True(errors.IsFailedPrecondition(err))

	s.mockEngine.EXPECT().
		ResolveHeal(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ResolveHealInput) (*engine.ResolveHealOutput, error) {
			s.Equal("wizard-1", input.Target.ID)
			s.Equal("2d4+2", input.Formula)
			return &engine.ResolveHealOutput{Outcome: &entities.ActionOutcome{
				ActionID: input.ActionID,
				Healed:   7,
			}}, nil
		})
	s.mockEngine.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ApplyOutcomeInput) (*engine.ApplyOutcomeOutput, error) {
			healed := input.Target.ApplyHeal(input.Outcome.Healed)
			input.Target.RemoveCondition(entities.ConditionUnconscious)
			return &engine.ApplyOutcomeOutput{Healed: healed, Revived: true}, nil
		})

	out, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action: &entities.CombatAction{
			ActorID:       "fighter-1",
			TargetID:      "wizard-1",
			Type:          entities.ActionHeal,
			DamageFormula: "2d4+2",
		},
	})
	s.Require().NoError(err)
	s.Equal(int32(7), out.Outcome.Healed)

	wizard := s.load(encID).FindParticipant("wizard-1")
	s.Equal(int32(7), wizard.CurrentHP)
	s.False(wizard.IsDefeated())
	s.False(wizard.HasCondition(entities.ConditionUnconscious))
	s.Equal(1, s.tokenUpdates["wizard-1"])
}

func (s *OrchestratorTestSuite) TestEndTurnSkipsDefeatedAndWrapsRound() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.fighter(), s.wizard(), s.goblin()},
		"fighter-1", "wizard-1", "goblin-1",
	)

	s.mutate(encID, func(enc *entities.Encounter) {
		enc.FindParticipant("wizard-1").CurrentHP = 0
		enc.FindParticipant("goblin-1").AddCondition(entities.Condition{
			Name:   entities.ConditionPoisoned,
			Rounds: 1,
		})
		enc.FindParticipant("fighter-1").ReactionsRemaining = 0
	})

	// Fighter ends: the downed wizard is skipped, the goblin is up, and
	// the goblin's one-round poison ticks away at its turn start.
	out, err := s.svc.EndTurn(s.ctx, &encounter.EndTurnInput{EncounterID: encID})
	s.Require().NoError(err)
	s.Equal("goblin-1", out.ActiveParticipantID)
	s.Equal(int32(1), out.Round)
	s.False(s.load(encID).FindParticipant("goblin-1").HasCondition(entities.ConditionPoisoned))

	// Goblin ends: the order wraps, the round increments exactly once,
	// and the fighter's spent reaction refreshes at its own turn start.
	out, err = s.svc.EndTurn(s.ctx, &encounter.EndTurnInput{EncounterID: encID})
	s.Require().NoError(err)
	s.Equal("fighter-1", out.ActiveParticipantID)
	s.Equal(int32(2), out.Round)
	s.Equal(int32(1), s.load(encID).FindParticipant("fighter-1").ReactionsRemaining)

	s.Equal([]string{"goblin-1", "fighter-1"}, s.turnStarts)
}

func (s *OrchestratorTestSuite) TestEndTurnEndsWhenNobodyCanAct() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.fighter(), s.goblin()},
		"fighter-1", "goblin-1",
	)

	s.mutate(encID, func(enc *entities.Encounter) {
		enc.FindParticipant("fighter-1").CurrentHP = 0
		enc.FindParticipant("goblin-1").CurrentHP = 0
	})

	out, err := s.svc.EndTurn(s.ctx, &encounter.EndTurnInput{EncounterID: encID})
	s.Require().NoError(err)
	s.Equal(entities.StatusEnded, out.Encounter.Status)
	s.Equal(entities.PhaseEnded, out.Encounter.Phase)
	s.Empty(out.ActiveParticipantID)
	s.Empty(s.turnStarts)
}

func (s *OrchestratorTestSuite) TestEndEncounterDiscardsPendingWindow() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.goblin(), s.wizard()},
		"goblin-1", "wizard-1",
	)

	s.mockEngine.EXPECT().
		ResolveAttack(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ResolveAttackInput) (*engine.ResolveAttackOutput, error) {
			return &engine.ResolveAttackOutput{Outcome: &entities.ActionOutcome{
				ActionID:   input.ActionID,
				Hit:        true,
				Damage:     3,
				DamageType: entities.DamagePiercing,
			}}, nil
		})

	out, err := s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "goblin-1", TargetID: "wizard-1", Type: entities.ActionAttack},
	})
	s.Require().NoError(err)
	s.Require().Len(out.Opportunities, 1)

	endOut, err := s.svc.EndEncounter(s.ctx, &encounter.EndEncounterInput{EncounterID: encID})
	s.Require().NoError(err)
	s.Equal(entities.StatusEnded, endOut.Encounter.Status)
	s.Equal(entities.PhaseEnded, endOut.Encounter.Phase)
	s.Nil(endOut.Encounter.PendingAction)
	s.Empty(endOut.Encounter.PendingOpportunities)

	// The suspended attack was discarded, never applied.
	s.Equal(int32(14), s.load(encID).FindParticipant("wizard-1").CurrentHP)

	// Terminal means terminal.
	_, err = s.svc.ResolveReaction(s.ctx, &encounter.ResolveReactionInput{
		EncounterID:   encID,
		OpportunityID: out.Opportunities[0].ID,
		ParticipantID: "wizard-1",
		Decline:       true,
	})
	s.True(errors.IsFailedPrecondition(err))
	_, err = s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "goblin-1", TargetID: "wizard-1", Type: entities.ActionAttack},
	})
	s.True(errors.IsFailedPrecondition(err))
	_, err = s.svc.EndEncounter(s.ctx, &encounter.EndEncounterInput{EncounterID: encID})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestListPendingOpportunities() {
	protector := builders.NewParticipantBuilder().
		WithID("fighter-1").
		WithName("Brynn").
		WithSide(entities.SideAlly).
		WithHP(28, 28).
		WithPosition(entities.ZoneAdjacent).
		WithFightingStyles(entities.FightingStyleProtection).
		Build()

	encID := s.startedEncounter(
		[]*entities.Participant{s.goblin(), s.wizard(), protector},
		"goblin-1", "wizard-1", "fighter-1",
	)

	// No window yet.
	listOut, err := s.svc.ListPendingOpportunities(s.ctx, &encounter.ListPendingOpportunitiesInput{EncounterID: encID})
	s.Require().NoError(err)
	s.Empty(listOut.Opportunities)

	s.mockEngine.EXPECT().
		ResolveAttack(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *engine.ResolveAttackInput) (*engine.ResolveAttackOutput, error) {
			return &engine.ResolveAttackOutput{Outcome: &entities.ActionOutcome{
				ActionID:   input.ActionID,
				Hit:        true,
				Damage:     5,
				DamageType: entities.DamagePiercing,
			}}, nil
		})
	_, err = s.svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: encID,
		Action:      &entities.CombatAction{ActorID: "goblin-1", TargetID: "wizard-1", Type: entities.ActionAttack},
	})
	s.Require().NoError(err)

	listOut, err = s.svc.ListPendingOpportunities(s.ctx, &encounter.ListPendingOpportunitiesInput{EncounterID: encID})
	s.Require().NoError(err)
	s.Len(listOut.Opportunities, 2)

	listOut, err = s.svc.ListPendingOpportunities(s.ctx, &encounter.ListPendingOpportunitiesInput{
		EncounterID:   encID,
		ParticipantID: "wizard-1",
	})
	s.Require().NoError(err)
	s.Require().Len(listOut.Opportunities, 1)
	s.Equal("wizard-1", listOut.Opportunities[0].ParticipantID)

	listOut, err = s.svc.ListPendingOpportunities(s.ctx, &encounter.ListPendingOpportunitiesInput{
		EncounterID:   encID,
		ParticipantID: "nobody-1",
	})
	s.Require().NoError(err)
	s.Empty(listOut.Opportunities)

	_, err = s.svc.ListPendingOpportunities(s.ctx, &encounter.ListPendingOpportunitiesInput{EncounterID: "enc-missing"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestUpdatePositionSkipsTriggerScan() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.goblin(), s.fighter()},
		"goblin-1", "fighter-1",
	)

	// The same zone change submitted as an action would provoke the
	// fighter; a renderer reconciliation never does.
	out, err := s.svc.UpdatePosition(s.ctx, &encounter.UpdatePositionInput{
		EncounterID:   encID,
		ParticipantID: "goblin-1",
		Position:      entities.ZoneRanged,
	})
	s.Require().NoError(err)
	s.Equal(entities.PhaseTurnActive, out.Encounter.Phase)
	s.Empty(out.Encounter.PendingOpportunities)

	stored := s.load(encID)
	s.Equal(entities.ZoneRanged, stored.FindParticipant("goblin-1").Position)
	s.Empty(stored.ActionLog, "reconciliation is not a combat action")
	s.Equal(1, s.tokenUpdates["goblin-1"])

	_, err = s.svc.UpdatePosition(s.ctx, &encounter.UpdatePositionInput{
		EncounterID:   encID,
		ParticipantID: "goblin-1",
		Position:      "swamp",
	})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.svc.UpdatePosition(s.ctx, &encounter.UpdatePositionInput{
		EncounterID:   encID,
		ParticipantID: "stranger-1",
		Position:      entities.ZoneMelee,
	})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestGetEncounter() {
	encID := s.startedEncounter(
		[]*entities.Participant{s.fighter(), s.goblin()},
		"fighter-1", "goblin-1",
	)

	out, err := s.svc.GetEncounter(s.ctx, &encounter.GetEncounterInput{EncounterID: encID})
	s.Require().NoError(err)
	s.Equal(encID, out.Encounter.ID)
	s.Equal(entities.PhaseTurnActive, out.Encounter.Phase)

	_, err = s.svc.GetEncounter(s.ctx, &encounter.GetEncounterInput{EncounterID: "enc-missing"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestRepositoryErrorsPropagate() {
	mockRepo := encounterrepomock.NewMockRepository(s.ctrl)
	triggers, err := reactions.NewEngine(&reactions.Config{IDGenerator: idgen.NewSequential("opp")})
	s.Require().NoError(err)

	svc, err := encounter.NewOrchestrator(&encounter.Config{
		Engine:        s.mockEngine,
		TriggerEngine: triggers,
		Repository:    mockRepo,
		TokenSync:     s.broadcaster,
		IDGenerator:   idgen.NewSequential("act"),
	})
	s.Require().NoError(err)

	mockRepo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(nil, errors.Internal("store unavailable"))

	_, err = svc.SubmitAction(s.ctx, &encounter.SubmitActionInput{
		EncounterID: "enc-1",
		Action:      &entities.CombatAction{ActorID: "fighter-1", Type: entities.ActionDodge},
	})
	s.True(errors.IsInternal(err))
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
