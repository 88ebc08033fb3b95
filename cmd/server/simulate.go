package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/orchestrators/encounter"
	"github.com/KirkDiggler/encounter-api/internal/repositories/encounters"
	"github.com/KirkDiggler/encounter-api/internal/tokensync"
)

var simulateRounds int

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted encounter in process",
	Long: `Play a small scripted skirmish against the in-memory store and print
every action, reaction window, and token update as it resolves. Useful for
eyeballing the combat flow without a client.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simulateRounds, "rounds", 3, "maximum rounds to play before calling the encounter")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, broadcaster, err := buildEncounterService(encounters.NewInMemory())
	if err != nil {
		return err
	}

	broadcaster.OnUpdate(func(encounterID, tokenID string, updates tokensync.Updates) {
		fmt.Printf("  [token] %s hp=%d/%d pos=%s defeated=%v\n",
			tokenID, updates.HP, updates.MaxHP, updates.Position, updates.Defeated)
	})
	broadcaster.OnTurnStarted(func(encounterID, participantID string) {
		fmt.Printf("\n--- turn: %s ---\n", participantID)
	})

	fmt.Println("=== Creating Encounter ===")
	created, err := svc.CreateEncounter(ctx, &encounter.CreateEncounterInput{
		Participants: demoParticipants(),
	})
	if err != nil {
		return fmt.Errorf("failed to create encounter: %w", err)
	}

	encID := created.Encounter.ID
	for _, p := range created.Encounter.Participants {
		fmt.Printf("%s (%s, %s) hp=%d ac=%d pos=%s\n",
			p.Name, p.ID, p.Side, p.CurrentHP, p.ArmorClass, p.Position)
	}

	fmt.Println("\n=== Rolling Initiative ===")
	started, err := svc.StartEncounter(ctx, &encounter.StartEncounterInput{EncounterID: encID})
	if err != nil {
		return fmt.Errorf("failed to start encounter: %w", err)
	}
	for i, entry := range started.Initiative {
		fmt.Printf("  %d. %s rolled %d (initiative %d)\n",
			i+1, entry.ParticipantID, entry.Roll, entry.Initiative)
	}

	enc := started.Encounter
	for enc.Status == entities.StatusActive && enc.Round <= int32(simulateRounds) {
		active := enc.ActiveParticipant()
		if active == nil {
			break
		}

		enc, err = playTurn(ctx, svc, enc, active)
		if err != nil {
			return err
		}
		if enc.Status != entities.StatusActive {
			break
		}

		endOut, err := svc.EndTurn(ctx, &encounter.EndTurnInput{EncounterID: encID})
		if err != nil {
			return fmt.Errorf("failed to end turn: %w", err)
		}
		enc = endOut.Encounter
	}

	if enc.Status == entities.StatusActive {
		fmt.Printf("\n=== Calling it after round %d ===\n", simulateRounds)
		out, err := svc.EndEncounter(ctx, &encounter.EndEncounterInput{EncounterID: encID})
		if err != nil {
			return fmt.Errorf("failed to end encounter: %w", err)
		}
		enc = out.Encounter
	}

	fmt.Println("\n=== Action Log ===")
	for _, a := range enc.ActionLog {
		target := ""
		if a.TargetID != "" {
			target = " -> " + a.TargetID
		}
		fmt.Printf("  round %d: %s %s%s\n", a.Round, a.ActorID, a.Type, target)
	}

	fmt.Println("\n✓ Simulation complete")
	return nil
}

// playTurn submits the scripted action for the active participant and answers
// any reaction windows it opens.
func playTurn(ctx context.Context, svc encounter.Service, enc *entities.Encounter, active *entities.Participant) (*entities.Encounter, error) {
	action := pickAction(enc, active)

	describeAction(active, action)
	out, err := svc.SubmitAction(ctx, &encounter.SubmitActionInput{
		EncounterID: enc.ID,
		Action:      action,
	})
	if err != nil {
		// The script does not second-guess the rules; fall back to a dodge
		// so the demo keeps moving.
		fmt.Printf("  rejected: %v\n", err)
		out, err = svc.SubmitAction(ctx, &encounter.SubmitActionInput{
			EncounterID: enc.ID,
			Action:      &entities.CombatAction{ActorID: active.ID, Type: entities.ActionDodge},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to submit action: %w", err)
		}
	}
	narrateOutcome(out.Outcome)

	enc = out.Encounter
	for enc.Phase == entities.PhaseReactionWindow && len(enc.PendingOpportunities) > 0 {
		opp := enc.PendingOpportunities[0]
		fmt.Printf("  [reaction window] %s\n", opp.Description)

		input := &encounter.ResolveReactionInput{
			EncounterID:   enc.ID,
			OpportunityID: opp.ID,
			ParticipantID: opp.ParticipantID,
		}
		if reaction, take := chooseReaction(opp); take {
			input.Reaction = reaction
			fmt.Printf("  %s reacts with %s\n", opp.ParticipantID, reaction)
		} else {
			input.Decline = true
			fmt.Printf("  %s declines\n", opp.ParticipantID)
		}

		rout, err := svc.ResolveReaction(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reaction: %w", err)
		}
		if rout.SlotConsumed > 0 {
			fmt.Printf("  burned a level %d slot\n", rout.SlotConsumed)
		}
		narrateOutcome(rout.ReactionOutcome)
		narrateOutcome(rout.Outcome)

		enc = rout.Encounter
	}

	return enc, nil
}

// pickAction is the per-combatant script: the fighter swings, the wizard
// leads with fireball then turtles, the goblin disengages toward the wizard
// the hard way, the adept shoots the wizard.
func pickAction(enc *entities.Encounter, active *entities.Participant) *entities.CombatAction {
	switch active.ID {
	case "imara":
		if target := firstAliveEnemy(enc, active); target != nil && active.HasUnusedSlot(3) {
			return &entities.CombatAction{
				ActorID:       active.ID,
				TargetID:      target.ID,
				Type:          entities.ActionCastSpell,
				SpellID:       "fireball",
				SpellLevel:    3,
				SaveAbility:   entities.AbilityDexterity,
				HalfOnSave:    true,
				DamageFormula: "8d6",
				DamageType:    entities.DamageFire,
			}
		}
		return &entities.CombatAction{ActorID: active.ID, Type: entities.ActionDodge}

	case "skar":
		if enc.Round >= 2 && active.Position == entities.ZoneMelee {
			return &entities.CombatAction{
				ActorID: active.ID,
				Type:    entities.ActionMove,
				Movement: &entities.Movement{
					From: entities.ZoneMelee,
					To:   entities.ZoneRanged,
				},
			}
		}

	case "vex":
		if target := enc.FindParticipant("imara"); target != nil && !target.IsDefeated() {
			return &entities.CombatAction{
				ActorID:          active.ID,
				TargetID:         target.ID,
				Type:             entities.ActionAttack,
				WeaponProperties: []string{entities.WeaponPropertyRanged},
			}
		}
	}

	if target := firstAliveEnemy(enc, active); target != nil {
		return &entities.CombatAction{ActorID: active.ID, TargetID: target.ID, Type: entities.ActionAttack}
	}
	return &entities.CombatAction{ActorID: active.ID, Type: entities.ActionDodge}
}

// chooseReaction takes any reaction the script knows how to use and declines
// the rest.
func chooseReaction(opp *entities.ReactionOpportunity) (entities.ActionType, bool) {
	for _, offered := range opp.Offered {
		switch offered {
		case entities.ReactionShieldSpell,
			entities.ReactionCounterspell,
			entities.ReactionOpportunityAttack:
			return offered, true
		}
	}
	return "", false
}

func firstAliveEnemy(enc *entities.Encounter, active *entities.Participant) *entities.Participant {
	for _, p := range enc.Participants {
		if p.Side == active.Side || p.IsDefeated() {
			continue
		}
		return p
	}
	return nil
}

func describeAction(active *entities.Participant, action *entities.CombatAction) {
	switch {
	case action.Type == entities.ActionCastSpell:
		fmt.Printf("%s casts %s (level %d) at %s\n", active.Name, action.SpellID, action.SpellLevel, action.TargetID)
	case action.Movement != nil:
		fmt.Printf("%s moves %s -> %s\n", active.Name, action.Movement.From, action.Movement.To)
	case action.TargetID != "":
		fmt.Printf("%s takes %s -> %s\n", active.Name, action.Type, action.TargetID)
	default:
		fmt.Printf("%s takes %s\n", active.Name, action.Type)
	}
}

func narrateOutcome(out *entities.ActionOutcome) {
	switch {
	case out == nil:
	case out.Negated:
		fmt.Println("  the spell fizzles, negated")
	case out.Healed > 0:
		fmt.Printf("  heals %d\n", out.Healed)
	case out.MovementCost > 0:
		fmt.Printf("  spends %d ft of movement\n", out.MovementCost)
	case out.SaveDC > 0:
		result := "fails"
		if out.SaveSuccess {
			result = "saves"
		}
		fmt.Printf("  save %d vs DC %d: %s, %d %s damage\n",
			out.SaveTotal, out.SaveDC, result, out.Damage, out.DamageType)
	case out.AttackRoll > 0:
		if !out.Hit {
			fmt.Printf("  attack %d misses\n", out.AttackTotal)
			return
		}
		crit := ""
		if out.Critical {
			crit = " (critical)"
		}
		fmt.Printf("  attack %d hits%s for %d %s damage\n",
			out.AttackTotal, crit, out.Damage, out.DamageType)
		if out.TargetDefeated {
			fmt.Println("  target goes down")
		}
	case out.Description != "":
		fmt.Printf("  %s\n", out.Description)
	}
}

func demoParticipants() []*entities.Participant {
	return []*entities.Participant{
		{
			ID:            "brynn",
			Name:          "Brynn",
			Side:          entities.SideAlly,
			Level:         3,
			AbilityScores: entities.AbilityScores{Strength: 16, Dexterity: 12, Constitution: 14, Intelligence: 10, Wisdom: 11, Charisma: 10},
			MaxHP:         28,
			ArmorClass:    16,
			Speed:         entities.Speed{Walk: 30},
			AttackFormula: "1d8+3",
			Position:      entities.ZoneMelee,
		},
		{
			ID:             "imara",
			Name:           "Imara",
			Side:           entities.SideAlly,
			Level:          5,
			AbilityScores:  entities.AbilityScores{Strength: 8, Dexterity: 14, Constitution: 12, Intelligence: 17, Wisdom: 12, Charisma: 11},
			MaxHP:          14,
			ArmorClass:     12,
			Speed:          entities.Speed{Walk: 30},
			AttackFormula:  "1d4",
			Position:       entities.ZoneRanged,
			PreparedSpells: []string{entities.SpellShield, "fireball"},
			SpellSlots: map[int32]*entities.SpellSlot{
				1: {Current: 2, Max: 2},
				3: {Current: 1, Max: 1},
			},
		},
		{
			ID:            "skar",
			Name:          "Skar",
			Side:          entities.SideEnemy,
			Level:         1,
			AbilityScores: entities.AbilityScores{Strength: 12, Dexterity: 14, Constitution: 10, Intelligence: 8, Wisdom: 8, Charisma: 8},
			MaxHP:         13,
			ArmorClass:    13,
			Speed:         entities.Speed{Walk: 30},
			AttackFormula: "1d6+2",
			Position:      entities.ZoneMelee,
		},
		{
			ID:             "vex",
			Name:           "Vex",
			Side:           entities.SideEnemy,
			Level:          4,
			AbilityScores:  entities.AbilityScores{Strength: 10, Dexterity: 14, Constitution: 12, Intelligence: 14, Wisdom: 11, Charisma: 13},
			MaxHP:          22,
			ArmorClass:     13,
			Speed:          entities.Speed{Walk: 30},
			AttackFormula:  "1d10+2",
			Position:       entities.ZoneRanged,
			PreparedSpells: []string{entities.SpellCounterspell},
			SpellSlots: map[int32]*entities.SpellSlot{
				3: {Current: 1, Max: 1},
			},
		},
	}
}
