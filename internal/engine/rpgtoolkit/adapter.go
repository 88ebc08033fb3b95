// Package rpgtoolkit provides the concrete implementation of the engine interface using rpg-toolkit modules.
package rpgtoolkit

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/encounter-api/internal/engine"
	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/errors"
	"github.com/KirkDiggler/encounter-api/internal/rules/reactions"
)

// Default resolution values when the caller leaves them unset.
const (
	// DefaultSaveDC applies to saving throws with no explicit DC.
	DefaultSaveDC int32 = 13
	// DefaultCheckDC applies to ability checks with no explicit DC.
	DefaultCheckDC int32 = 12
	// DefaultArmorClass applies to targets seeded without an AC.
	DefaultArmorClass int32 = 13

	// defaultWeaponDie is the damage die assumed for participants whose
	// seed record carries no attack formula.
	defaultWeaponDie = "1d8"
)

// damageNotationRegex accepts simple dice notation with an optional flat
// modifier: "2d6", "1d8+3", "1d4-1".
var damageNotationRegex = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?$`)

// Adapter implements the engine.Engine interface using rpg-toolkit
type Adapter struct {
	eventBus   events.EventBus
	diceRoller dice.Roller
}

// AdapterConfig contains configuration for creating a new Adapter
type AdapterConfig struct {
	EventBus   events.EventBus
	DiceRoller dice.Roller
}

// Validate checks that all required dependencies are provided
func (c *AdapterConfig) Validate() error {
	if c.EventBus == nil {
		return errors.InvalidArgument("event bus is required")
	}
	if c.DiceRoller == nil {
		return errors.InvalidArgument("dice roller is required")
	}
	return nil
}

// NewAdapter creates a new rpg-toolkit engine adapter
func NewAdapter(cfg *AdapterConfig) (*Adapter, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Adapter{
		eventBus:   cfg.EventBus,
		diceRoller: cfg.DiceRoller,
	}, nil
}

// Verify that Adapter implements engine.Engine interface
var _ engine.Engine = (*Adapter)(nil)

// CalculateAbilityModifier calculates the D&D 5e ability modifier for a given score
func (a *Adapter) CalculateAbilityModifier(score int32) int32 {
	// D&D 5e formula: floor((score - 10) / 2)
	// In Go, integer division already floors for positive results
	// For negative results, we need to adjust
	modifier := (score - 10) / 2
	if score < 10 && (score-10)%2 != 0 {
		modifier-- // Adjust for proper floor behavior with negative odd numbers
	}
	return modifier
}

// CalculateProficiencyBonus calculates the D&D 5e proficiency bonus for a given level
func (a *Adapter) CalculateProficiencyBonus(level int32) int32 {
	if level <= 0 {
		return 0
	}
	// D&D 5e proficiency bonus: +2 at level 1-4, +3 at 5-8, +4 at 9-12, +5 at 13-16, +6 at 17-20
	return 2 + ((level - 1) / 4)
}

// CalculateAttackModifier selects the attack ability from the weapon
// properties: finesse uses the better of strength and dexterity, ranged
// uses dexterity, everything else uses strength.
func (a *Adapter) CalculateAttackModifier(participant *entities.Participant, weaponProperties []string) int32 {
	hasProperty := func(want string) bool {
		for _, prop := range weaponProperties {
			if prop == want {
				return true
			}
		}
		return false
	}

	strMod := a.CalculateAbilityModifier(participant.AbilityScores.Strength)
	dexMod := a.CalculateAbilityModifier(participant.AbilityScores.Dexterity)

	switch {
	case hasProperty(entities.WeaponPropertyFinesse):
		if dexMod > strMod {
			return dexMod
		}
		return strMod
	case hasProperty(entities.WeaponPropertyRanged):
		return dexMod
	default:
		return strMod
	}
}

// CalculateSaveModifier returns the ability modifier, plus the proficiency
// bonus when the participant is proficient in that save.
func (a *Adapter) CalculateSaveModifier(participant *entities.Participant, ability entities.Ability) int32 {
	modifier := a.CalculateAbilityModifier(participant.AbilityScores.Score(ability))
	for _, prof := range participant.SaveProficiencies {
		if prof == ability {
			modifier += a.CalculateProficiencyBonus(participant.Level)
			break
		}
	}
	return modifier
}

// CalculateSkillModifier returns the ability modifier, plus the proficiency
// bonus when the participant is proficient in that skill.
func (a *Adapter) CalculateSkillModifier(participant *entities.Participant, skill string, ability entities.Ability) int32 {
	modifier := a.CalculateAbilityModifier(participant.AbilityScores.Score(ability))
	for _, prof := range participant.SkillProficiencies {
		if prof == skill {
			modifier += a.CalculateProficiencyBonus(participant.Level)
			break
		}
	}
	return modifier
}

// parseDamageNotation parses dice notation like "1d8+3" and returns the
// count, die size, and flat modifier
func parseDamageNotation(notation string) (count, size int, modifier int32, err error) {
	matches := damageNotationRegex.FindStringSubmatch(strings.ToLower(strings.TrimSpace(notation)))
	if len(matches) != 4 {
		return 0, 0, 0, errors.InvalidArgumentf("invalid dice notation: %s (expected format: XdY or XdY+Z)", notation)
	}

	count, err = strconv.Atoi(matches[1])
	if err != nil {
		return 0, 0, 0, errors.InvalidArgumentf("invalid dice count in notation: %s", notation)
	}

	size, err = strconv.Atoi(matches[2])
	if err != nil {
		return 0, 0, 0, errors.InvalidArgumentf("invalid die size in notation: %s", notation)
	}

	if matches[3] != "" {
		flat, convErr := strconv.Atoi(matches[3])
		if convErr != nil {
			return 0, 0, 0, errors.InvalidArgumentf("invalid modifier in notation: %s", notation)
		}
		modifier = int32(flat)
	}

	if count <= 0 || size <= 0 {
		return 0, 0, 0, errors.InvalidArgumentf("dice count and size must be positive: %s", notation)
	}

	return count, size, modifier, nil
}

// rollFormula rolls a dice notation formula through the injected roller.
// Critical hits double the number of dice, never the flat modifier. Totals
// floor at zero.
func (a *Adapter) rollFormula(formula string, critical bool) (int32, error) {
	count, size, modifier, err := parseDamageNotation(formula)
	if err != nil {
		return 0, err
	}

	if critical {
		count *= 2
	}

	rolls, err := a.diceRoller.RollN(count, size)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to roll %s", formula)
	}

	total := modifier
	for _, r := range rolls {
		total += int32(r)
	}
	if total < 0 {
		total = 0
	}

	return total, nil
}

// attackFormulaFor picks the damage formula for an attack: the action's own
// formula first, then the attacker's standard one, then a plain weapon die.
func attackFormulaFor(explicit string, attacker *entities.Participant) string {
	if explicit != "" {
		return explicit
	}
	if attacker.AttackFormula != "" {
		return attacker.AttackFormula
	}
	return defaultWeaponDie
}

// RollInitiative rolls 1d20 + dexterity modifier for every participant and
// returns them ordered highest first. Ties keep the caller's participant
// order so identical rolls always produce the same turn order.
func (a *Adapter) RollInitiative(ctx context.Context, input *engine.RollInitiativeInput) (*engine.RollInitiativeOutput, error) {
	if input == nil || len(input.Participants) == 0 {
		return nil, errors.InvalidArgument("participants are required")
	}

	entries := make([]engine.InitiativeEntry, 0, len(input.Participants))
	for _, p := range input.Participants {
		roll, err := a.diceRoller.Roll(20)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll initiative for %s", p.ID)
		}

		entries = append(entries, engine.InitiativeEntry{
			ParticipantID: p.ID,
			Roll:          int32(roll),
			Initiative:    int32(roll) + a.CalculateAbilityModifier(p.AbilityScores.Dexterity),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Initiative > entries[j].Initiative
	})

	order := make([]string, len(entries))
	for i, e := range entries {
		order[i] = e.ParticipantID
	}

	return &engine.RollInitiativeOutput{
		Entries:   entries,
		TurnOrder: order,
	}, nil
}

// ResolveAttack resolves one attack roll against the target's armor class.
// A natural 20 always hits and doubles the damage dice; a natural 1 always
// misses. The returned outcome is computed but NOT applied to the target, so
// the caller can hold it open for reactions.
func (a *Adapter) ResolveAttack(ctx context.Context, input *engine.ResolveAttackInput) (*engine.ResolveAttackOutput, error) {
	if input == nil || input.Attacker == nil || input.Target == nil {
		return nil, errors.InvalidArgument("attacker and target are required")
	}

	roll, err := a.diceRoller.Roll(20)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll attack")
	}

	modifier := a.CalculateAttackModifier(input.Attacker, input.WeaponProperties)
	outcome := &entities.ActionOutcome{
		ActionID:    input.ActionID,
		AttackRoll:  int32(roll),
		AttackTotal: int32(roll) + modifier,
		DamageType:  input.DamageType,
	}

	targetAC := input.Target.ArmorClass
	if targetAC == 0 {
		targetAC = DefaultArmorClass
	}

	switch {
	case roll == 20:
		outcome.Critical = true
		outcome.Hit = true
	case roll == 1:
		outcome.Hit = false
	default:
		outcome.Hit = outcome.AttackTotal >= targetAC
	}

	if outcome.Hit {
		damage, err := a.rollFormula(attackFormulaFor(input.DamageFormula, input.Attacker), outcome.Critical)
		if err != nil {
			return nil, err
		}
		outcome.Damage = damage
		outcome.Description = fmt.Sprintf("%s hits %s for %d %s damage",
			input.Attacker.Name, input.Target.Name, damage, damageTypeLabel(input.DamageType))
		if outcome.Critical {
			outcome.Description += " (critical)"
		}
	} else {
		outcome.Description = fmt.Sprintf("%s misses %s", input.Attacker.Name, input.Target.Name)
	}

	return &engine.ResolveAttackOutput{Outcome: outcome}, nil
}

// ResolveSavingThrow rolls the target's saving throw against the DC and
// computes the pending damage: full on failure, half or none on success
// depending on the effect. The returned outcome is NOT applied.
func (a *Adapter) ResolveSavingThrow(ctx context.Context, input *engine.ResolveSavingThrowInput) (*engine.ResolveSavingThrowOutput, error) {
	if input == nil || input.Target == nil {
		return nil, errors.InvalidArgument("target is required")
	}
	if input.Ability == "" {
		return nil, errors.InvalidArgument("save ability is required")
	}

	dc := input.DC
	if dc == 0 {
		dc = DefaultSaveDC
	}

	roll, err := a.diceRoller.Roll(20)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll saving throw")
	}

	modifier := a.CalculateSaveModifier(input.Target, input.Ability)
	outcome := &entities.ActionOutcome{
		ActionID:  input.ActionID,
		SaveRoll:  int32(roll),
		SaveTotal: int32(roll) + modifier,
		SaveDC:    dc,
	}
	outcome.SaveSuccess = outcome.SaveTotal >= dc

	if input.DamageFormula != "" {
		damage, err := a.rollFormula(input.DamageFormula, false)
		if err != nil {
			return nil, err
		}

		if outcome.SaveSuccess {
			if input.HalfOnSave {
				damage /= 2
				outcome.Halved = true
			} else {
				damage = 0
			}
		}

		outcome.Damage = damage
		outcome.DamageType = input.DamageType
	}

	verb := "fails"
	if outcome.SaveSuccess {
		verb = "makes"
	}
	outcome.Description = fmt.Sprintf("%s %s a DC %d %s save",
		input.Target.Name, verb, dc, input.Ability)

	return &engine.ResolveSavingThrowOutput{Outcome: outcome}, nil
}

// ResolveHeal computes restored hit points from a formula or a flat amount.
// The returned outcome is NOT applied.
func (a *Adapter) ResolveHeal(ctx context.Context, input *engine.ResolveHealInput) (*engine.ResolveHealOutput, error) {
	if input == nil || input.Target == nil {
		return nil, errors.InvalidArgument("target is required")
	}

	amount := input.Amount
	if input.Formula != "" {
		rolled, err := a.rollFormula(input.Formula, false)
		if err != nil {
			return nil, err
		}
		amount = rolled
	}
	if amount <= 0 {
		return nil, errors.InvalidArgument("heal amount must be positive")
	}

	outcome := &entities.ActionOutcome{
		ActionID:    input.ActionID,
		Healed:      amount,
		Description: fmt.Sprintf("%s regains %d hit points", input.Target.Name, amount),
	}

	return &engine.ResolveHealOutput{Outcome: outcome}, nil
}

// ApplyOutcome lands a computed outcome on its target: damage is absorbed by
// temporary hit points first, healing caps at maximum. Dropping to 0 HP
// leaves allies unconscious and everyone else dead; healing a defeated
// participant back above 0 clears the terminal condition.
func (a *Adapter) ApplyOutcome(ctx context.Context, input *engine.ApplyOutcomeInput) (*engine.ApplyOutcomeOutput, error) {
	if input == nil || input.Target == nil || input.Outcome == nil {
		return nil, errors.InvalidArgument("target and outcome are required")
	}

	out := &engine.ApplyOutcomeOutput{}
	target := input.Target
	outcome := input.Outcome

	if outcome.Negated {
		return out, nil
	}

	if outcome.Healed > 0 {
		wasDefeated := target.IsDefeated()
		out.Healed = target.ApplyHeal(outcome.Healed)
		if wasDefeated && !target.IsDefeated() {
			target.RemoveCondition(entities.ConditionUnconscious)
			target.RemoveCondition(entities.ConditionDead)
			out.Revived = true
		}
		return out, nil
	}

	if outcome.Damage > 0 {
		out.DamageDealt = target.ApplyDamage(outcome.Damage)
		if target.IsDefeated() {
			out.TargetDefeated = true
			outcome.TargetDefeated = true

			name := entities.ConditionDead
			if target.Side == entities.SideAlly {
				name = entities.ConditionUnconscious
			}
			target.AddCondition(entities.Condition{Name: name})
		}
	}

	return out, nil
}

// ApplyReaction spends the reactor's reaction and any required spell slot,
// then applies the chosen effect: defensive reactions modify the pending
// outcome in place, while opportunity attacks and ripostes roll and land
// immediately. Reaction consequences never open another reaction window.
func (a *Adapter) ApplyReaction(ctx context.Context, input *engine.ApplyReactionInput) (*engine.ApplyReactionOutput, error) {
	if input == nil || input.Reactor == nil || input.Descriptor == nil {
		return nil, errors.InvalidArgument("reactor and descriptor are required")
	}

	reactor := input.Reactor
	desc := input.Descriptor

	if reactor.ReactionsRemaining <= 0 {
		return nil, errors.FailedPreconditionf("participant %s has no reaction remaining this round", reactor.ID)
	}

	var slotLevel int32
	if desc.MinSlotLevel > 0 {
		slotLevel = reactor.LowestUnusedSlot(desc.MinSlotLevel)
		if slotLevel == 0 {
			return nil, errors.ResourceExhaustedf("participant %s has no unused spell slot of level %d or higher", reactor.ID, desc.MinSlotLevel)
		}
	}

	// The reaction and any slot are spent up front: a whiffed opportunity
	// attack still costs the reaction.
	reactor.ReactionsRemaining--

	out := &engine.ApplyReactionOutput{Outcome: input.Outcome}

	if slotLevel > 0 {
		if !reactor.ConsumeSlot(slotLevel) {
			return nil, errors.Internalf("slot level %d vanished while consuming for %s", slotLevel, reactor.ID)
		}
		out.SlotConsumed = slotLevel
	}

	switch desc.Kind {
	case reactions.EffectHalveDamage:
		if input.Outcome == nil {
			return nil, errors.Internal("no pending outcome to halve")
		}
		input.Outcome.Damage /= 2
		input.Outcome.Halved = true

	case reactions.EffectReduceDamage:
		if input.Outcome == nil {
			return nil, errors.Internal("no pending outcome to reduce")
		}
		reduction, err := a.rollFormula(desc.DamageFormula, false)
		if err != nil {
			return nil, err
		}
		reduction += a.CalculateAbilityModifier(reactor.AbilityScores.Dexterity)
		if reduction < 0 {
			reduction = 0
		}
		if reduction > input.Outcome.Damage {
			reduction = input.Outcome.Damage
		}
		input.Outcome.Damage -= reduction
		input.Outcome.Reduced = reduction

	case reactions.EffectNegateSpell:
		if input.Outcome != nil {
			input.Outcome.Negated = true
			input.Outcome.Damage = 0
		}

	case reactions.EffectACBonus:
		if input.Outcome == nil || input.Target == nil {
			return nil, errors.Internal("no pending attack to recheck")
		}
		input.Outcome.ACBonus += desc.ACBonus
		// A natural 20 hits regardless of armor class.
		if !input.Outcome.Critical {
			targetAC := input.Target.ArmorClass
			if targetAC == 0 {
				targetAC = DefaultArmorClass
			}
			if input.Outcome.AttackTotal < targetAC+input.Outcome.ACBonus {
				input.Outcome.Hit = false
				input.Outcome.Damage = 0
			}
		}

	case reactions.EffectAttack:
		if input.Actor == nil {
			return nil, errors.Internal("no triggering participant to attack")
		}
		res, err := a.ResolveAttack(ctx, &engine.ResolveAttackInput{
			ActionID:   input.ReactionActionID,
			Attacker:   reactor,
			Target:     input.Actor,
			DamageType: entities.DamageSlashing,
		})
		if err != nil {
			return nil, err
		}
		if _, err := a.ApplyOutcome(ctx, &engine.ApplyOutcomeInput{Target: input.Actor, Outcome: res.Outcome}); err != nil {
			return nil, err
		}
		out.ReactionOutcome = res.Outcome
		if res.Outcome.TargetDefeated {
			out.MovementCanceled = true
		}

	case reactions.EffectRiposte:
		if input.Actor == nil {
			return nil, errors.Internal("no triggering participant to strike back at")
		}
		dc := 8 + a.CalculateProficiencyBonus(reactor.Level) + a.CalculateAbilityModifier(reactor.AbilityScores.Charisma)
		res, err := a.ResolveSavingThrow(ctx, &engine.ResolveSavingThrowInput{
			ActionID:      input.ReactionActionID,
			Target:        input.Actor,
			Ability:       desc.SaveAbility,
			DC:            dc,
			DamageFormula: desc.DamageFormula,
			DamageType:    desc.DamageType,
			HalfOnSave:    desc.HalfOnSave,
		})
		if err != nil {
			return nil, err
		}
		if _, err := a.ApplyOutcome(ctx, &engine.ApplyOutcomeInput{Target: input.Actor, Outcome: res.Outcome}); err != nil {
			return nil, err
		}
		out.ReactionOutcome = res.Outcome

	default:
		return nil, errors.Internalf("unrecognized reaction effect kind: %s", desc.Kind)
	}

	return out, nil
}

func damageTypeLabel(dt entities.DamageType) string {
	if dt == "" {
		return "untyped"
	}
	return string(dt)
}
