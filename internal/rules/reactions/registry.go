package reactions

import (
	"github.com/KirkDiggler/encounter-api/internal/entities"
)

// EffectKind tells the resolver how a consumed reaction alters the pending
// outcome.
type EffectKind string

const (
	// EffectAttack makes a full out-of-band attack roll against the mover
	EffectAttack EffectKind = "attack"
	// EffectNegateSpell cancels the triggering spell outright
	EffectNegateSpell EffectKind = "negate_spell"
	// EffectHalveDamage halves the pending damage
	EffectHalveDamage EffectKind = "halve_damage"
	// EffectReduceDamage subtracts a rolled amount from the pending damage
	EffectReduceDamage EffectKind = "reduce_damage"
	// EffectACBonus raises the defender's effective AC against the
	// pending attack, possibly turning the hit into a miss
	EffectACBonus EffectKind = "ac_bonus"
	// EffectRiposte deals save-gated damage back to the triggering actor
	EffectRiposte EffectKind = "riposte"
)

// Descriptor defines one reaction capability: who can activate it and what
// it does when consumed. New reactions are new descriptors, not new code
// paths.
type Descriptor struct {
	// ID is the feature, spell, or fighting style that grants the
	// reaction.
	ID   string
	Name string

	// Reaction is the out-of-band action type offered to the reactor.
	Reaction entities.ActionType

	Kind EffectKind

	// ACBonus applies to EffectACBonus descriptors.
	ACBonus int32

	// DamageFormula and friends apply to EffectRiposte and
	// EffectReduceDamage descriptors.
	DamageFormula string
	DamageType    entities.DamageType
	SaveAbility   entities.Ability
	HalfOnSave    bool

	// MinSlotLevel is the lowest spell slot the reaction consumes, 0 for
	// reactions that cost no slot.
	MinSlotLevel int32

	// Eligible is the capability predicate: does this participant have
	// the resources and grants to take the reaction against this event?
	// Geometry and identity constraints live in the trigger table, not
	// here.
	Eligible func(reactor *entities.Participant, ev Event) bool
}

// FeatureRegistry maps reaction action types to their descriptors.
type FeatureRegistry struct {
	byReaction map[entities.ActionType]*Descriptor
	all        []Descriptor
}

// NewFeatureRegistry creates a registry from descriptor definitions.
func NewFeatureRegistry(descriptors []Descriptor) *FeatureRegistry {
	registry := &FeatureRegistry{
		byReaction: make(map[entities.ActionType]*Descriptor),
		all:        descriptors,
	}
	for i := range descriptors {
		registry.byReaction[descriptors[i].Reaction] = &descriptors[i]
	}
	return registry
}

// GetByReaction returns the descriptor offering the given reaction type,
// or nil if none is registered.
func (r *FeatureRegistry) GetByReaction(reaction entities.ActionType) *Descriptor {
	return r.byReaction[reaction]
}

// All returns every registered descriptor.
func (r *FeatureRegistry) All() []Descriptor {
	return r.all
}

// Count returns the number of registered reaction capabilities.
func (r *FeatureRegistry) Count() int {
	return len(r.all)
}

// DefaultFeatureRegistry builds the standard reaction set.
func DefaultFeatureRegistry() *FeatureRegistry {
	return NewFeatureRegistry([]Descriptor{
		{
			ID:       entities.FeatureUncannyDodge,
			Name:     "Uncanny Dodge",
			Reaction: entities.ReactionUncannyDodge,
			Kind:     EffectHalveDamage,
			Eligible: func(reactor *entities.Participant, _ Event) bool {
				return reactor.HasFeature(entities.FeatureUncannyDodge)
			},
		},
		{
			ID:            entities.FeatureDeflectMissiles,
			Name:          "Deflect Missiles",
			Reaction:      entities.ReactionDeflectMissiles,
			Kind:          EffectReduceDamage,
			DamageFormula: "1d10",
			Eligible: func(reactor *entities.Participant, _ Event) bool {
				return reactor.HasFeature(entities.FeatureDeflectMissiles)
			},
		},
		{
			ID:           entities.SpellCounterspell,
			Name:         "Counterspell",
			Reaction:     entities.ReactionCounterspell,
			Kind:         EffectNegateSpell,
			MinSlotLevel: 3,
			Eligible: func(reactor *entities.Participant, _ Event) bool {
				return reactor.HasUnusedSlot(3)
			},
		},
		{
			ID:           entities.SpellShield,
			Name:         "Shield",
			Reaction:     entities.ReactionShieldSpell,
			Kind:         EffectACBonus,
			ACBonus:      5,
			MinSlotLevel: 1,
			Eligible: func(reactor *entities.Participant, _ Event) bool {
				return reactor.HasPreparedSpell(entities.SpellShield) && reactor.HasUnusedSlot(1)
			},
		},
		{
			ID:           entities.SpellAbsorbElements,
			Name:         "Absorb Elements",
			Reaction:     entities.ReactionAbsorbElements,
			Kind:         EffectHalveDamage,
			MinSlotLevel: 1,
			Eligible: func(reactor *entities.Participant, ev Event) bool {
				if !entities.ElementalDamageTypes[ev.DamageType] {
					return false
				}
				return reactor.HasPreparedSpell(entities.SpellAbsorbElements) && reactor.HasUnusedSlot(1)
			},
		},
		{
			ID:            entities.SpellHellishRebuke,
			Name:          "Hellish Rebuke",
			Reaction:      entities.ReactionHellishRebuke,
			Kind:          EffectRiposte,
			DamageFormula: "2d10",
			DamageType:    entities.DamageFire,
			SaveAbility:   entities.AbilityDexterity,
			HalfOnSave:    true,
			MinSlotLevel:  1,
			Eligible: func(reactor *entities.Participant, _ Event) bool {
				return reactor.HasPreparedSpell(entities.SpellHellishRebuke) && reactor.HasUnusedSlot(1)
			},
		},
		{
			ID:       entities.FightingStyleProtection,
			Name:     "Protection",
			Reaction: entities.ReactionUseObject,
			Kind:     EffectACBonus,
			ACBonus:  2,
			Eligible: func(reactor *entities.Participant, _ Event) bool {
				return reactor.HasFightingStyle(entities.FightingStyleProtection)
			},
		},
		{
			// Opportunity attacks need no feature grant; any armed
			// combatant threatens its reach.
			ID:       "opportunity_attack",
			Name:     "Opportunity Attack",
			Reaction: entities.ReactionOpportunityAttack,
			Kind:     EffectAttack,
			Eligible: func(_ *entities.Participant, _ Event) bool {
				return true
			},
		},
	})
}
