package entities

// ActionType identifies what a CombatAction does
type ActionType string

// Turn actions submitted by the active participant.
const (
	// ActionAttack is a weapon attack against a target
	ActionAttack ActionType = "attack"
	// ActionCastSpell casts a spell, possibly save-gated
	ActionCastSpell ActionType = "cast_spell"
	// ActionMove changes the actor's position zone
	ActionMove ActionType = "move"
	// ActionDash grants an extra zone step this turn
	ActionDash ActionType = "dash"
	// ActionDisengage suppresses opportunity attacks for the rest of the turn
	ActionDisengage ActionType = "disengage"
	// ActionDodge records a defensive stance until the next turn
	ActionDodge ActionType = "dodge"
	// ActionHelp assists another participant
	ActionHelp ActionType = "help"
	// ActionHeal restores hit points to a target
	ActionHeal ActionType = "heal"
	// ActionDamageDealt records raw damage applied outside an attack roll
	ActionDamageDealt ActionType = "damage_dealt"
)

// Reaction actions created by consuming a ReactionOpportunity. These carry
// TurnOrder = 0 to mark them as out-of-band.
const (
	// ReactionOpportunityAttack is a melee attack against a provoking mover
	ReactionOpportunityAttack ActionType = "opportunity_attack"
	// ReactionCounterspell negates a spell being cast
	ReactionCounterspell ActionType = "counterspell"
	// ReactionUncannyDodge halves incoming damage from a visible attacker
	ReactionUncannyDodge ActionType = "uncanny_dodge"
	// ReactionDeflectMissiles reduces ranged weapon attack damage
	ReactionDeflectMissiles ActionType = "deflect_missiles"
	// ReactionShieldSpell casts shield for +5 AC until the reactor's next turn
	ReactionShieldSpell ActionType = "shield_spell"
	// ReactionAbsorbElements absorbs matching elemental damage
	ReactionAbsorbElements ActionType = "absorb_elements"
	// ReactionHellishRebuke burns an attacker with a rebuking flame
	ReactionHellishRebuke ActionType = "hellish_rebuke"
	// ReactionUseObject interposes protection, granting +2 AC to an ally
	ReactionUseObject ActionType = "use_object"
)

// DamageType identifies the flavor of damage an attack or effect deals
type DamageType string

const (
	// DamageSlashing is slashing weapon damage
	DamageSlashing DamageType = "slashing"
	// DamagePiercing is piercing weapon damage
	DamagePiercing DamageType = "piercing"
	// DamageBludgeoning is bludgeoning weapon damage
	DamageBludgeoning DamageType = "bludgeoning"
	// DamageFire is fire damage
	DamageFire DamageType = "fire"
	// DamageCold is cold damage
	DamageCold DamageType = "cold"
	// DamageLightning is lightning damage
	DamageLightning DamageType = "lightning"
	// DamageAcid is acid damage
	DamageAcid DamageType = "acid"
	// DamageThunder is thunder damage
	DamageThunder DamageType = "thunder"
	// DamagePoison is poison damage
	DamagePoison DamageType = "poison"
	// DamageNecrotic is necrotic damage
	DamageNecrotic DamageType = "necrotic"
	// DamageRadiant is radiant damage
	DamageRadiant DamageType = "radiant"
	// DamageForce is force damage
	DamageForce DamageType = "force"
	// DamagePsychic is psychic damage
	DamagePsychic DamageType = "psychic"
)

// ElementalDamageTypes are the damage types an absorb_elements reaction can
// soak.
var ElementalDamageTypes = map[DamageType]bool{
	DamageFire:      true,
	DamageCold:      true,
	DamageLightning: true,
	DamageAcid:      true,
	DamageThunder:   true,
}

// Weapon property constants used by attack modifier selection.
const (
	// WeaponPropertyFinesse lets the attacker use the better of STR or DEX
	WeaponPropertyFinesse = "finesse"
	// WeaponPropertyRanged forces DEX-based attacks
	WeaponPropertyRanged = "ranged"
	// WeaponPropertyReach extends melee reach
	WeaponPropertyReach = "reach"
	// WeaponPropertyLight permits two-weapon fighting
	WeaponPropertyLight = "light"
)

// Movement records the zone transition of a move action
type Movement struct {
	From PositionZone
	To   PositionZone
}

// TerrainType scales movement cost
type TerrainType string

const (
	// TerrainClear costs base movement
	TerrainClear TerrainType = "clear"
	// TerrainRough costs 1.5x movement
	TerrainRough TerrainType = "rough"
	// TerrainDifficult costs 2x movement
	TerrainDifficult TerrainType = "difficult"
)

// CombatAction represents one proposed or resolved action
// NOTE: This is a data-only struct; the engine resolves it. Created when
// proposed, consumed immediately by the resolver. Reaction-derived actions
// are created by the trigger engine and carry TurnOrder = 0.
type CombatAction struct {
	ID       string
	ActorID  string
	TargetID string
	Type     ActionType

	Round     int32
	TurnOrder int32

	// Attack / spell fields
	Hit              bool
	DamageType       DamageType
	DamageFormula    string // dice notation, e.g. "1d8+3"
	SpellID          string
	SpellLevel       int32
	SaveAbility      Ability
	SaveDC           int32
	HalfOnSave       bool
	WeaponProperties []string

	// Movement fields
	Movement *Movement
	Terrain  TerrainType
}

// IsReaction reports whether this action type is reaction-derived.
func (a *CombatAction) IsReaction() bool {
	switch a.Type {
	case ReactionOpportunityAttack, ReactionCounterspell, ReactionUncannyDodge,
		ReactionDeflectMissiles, ReactionShieldSpell, ReactionAbsorbElements,
		ReactionHellishRebuke, ReactionUseObject:
		return true
	default:
		return false
	}
}

// Clone returns a deep copy of the action.
func (a *CombatAction) Clone() *CombatAction {
	if a == nil {
		return nil
	}
	out := *a
	out.WeaponProperties = append([]string(nil), a.WeaponProperties...)
	if a.Movement != nil {
		m := *a.Movement
		out.Movement = &m
	}
	return &out
}

// ReactionTrigger identifies the game event that made a reaction available
type ReactionTrigger string

const (
	// TriggerCreatureLeavesReach fires when a mover exits the engaged band
	TriggerCreatureLeavesReach ReactionTrigger = "creature_leaves_reach"
	// TriggerCreatureEntersReach fires when a mover enters a polearm wielder's reach
	TriggerCreatureEntersReach ReactionTrigger = "creature_enters_reach"
	// TriggerSpellCastInRange fires when a spell is cast near the reactor
	TriggerSpellCastInRange ReactionTrigger = "spell_cast_in_range"
	// TriggerRangedAttackHits fires when a ranged weapon attack hits the reactor
	TriggerRangedAttackHits ReactionTrigger = "ranged_attack_hits"
	// TriggerDamageTaken fires when the reactor takes damage
	TriggerDamageTaken ReactionTrigger = "damage_taken"
	// TriggerAllyAttackedNearby fires when a nearby ally is attacked
	TriggerAllyAttackedNearby ReactionTrigger = "ally_attacked_nearby"
)

// ReactionOpportunity represents a pending out-of-turn response offer
// Created by the trigger engine during action resolution; destroyed either
// by consumption (converted into a CombatAction) or by expiry when the
// triggering participant's turn ends, whichever comes first.
type ReactionOpportunity struct {
	ID            string
	ParticipantID string
	Trigger       ReactionTrigger
	Description   string
	Offered       []ActionType
	TriggeredBy   string
	Round         int32
	// ExpiresAtEndOfTurn binds the opportunity's lifetime to the end of
	// the triggering participant's turn.
	ExpiresAtEndOfTurn bool
}

// Offers reports whether the opportunity offers the given reaction type.
func (r *ReactionOpportunity) Offers(reaction ActionType) bool {
	for _, o := range r.Offered {
		if o == reaction {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the opportunity.
func (r *ReactionOpportunity) Clone() *ReactionOpportunity {
	if r == nil {
		return nil
	}
	out := *r
	out.Offered = append([]ActionType(nil), r.Offered...)
	return &out
}
