// Package entities defines the combat data model: participants, conditions,
// encounters, actions, and reaction opportunities.
package entities

// Side indicates which team a participant fights for.
type Side string

const (
	// SideAlly is a player-aligned combatant
	SideAlly Side = "ally"
	// SideEnemy is a hostile combatant
	SideEnemy Side = "enemy"
	// SideNeutral is a combatant aligned with neither team
	SideNeutral Side = "neutral"
)

// Ability identifies one of the six core ability scores.
type Ability string

const (
	// AbilityStrength is the strength ability
	AbilityStrength Ability = "strength"
	// AbilityDexterity is the dexterity ability
	AbilityDexterity Ability = "dexterity"
	// AbilityConstitution is the constitution ability
	AbilityConstitution Ability = "constitution"
	// AbilityIntelligence is the intelligence ability
	AbilityIntelligence Ability = "intelligence"
	// AbilityWisdom is the wisdom ability
	AbilityWisdom Ability = "wisdom"
	// AbilityCharisma is the charisma ability
	AbilityCharisma Ability = "charisma"
)

// PositionZone is the coarse position band a participant occupies.
// The engine models position as one of four ordered zones rather than
// grid coordinates; reach and provocation are ordinal comparisons.
type PositionZone string

const (
	// ZoneMelee is directly engaged with the enemy front line
	ZoneMelee PositionZone = "melee"
	// ZoneAdjacent is within reach but not engaged
	ZoneAdjacent PositionZone = "adjacent"
	// ZoneRanged is outside reach but within ranged attack distance
	ZoneRanged PositionZone = "ranged"
	// ZoneDistant is beyond normal engagement distance
	ZoneDistant PositionZone = "distant"
)

// Feature identifiers granted to participants. Activation rules live in
// the feature registry, not here.
const (
	// FeatureUncannyDodge halves damage from a visible attacker
	FeatureUncannyDodge = "uncanny_dodge"
	// FeaturePolearmMaster provokes when a creature enters the holder's reach
	FeaturePolearmMaster = "polearm_master"
	// FeatureDeflectMissiles reduces ranged weapon attack damage
	FeatureDeflectMissiles = "deflect_missiles"
	// FeatureMobile prevents opportunity attacks when leaving reach
	FeatureMobile = "mobile"
)

// Fighting style identifiers.
const (
	// FightingStyleProtection imposes a defensive reaction for nearby allies
	FightingStyleProtection = "protection"
	// FightingStyleDefense grants a passive AC bonus while armored
	FightingStyleDefense = "defense"
	// FightingStyleDueling grants bonus damage with a single one-handed weapon
	FightingStyleDueling = "dueling"
)

// Spell identifiers referenced by reaction eligibility rules.
const (
	// SpellShield is the reaction spell granting +5 AC until next turn
	SpellShield = "shield"
	// SpellAbsorbElements is the reaction spell absorbing elemental damage
	SpellAbsorbElements = "absorb_elements"
	// SpellHellishRebuke is the reaction spell burning an attacker
	SpellHellishRebuke = "hellish_rebuke"
	// SpellCounterspell is the reaction spell negating another cast
	SpellCounterspell = "counterspell"
)

// AbilityScores holds the six core ability scores
type AbilityScores struct {
	Strength     int32
	Dexterity    int32
	Constitution int32
	Intelligence int32
	Wisdom       int32
	Charisma     int32
}

// Score returns the raw score for the named ability, or 10 when unknown.
func (a AbilityScores) Score(ability Ability) int32 {
	switch ability {
	case AbilityStrength:
		return a.Strength
	case AbilityDexterity:
		return a.Dexterity
	case AbilityConstitution:
		return a.Constitution
	case AbilityIntelligence:
		return a.Intelligence
	case AbilityWisdom:
		return a.Wisdom
	case AbilityCharisma:
		return a.Charisma
	default:
		return 10
	}
}

// Speed holds movement rates in feet per round. A zero value means the
// participant lacks that movement mode.
type Speed struct {
	Walk  int32
	Fly   int32
	Swim  int32
	Climb int32
}

// SpellSlot tracks a consumable per-level casting resource
type SpellSlot struct {
	Current int32
	Max     int32
}

// Participant represents one combatant in an encounter
// NOTE: This is a data-only struct. All calculations (modifiers, attack
// resolution, trigger eligibility) are done by the engine and rules
// packages, not here. The only methods below are invariant-preserving
// resource mutations and lookups.
type Participant struct {
	ID            string
	Name          string
	Side          Side
	Level         int32
	AbilityScores AbilityScores

	CurrentHP  int32
	MaxHP      int32
	TempHP     int32
	ArmorClass int32
	Speed      Speed
	Initiative int32

	// AttackFormula is the dice notation for this participant's standard
	// weapon damage ("1d8+3"). Reaction attacks fall back to 1d8 when it
	// is empty; submitted actions carry their own formula.
	AttackFormula string

	Conditions     []Condition
	Features       []string
	FightingStyles []string

	SpellSlots     map[int32]*SpellSlot
	PreparedSpells []string

	SkillProficiencies []string
	SaveProficiencies  []Ability

	// Per-turn resources, reset by the encounter state machine when this
	// participant's own turn begins.
	ReactionsRemaining int32
	BonusActionUsed    bool
	DisengageActive    bool

	Position PositionZone
}

// HasFeature checks whether the participant has the named feature
func (p *Participant) HasFeature(featureID string) bool {
	for _, f := range p.Features {
		if f == featureID {
			return true
		}
	}
	return false
}

// HasFightingStyle checks whether the participant has the named fighting style
func (p *Participant) HasFightingStyle(style string) bool {
	for _, s := range p.FightingStyles {
		if s == style {
			return true
		}
	}
	return false
}

// HasPreparedSpell checks whether the named spell is prepared or known
func (p *Participant) HasPreparedSpell(spellID string) bool {
	for _, s := range p.PreparedSpells {
		if s == spellID {
			return true
		}
	}
	return false
}

// HasUnusedSlot reports whether any spell slot of at least minLevel has a
// casting remaining.
func (p *Participant) HasUnusedSlot(minLevel int32) bool {
	for level, slot := range p.SpellSlots {
		if level >= minLevel && slot != nil && slot.Current > 0 {
			return true
		}
	}
	return false
}

// LowestUnusedSlot returns the lowest slot level >= minLevel with a casting
// remaining, or 0 when none exists.
func (p *Participant) LowestUnusedSlot(minLevel int32) int32 {
	var best int32
	for level, slot := range p.SpellSlots {
		if level < minLevel || slot == nil || slot.Current == 0 {
			continue
		}
		if best == 0 || level < best {
			best = level
		}
	}
	return best
}

// ConsumeSlot spends one casting of the given slot level. Returns false if
// no casting remains at that level.
func (p *Participant) ConsumeSlot(level int32) bool {
	slot, ok := p.SpellSlots[level]
	if !ok || slot == nil || slot.Current == 0 {
		return false
	}
	slot.Current--
	return true
}

// ApplyDamage subtracts damage from temporary HP first, then current HP,
// flooring at 0. Returns the total damage actually dealt.
func (p *Participant) ApplyDamage(amount int32) int32 {
	if amount <= 0 {
		return 0
	}
	dealt := int32(0)

	if p.TempHP > 0 {
		absorbed := amount
		if absorbed > p.TempHP {
			absorbed = p.TempHP
		}
		p.TempHP -= absorbed
		amount -= absorbed
		dealt += absorbed
	}

	if amount > 0 {
		taken := amount
		if taken > p.CurrentHP {
			taken = p.CurrentHP
		}
		p.CurrentHP -= taken
		dealt += taken
	}

	return dealt
}

// ApplyHeal restores current HP capped at MaxHP. Returns the amount
// actually healed.
func (p *Participant) ApplyHeal(amount int32) int32 {
	if amount <= 0 {
		return 0
	}
	healed := amount
	if p.CurrentHP+healed > p.MaxHP {
		healed = p.MaxHP - p.CurrentHP
	}
	p.CurrentHP += healed
	return healed
}

// AddTemporaryHP grants temporary hit points. Temporary HP does not stack;
// the higher of the existing and new pools is kept.
func (p *Participant) AddTemporaryHP(amount int32) {
	if amount > p.TempHP {
		p.TempHP = amount
	}
}

// IsDefeated reports whether the participant is at 0 HP and out of the
// turn rotation.
func (p *Participant) IsDefeated() bool {
	return p.CurrentHP <= 0
}

// IsFlying reports whether the participant moves by flight.
func (p *Participant) IsFlying() bool {
	return p.Speed.Fly > 0
}

// Clone returns a deep copy. Repositories and the orchestrator hand out
// copies so callers can never mutate shared state.
func (p *Participant) Clone() *Participant {
	if p == nil {
		return nil
	}
	out := *p

	out.Conditions = append([]Condition(nil), p.Conditions...)
	out.Features = append([]string(nil), p.Features...)
	out.FightingStyles = append([]string(nil), p.FightingStyles...)
	out.PreparedSpells = append([]string(nil), p.PreparedSpells...)
	out.SkillProficiencies = append([]string(nil), p.SkillProficiencies...)
	out.SaveProficiencies = append([]Ability(nil), p.SaveProficiencies...)

	if p.SpellSlots != nil {
		out.SpellSlots = make(map[int32]*SpellSlot, len(p.SpellSlots))
		for level, slot := range p.SpellSlots {
			if slot == nil {
				out.SpellSlots[level] = nil
				continue
			}
			copied := *slot
			out.SpellSlots[level] = &copied
		}
	}

	return &out
}
