package entities

// ConditionName identifies a status effect
type ConditionName string

const (
	// ConditionStunned prevents actions, reactions, and movement
	ConditionStunned ConditionName = "stunned"
	// ConditionParalyzed prevents all voluntary activity
	ConditionParalyzed ConditionName = "paralyzed"
	// ConditionUnconscious is the 0-HP state for player-aligned participants
	ConditionUnconscious ConditionName = "unconscious"
	// ConditionPetrified turns the participant to stone
	ConditionPetrified ConditionName = "petrified"
	// ConditionIncapacitated prevents actions and reactions
	ConditionIncapacitated ConditionName = "incapacitated"
	// ConditionDead is the terminal 0-HP state for non-player participants
	ConditionDead ConditionName = "dead"
	// ConditionProne grants melee advantage against the bearer
	ConditionProne ConditionName = "prone"
	// ConditionPoisoned imposes disadvantage on attacks and checks
	ConditionPoisoned ConditionName = "poisoned"
	// ConditionRestrained holds the bearer in place
	ConditionRestrained ConditionName = "restrained"
	// ConditionFrightened prevents approaching the fear source
	ConditionFrightened ConditionName = "frightened"
)

// DurationIndefinite marks a condition with no scheduled expiry.
const DurationIndefinite int32 = -1

// Condition represents an active status effect on a participant
type Condition struct {
	Name ConditionName
	// Rounds remaining before the condition expires. Zero or
	// DurationIndefinite means it persists until removed explicitly.
	Rounds      int32
	Description string
}

// incapacitatingConditions disqualify the bearer from taking reactions,
// including opportunity attacks.
var incapacitatingConditions = map[ConditionName]bool{
	ConditionStunned:       true,
	ConditionParalyzed:     true,
	ConditionUnconscious:   true,
	ConditionPetrified:     true,
	ConditionIncapacitated: true,
	ConditionDead:          true,
}

// HasCondition checks whether the named condition is active
func (p *Participant) HasCondition(name ConditionName) bool {
	for _, c := range p.Conditions {
		if c.Name == name {
			return true
		}
	}
	return false
}

// AddCondition applies a condition. Re-applying an active condition
// refreshes its duration rather than stacking it.
func (p *Participant) AddCondition(cond Condition) {
	for i := range p.Conditions {
		if p.Conditions[i].Name == cond.Name {
			p.Conditions[i] = cond
			return
		}
	}
	p.Conditions = append(p.Conditions, cond)
}

// RemoveCondition clears the named condition if active
func (p *Participant) RemoveCondition(name ConditionName) {
	for i := range p.Conditions {
		if p.Conditions[i].Name == name {
			p.Conditions = append(p.Conditions[:i], p.Conditions[i+1:]...)
			return
		}
	}
}

// IsIncapacitated reports whether any active condition disqualifies the
// participant from acting or reacting.
func (p *Participant) IsIncapacitated() bool {
	for _, c := range p.Conditions {
		if incapacitatingConditions[c.Name] {
			return true
		}
	}
	return false
}

// TickConditions decrements timed condition durations by one round and
// removes the ones that expire. Conditions without a scheduled expiry are
// untouched.
func (p *Participant) TickConditions() {
	remaining := p.Conditions[:0]
	for _, c := range p.Conditions {
		if c.Rounds <= 0 {
			remaining = append(remaining, c)
			continue
		}
		c.Rounds--
		if c.Rounds > 0 {
			remaining = append(remaining, c)
		}
	}
	p.Conditions = remaining
}
