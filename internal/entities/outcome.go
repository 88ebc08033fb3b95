package entities

// ActionOutcome records the resolved consequences of a single combat action.
// For an action suspended in a reaction window it holds the computed result
// BEFORE it is applied, so a chosen reaction can modify or negate it and the
// state machine can replay finalization after the window closes.
type ActionOutcome struct {
	ActionID string

	// Attack resolution. AttackRoll is the natural d20; AttackTotal adds
	// the attack modifier. Critical doubles damage dice and always hits.
	AttackRoll  int32
	AttackTotal int32
	Critical    bool
	Hit         bool

	// Damage is the pending or applied damage after any halving or
	// reduction. The temp HP split happens inside the participant when
	// it lands.
	Damage     int32
	DamageType DamageType

	// Saving throw resolution, when the action called for one.
	SaveRoll    int32
	SaveTotal   int32
	SaveDC      int32
	SaveSuccess bool

	// Reaction adjustments applied between computation and finalization.
	Halved         bool
	Reduced        int32
	Negated        bool
	ACBonus        int32
	TargetDefeated bool

	Healed int32

	// MovementCost is the step cost paid for move/dash actions, in feet.
	MovementCost int32

	Description string
}

// Clone returns a copy of the outcome.
func (o *ActionOutcome) Clone() *ActionOutcome {
	if o == nil {
		return nil
	}
	out := *o
	return &out
}
