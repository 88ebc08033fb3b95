package entities

// EncounterPhase tracks where the state machine is in the round/turn cycle
type EncounterPhase string

const (
	// PhaseSetup is before initiative is rolled
	PhaseSetup EncounterPhase = "setup"
	// PhaseRoundActive is between turns within a round
	PhaseRoundActive EncounterPhase = "round_active"
	// PhaseTurnActive is while one participant holds the turn
	PhaseTurnActive EncounterPhase = "turn_active"
	// PhaseReactionWindow is the suspension point while reaction
	// opportunities are pending against a proposed action
	PhaseReactionWindow EncounterPhase = "reaction_window"
	// PhaseEnded is terminal; no further mutation is accepted
	PhaseEnded EncounterPhase = "ended"
)

// EncounterStatus is the coarse lifecycle state
type EncounterStatus string

const (
	// StatusActive means the encounter accepts actions
	StatusActive EncounterStatus = "active"
	// StatusEnded means the encounter is over and immutable
	StatusEnded EncounterStatus = "ended"
)

// Encounter represents one combat from setup through its final round
// NOTE: This is a data-only struct. Turn progression, reaction lifecycle,
// and validity rules live in the encounter orchestrator.
type Encounter struct {
	ID           string
	Participants []*Participant

	// Round starts at 1 when the encounter starts and increases
	// monotonically, by exactly 1 per full cycle of the turn order.
	Round int32

	// TurnOrder holds participant IDs in initiative order (stable for
	// ties). Defeated participants stay listed and are skipped, so they
	// re-enter if healed before their next scheduled turn.
	TurnOrder   []string
	ActiveIndex int32

	Phase  EncounterPhase
	Status EncounterStatus

	// PendingAction is the proposed action suspended in a reaction
	// window, nil otherwise. PendingOutcome carries its computed but
	// not yet applied result so reactions can modify it.
	PendingAction        *CombatAction
	PendingOutcome       *ActionOutcome
	PendingOpportunities []*ReactionOpportunity

	// ActionLog is the causal history of resolved actions this encounter.
	ActionLog []*CombatAction

	CreatedAt int64
	UpdatedAt int64
}

// FindParticipant returns the participant with the given ID, or nil.
func (e *Encounter) FindParticipant(id string) *Participant {
	for _, p := range e.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActiveParticipantID returns the ID of the participant whose turn it is,
// or empty before the encounter starts.
func (e *Encounter) ActiveParticipantID() string {
	if len(e.TurnOrder) == 0 || e.ActiveIndex < 0 || int(e.ActiveIndex) >= len(e.TurnOrder) {
		return ""
	}
	return e.TurnOrder[e.ActiveIndex]
}

// ActiveParticipant returns the participant whose turn it is, or nil.
func (e *Encounter) ActiveParticipant() *Participant {
	return e.FindParticipant(e.ActiveParticipantID())
}

// FindOpportunity returns the pending reaction opportunity with the given
// ID, or nil.
func (e *Encounter) FindOpportunity(id string) *ReactionOpportunity {
	for _, o := range e.PendingOpportunities {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// RemoveOpportunity deletes the pending opportunity with the given ID.
// Returns false if it was not pending.
func (e *Encounter) RemoveOpportunity(id string) bool {
	for i, o := range e.PendingOpportunities {
		if o.ID == id {
			e.PendingOpportunities = append(e.PendingOpportunities[:i], e.PendingOpportunities[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the encounter graph.
func (e *Encounter) Clone() *Encounter {
	if e == nil {
		return nil
	}
	out := *e

	if e.Participants != nil {
		out.Participants = make([]*Participant, len(e.Participants))
		for i, p := range e.Participants {
			out.Participants[i] = p.Clone()
		}
	}

	out.TurnOrder = append([]string(nil), e.TurnOrder...)
	out.PendingAction = e.PendingAction.Clone()
	out.PendingOutcome = e.PendingOutcome.Clone()

	if e.PendingOpportunities != nil {
		out.PendingOpportunities = make([]*ReactionOpportunity, len(e.PendingOpportunities))
		for i, o := range e.PendingOpportunities {
			out.PendingOpportunities[i] = o.Clone()
		}
	}

	if e.ActionLog != nil {
		out.ActionLog = make([]*CombatAction, len(e.ActionLog))
		for i, a := range e.ActionLog {
			out.ActionLog[i] = a.Clone()
		}
	}

	return &out
}
