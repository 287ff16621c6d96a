package patient

// transitions is the only place status moves are defined. Discharged is
// terminal.
var transitions = map[Status][]Status{
	StatusWaiting:    {StatusSeen, StatusAdmitted},
	StatusSeen:       {StatusAdmitted, StatusDischarged},
	StatusAdmitted:   {StatusDischarged},
	StatusDischarged: nil,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the move s -> next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further moves are possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// MoveTo applies a status move, rejecting anything outside the table.
func (p *Patient) MoveTo(next Status) error {
	if !p.Status.CanTransitionTo(next) {
		return &TransitionError{PatientID: p.ID, From: p.Status, To: next}
	}
	p.Status = next
	return nil
}
