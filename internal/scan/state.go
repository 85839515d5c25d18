package scan

// State is the owned, transient input of one submission. Transitions return a new
// value and never mutate the receiver.
type State struct {
	MemberIdentifier string
	ItemIdentifier   string
	InProgress       bool
}

func (s State) WithMember(member string) State {
	s.MemberIdentifier = member
	return s
}

func (s State) WithItem(item string) State {
	s.ItemIdentifier = item
	return s
}

func (s State) Begin() State {
	s.InProgress = true
	return s
}

// Finish ends a submission. The member is kept when keepMember is set so that
// several items can follow one member scan.
func (s State) Finish(keepMember bool) State {
	s.InProgress = false
	s.ItemIdentifier = ""
	if !keepMember {
		s.MemberIdentifier = ""
	}
	return s
}

// Ready reports whether both identifiers are present and nothing is in flight.
func (s State) Ready() bool {
	return !s.InProgress && len(s.MemberIdentifier) != 0 && len(s.ItemIdentifier) != 0
}
