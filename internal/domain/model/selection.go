package model

// SelectionState classifies how much of a Selection is filled in.
type SelectionState int

const (
	// SelectionEmpty means nothing is selected.
	SelectionEmpty SelectionState = iota
	// SelectionPartial means an institution (and maybe a program) without a track.
	SelectionPartial
	// SelectionFull means a track and both of its ancestors are selected.
	SelectionFull
)

// String implements fmt.Stringer.
func (s SelectionState) String() string {
	switch s {
	case SelectionPartial:
		return "partial"
	case SelectionFull:
		return "full"
	default:
		return "empty"
	}
}

// Selection is the current institution/program/track triple. Empty strings mean "none".
type Selection struct {
	InstitutionID string `json:"institutionId"`
	ProgramID     string `json:"programId"`
	TrackID       string `json:"trackId"`
}

// State reports whether the selection is empty, partial or full.
func (s Selection) State() SelectionState {
	switch {
	case s.TrackID != "":
		return SelectionFull
	case s.InstitutionID != "" || s.ProgramID != "":
		return SelectionPartial
	default:
		return SelectionEmpty
	}
}

// IsZero reports whether nothing is selected.
func (s Selection) IsZero() bool { return s == Selection{} }
