package engine

import "fmt"

type Problem string

const (
	ProblemNoGame              Problem = "no_game"
	ProblemIncompleteSelection Problem = "incomplete_selection"
	ProblemNoCanonicalSet      Problem = "no_canonical_set"
	ProblemRoleConflict        Problem = "role_conflict"
)

// Readiness says whether a lobby can start and, if not, why.
type Readiness struct {
	Required int       `json:"required"`
	Selected int       `json:"selected"`
	Deficit  int       `json:"deficit,omitempty"`
	Excess   int       `json:"excess,omitempty"`
	Conflict *Conflict `json:"conflict,omitempty"`
	Problems []Problem `json:"problems,omitempty"`
}

func (r Readiness) Ready() bool { return len(r.Problems) == 0 }

// Hint is the short selection counter text shown next to the roster.
func (r Readiness) Hint() string {
	switch {
	case r.Deficit > 0:
		return fmt.Sprintf("%d more", r.Deficit)
	case r.Excess > 0:
		return fmt.Sprintf("Exceed %d", r.Excess)
	default:
		return "Correct"
	}
}

// Check validates s from scratch. Nothing cached on the state is trusted.
func Check(s State) Readiness {
	r := Readiness{Required: RequiredSelection(s), Selected: s.Selection.Len()}
	if r.Selected < r.Required {
		r.Deficit = r.Required - r.Selected
	} else {
		r.Excess = r.Selected - r.Required
	}
	if s.Game == GameNone {
		r.Problems = append(r.Problems, ProblemNoGame)
		return r
	}
	if r.Deficit > 0 || r.Excess > 0 {
		r.Problems = append(r.Problems, ProblemIncompleteSelection)
	}
	canon := Canonical(s)
	if len(canon) == 0 {
		r.Problems = append(r.Problems, ProblemNoCanonicalSet)
		return r
	}
	if s.Mode == ModeObserve {
		if c := CheckConflict(s.Roles, canon); !c.None() {
			r.Conflict = &c
			r.Problems = append(r.Problems, ProblemRoleConflict)
		}
	}
	return r
}

// Assignment is the role/power labeling in effect: the stored assignment when
// observing, the canonical order when a human takes part.
func Assignment(s State) []string {
	if s.Mode == ModeParticipate {
		return Canonical(s)
	}
	return cloneStrings(s.Roles)
}

type Seat struct {
	Key           SeatKey `json:"key"`
	ParticipantID int     `json:"participant_id"`
	Label         string  `json:"label,omitempty"`
}

// View is the derived state the rendering layer polls after every mutation.
type View struct {
	Game         Game      `json:"game"`
	Mode         Mode      `json:"mode"`
	Settings     Settings  `json:"settings"`
	Selected     []int     `json:"selected"`
	Seats        []Seat    `json:"seats"`
	HumanIndex   int       `json:"human_index"`
	HumanPower   string    `json:"human_power,omitempty"`
	Roles        []string  `json:"roles,omitempty"`
	Canonical    []string  `json:"canonical,omitempty"`
	Readiness    Readiness `json:"readiness"`
	Hint         string    `json:"hint,omitempty"`
	CanReroll    bool      `json:"can_reroll"`
	CanEditRoles bool      `json:"can_edit_roles"`
	Defaults     bool      `json:"using_defaults"`
}

// Derive computes the view for s. It has no side effects and returns the same
// view for the same state.
func Derive(s State) View {
	keys := Seats(s)
	canon := Canonical(s)
	v := View{
		Game:      s.Game,
		Mode:      s.Mode,
		Settings:  s.Settings,
		Selected:  s.Selection.Ordered(),
		Seats:     make([]Seat, len(keys)),
		Roles:     Assignment(s),
		Canonical: canon,
		Readiness: Check(s),
		Defaults:  UsingDefaults(s),
	}
	if s.Game != GameNone {
		v.Hint = v.Readiness.Hint()
	}
	if s.Mode == ModeParticipate && s.Game != GameNone {
		v.HumanIndex = HumanIndex(s)
		if s.Game == GameDiplomacy && v.HumanIndex < len(canon) {
			v.HumanPower = canon[v.HumanIndex]
		}
	}
	editable := s.Mode == ModeObserve && len(canon) > 0
	v.CanReroll = editable
	v.CanEditRoles = editable && s.Roles != nil
	for i, k := range keys {
		seat := Seat{Key: k, ParticipantID: HumanSentinel}
		if id, ok := k.ParticipantID(); ok {
			seat.ParticipantID = id
		}
		seat.Label = seatLabel(s, i, k)
		v.Seats[i] = seat
	}
	return v
}

// seatLabel keeps a label on a seat only while the participant it was bound
// to still sits there.
func seatLabel(s State, i int, k SeatKey) string {
	if s.Mode != ModeObserve || k == EmptySeat {
		return ""
	}
	if i >= len(s.Roles) || i >= len(s.Bound) || s.Bound[i] != k {
		return ""
	}
	return s.Roles[i]
}
