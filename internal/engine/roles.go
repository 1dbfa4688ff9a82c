package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

const (
	RoleMerlin   = "Merlin"
	RolePercival = "Percival"
	RoleServant  = "Servant"
	RoleMinion   = "Minion"
	RoleAssassin = "Assassin"
)

// avalonTeams is the good/evil split per table size.
var avalonTeams = map[int][2]int{
	5:  {3, 2},
	6:  {4, 2},
	7:  {4, 3},
	8:  {5, 3},
	9:  {6, 3},
	10: {6, 4},
}

// AvalonRoles returns the built-in role multiset for n players, or nil when n
// is not a legal table size.
func AvalonRoles(n int) []string {
	split, ok := avalonTeams[n]
	if !ok {
		return nil
	}
	good, evil := split[0], split[1]
	roles := make([]string, 0, n)
	roles = append(roles, RoleMerlin)
	for range good - 1 {
		roles = append(roles, RoleServant)
	}
	for range evil - 1 {
		roles = append(roles, RoleMinion)
	}
	return append(roles, RoleAssassin)
}

var avalonRoleIDs = map[string]int{
	RoleMerlin:   0,
	RolePercival: 1,
	RoleServant:  2,
	RoleMinion:   3,
	RoleAssassin: 4,
}

// AvalonRoleID follows the game server's numbering; unknown roles map to 0.
func AvalonRoleID(role string) int { return avalonRoleIDs[role] }

func IsGoodRole(role string) bool {
	switch role {
	case RoleMerlin, RolePercival, RoleServant:
		return true
	}
	return false
}

// Canonical returns the label multiset every valid assignment must be a
// permutation of. It is empty when the active game has none available.
func Canonical(s State) []string {
	opts := s.Options[s.Game]
	switch s.Game {
	case GameAvalon:
		n := SeatCount(s)
		if len(opts.Roles) == n {
			return cloneStrings(opts.Roles)
		}
		return AvalonRoles(n)
	case GameDiplomacy:
		// No built-in powers exist; without options the assignment stays empty.
		if len(opts.Powers) == DiplomacySeats {
			return cloneStrings(opts.Powers)
		}
	}
	return nil
}

// Shuffle returns a shuffled copy of labels (Fisher–Yates). intn must return a
// uniform value in [0, n).
func Shuffle(labels []string, intn func(n int) int) []string {
	out := cloneStrings(labels)
	for i := len(out) - 1; i > 0; i-- {
		j := intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// shuffleRoles is swapped out in tests that need a fixed order.
var shuffleRoles = func(labels []string) []string {
	return Shuffle(labels, rand.IntN)
}

// Conflict describes how an assignment differs from the canonical multiset.
type Conflict struct {
	// Duplicates maps a label to its count when that count exceeds the
	// canonical multiplicity.
	Duplicates map[string]int `json:"duplicates,omitempty"`
	Missing    []string       `json:"missing,omitempty"`
	Unknown    []string       `json:"unknown,omitempty"`
	Blank      int            `json:"blank,omitempty"`
}

func (c Conflict) None() bool {
	return len(c.Duplicates) == 0 && len(c.Missing) == 0 && len(c.Unknown) == 0 && c.Blank == 0
}

func (c Conflict) String() string {
	if c.None() {
		return "no conflict"
	}
	var parts []string
	dups := make([]string, 0, len(c.Duplicates))
	for l := range c.Duplicates {
		dups = append(dups, l)
	}
	slices.Sort(dups)
	for _, l := range dups {
		parts = append(parts, fmt.Sprintf("duplicate %s x%d", l, c.Duplicates[l]))
	}
	if len(c.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(c.Missing, ", "))
	}
	if len(c.Unknown) > 0 {
		parts = append(parts, "unknown "+strings.Join(c.Unknown, ", "))
	}
	if c.Blank > 0 {
		parts = append(parts, fmt.Sprintf("%d unassigned", c.Blank))
	}
	return strings.Join(parts, "; ")
}

// CheckConflict compares an assignment against the canonical multiset. The
// result is empty exactly when assignment is a permutation of canonical.
func CheckConflict(assignment, canonical []string) Conflict {
	want := map[string]int{}
	for _, l := range canonical {
		want[l]++
	}
	got := map[string]int{}
	var c Conflict
	for _, l := range assignment {
		if l == "" {
			c.Blank++
			continue
		}
		got[l]++
		if _, known := want[l]; !known && got[l] == 1 {
			c.Unknown = append(c.Unknown, l)
		}
	}
	for l, n := range got {
		if w, known := want[l]; known && n > w {
			if c.Duplicates == nil {
				c.Duplicates = map[string]int{}
			}
			c.Duplicates[l] = n
		}
	}
	seen := map[string]bool{}
	for _, l := range canonical {
		if seen[l] {
			continue
		}
		seen[l] = true
		if got[l] < want[l] {
			c.Missing = append(c.Missing, l)
		}
	}
	return c
}
