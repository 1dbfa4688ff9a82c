package engine

import "strconv"

// SeatKey identifies who sits in a seat: a participant id rendered as a string,
// the human marker, or EmptySeat for a position nobody fills yet.
type SeatKey string

const (
	HumanSeat SeatKey = "human"
	EmptySeat SeatKey = ""

	// HumanSentinel marks the human's position in id-indexed payload arrays.
	HumanSentinel = -1
)

func KeyFor(id int) SeatKey { return SeatKey(strconv.Itoa(id)) }

// ParticipantID returns the id behind a participant seat key.
func (k SeatKey) ParticipantID() (int, bool) {
	if k == HumanSeat || k == EmptySeat {
		return 0, false
	}
	id, err := strconv.Atoi(string(k))
	return id, err == nil
}

// HumanInsertion maps every seat position to an index into the ordered
// selection. The human's position maps to HumanSentinel. With human < 0 the
// mapping is the identity. Both the seat layout and the start payload are
// built from this table so they always agree on where the human sits.
func HumanInsertion(total, human int) []int {
	out := make([]int, total)
	for i := range out {
		switch {
		case human < 0 || i < human:
			out[i] = i
		case i == human:
			out[i] = HumanSentinel
		default:
			out[i] = i - 1
		}
	}
	return out
}

// seatSources is HumanInsertion for the active mode.
func seatSources(s State) []int {
	human := -1
	if s.Mode == ModeParticipate {
		human = HumanIndex(s)
	}
	return HumanInsertion(SeatCount(s), human)
}

// Seats lays the selection out around the table. The result always has
// SeatCount entries; positions without a participant hold EmptySeat.
func Seats(s State) []SeatKey {
	ids := s.Selection.Ordered()
	src := seatSources(s)
	seats := make([]SeatKey, len(src))
	for i, j := range src {
		switch {
		case j == HumanSentinel:
			seats[i] = HumanSeat
		case j < len(ids):
			seats[i] = KeyFor(ids[j])
		default:
			seats[i] = EmptySeat
		}
	}
	return seats
}

// participantSlots is the payload form of Seats: raw ids, with HumanSentinel
// for the human and for any position left unfilled.
func participantSlots(s State) []int {
	ids := s.Selection.Ordered()
	src := seatSources(s)
	out := make([]int, len(src))
	for i, j := range src {
		if j == HumanSentinel || j >= len(ids) {
			out[i] = HumanSentinel
			continue
		}
		out[i] = ids[j]
	}
	return out
}
