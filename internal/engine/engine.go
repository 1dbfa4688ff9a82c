package engine

import (
	"errors"
	"math/rand/v2"
	"slices"
)

var (
	ErrNoGame                = errors.New("no game selected")
	ErrUnknownGame           = errors.New("unknown game")
	ErrUnknownMode           = errors.New("unknown mode")
	ErrUnsupportedForGame    = errors.New("setting not supported for this game")
	ErrPlayerCountOutOfRange = errors.New("player count out of range")
	ErrInvalidSetting        = errors.New("invalid setting value")
	ErrNotSelected           = errors.New("participant not selected")
	ErrRosterTooSmall        = errors.New("roster smaller than required selection")
	ErrRerollUnavailable     = errors.New("reroll unavailable in participate mode")
	ErrManualEditUnavailable = errors.New("manual role edits unavailable in participate mode")
	ErrNoCanonicalSet        = errors.New("no canonical role set available")
	ErrRolesUnassigned       = errors.New("roles not assigned yet")
	ErrSeatOutOfRange        = errors.New("seat out of range")
	ErrEmptyLabel            = errors.New("empty role label")
	ErrUnsupportedCommand    = errors.New("unsupported command")
)

type CommandType string

const (
	CmdToggleParticipant    CommandType = "ToggleParticipant"
	CmdSwapParticipants     CommandType = "SwapParticipants"
	CmdRandomSelect         CommandType = "RandomSelect"
	CmdSetGame              CommandType = "SetGame"
	CmdSetMode              CommandType = "SetMode"
	CmdSetNumPlayers        CommandType = "SetNumPlayers"
	CmdSetHumanIndex        CommandType = "SetHumanIndex"
	CmdSetHumanPower        CommandType = "SetHumanPower"
	CmdRerollRoles          CommandType = "RerollRoles"
	CmdSetRole              CommandType = "SetRole"
	CmdSetLanguage          CommandType = "SetLanguage"
	CmdSetMaxPhases         CommandType = "SetMaxPhases"
	CmdSetNegotiationRounds CommandType = "SetNegotiationRounds"
	CmdLoadOptions          CommandType = "LoadOptions"
)

/*
	CmdToggleParticipant -> EvtParticipantAdded | EvtParticipantRemoved -> EvtRolesAssigned (first layout)
	CmdSetGame           -> EvtGameChanged -> EvtRolesReset -> EvtRolesAssigned
	CmdSetNumPlayers     -> EvtSeatCountChanged -> EvtRolesReset -> EvtRolesAssigned
	CmdRerollRoles       -> EvtRolesAssigned
	CmdSetRole           -> EvtRoleEdited (+ EvtRoleConflict when the edit breaks the canonical set)
	CmdLoadOptions       -> EvtOptionsLoaded (+ EvtRolesReset when the canonical set changed)
*/

type Command struct {
	Type          CommandType
	ParticipantID int
	OtherID       int
	Game          Game
	Mode          Mode
	Value         int
	Label         string
	Seat          int
	Options       *GameOptions
}

type EventType string

const (
	EvtParticipantAdded    EventType = "ParticipantAdded"
	EvtParticipantRemoved  EventType = "ParticipantRemoved"
	EvtParticipantsSwapped EventType = "ParticipantsSwapped"
	EvtSelectionDrawn      EventType = "SelectionDrawn"
	EvtGameChanged         EventType = "GameChanged"
	EvtModeChanged         EventType = "ModeChanged"
	EvtSeatCountChanged    EventType = "SeatCountChanged"
	EvtHumanSeatMoved      EventType = "HumanSeatMoved"
	EvtRolesAssigned       EventType = "RolesAssigned"
	EvtRolesReset          EventType = "RolesReset"
	EvtRoleEdited          EventType = "RoleEdited"
	EvtRoleConflict        EventType = "RoleConflict"
	EvtSettingChanged      EventType = "SettingChanged"
	EvtOptionsLoaded       EventType = "OptionsLoaded"
)

type Event struct {
	Type          EventType
	ParticipantID int
	Seat          int
	Label         string
}

// Apply validates cmd against s and returns the resulting events and state.
// The input state is never modified; on error it is returned unchanged.
func Apply(s State, cmd Command) ([]Event, State, error) {
	ns := s.Clone()
	var events []Event

	switch cmd.Type {
	case CmdToggleParticipant:
		if ns.Selection.Toggle(cmd.ParticipantID) {
			events = append(events, Event{Type: EvtParticipantAdded, ParticipantID: cmd.ParticipantID})
		} else {
			events = append(events, Event{Type: EvtParticipantRemoved, ParticipantID: cmd.ParticipantID})
		}

	case CmdSwapParticipants:
		if !ns.Selection.Swap(cmd.ParticipantID, cmd.OtherID) {
			return nil, s, ErrNotSelected
		}
		events = append(events, Event{Type: EvtParticipantsSwapped, ParticipantID: cmd.ParticipantID})

	case CmdRandomSelect:
		if ns.Game == GameNone {
			return nil, s, ErrNoGame
		}
		need := RequiredSelection(ns)
		if ns.RosterSize < need {
			return nil, s, ErrRosterTooSmall
		}
		ns.Selection.Clear()
		for _, id := range drawParticipants(ns.RosterSize, need) {
			ns.Selection.Toggle(id)
		}
		events = append(events, Event{Type: EvtSelectionDrawn})

	case CmdSetGame:
		if _, ok := ParseGame(string(cmd.Game)); !ok {
			return nil, s, ErrUnknownGame
		}
		if ns.Game == cmd.Game {
			return nil, s, nil
		}
		ns.Game = cmd.Game
		ns.Settings = settingsFor(cmd.Game, ns.Options[cmd.Game])
		events = append(events, Event{Type: EvtGameChanged, Label: string(cmd.Game)})
		events = append(events, resetRoles(&ns)...)

	case CmdSetMode:
		if _, ok := ParseMode(string(cmd.Mode)); !ok {
			return nil, s, ErrUnknownMode
		}
		if ns.Mode == cmd.Mode {
			return nil, s, nil
		}
		ns.Mode = cmd.Mode
		events = append(events, Event{Type: EvtModeChanged, Label: string(cmd.Mode)})

	case CmdSetNumPlayers:
		if ns.Game != GameAvalon {
			return nil, s, ErrUnsupportedForGame
		}
		if cmd.Value < MinAvalonPlayers || cmd.Value > MaxAvalonPlayers {
			return nil, s, ErrPlayerCountOutOfRange
		}
		if ns.Settings.NumPlayers == cmd.Value {
			return nil, s, nil
		}
		ns.Settings.NumPlayers = cmd.Value
		ns.Settings.HumanIndex = HumanIndex(ns)
		events = append(events, Event{Type: EvtSeatCountChanged, Seat: cmd.Value})
		events = append(events, resetRoles(&ns)...)

	case CmdSetHumanIndex:
		if ns.Game == GameNone {
			return nil, s, ErrNoGame
		}
		ns.Settings.HumanIndex = cmd.Value
		ns.Settings.HumanIndex = HumanIndex(ns)
		events = append(events, Event{Type: EvtHumanSeatMoved, Seat: ns.Settings.HumanIndex})

	case CmdSetHumanPower:
		if ns.Game != GameDiplomacy {
			return nil, s, ErrUnsupportedForGame
		}
		idx := indexOf(Canonical(ns), cmd.Label)
		if idx < 0 {
			idx = 0
		}
		ns.Settings.HumanIndex = idx
		events = append(events, Event{Type: EvtHumanSeatMoved, Seat: idx, Label: cmd.Label})

	case CmdRerollRoles:
		if ns.Game == GameNone {
			return nil, s, ErrNoGame
		}
		if ns.Mode == ModeParticipate {
			return nil, s, ErrRerollUnavailable
		}
		canon := Canonical(ns)
		if len(canon) == 0 {
			return nil, s, ErrNoCanonicalSet
		}
		ns.Roles = shuffleRoles(canon)
		events = append(events, Event{Type: EvtRolesAssigned})

	case CmdSetRole:
		if ns.Mode == ModeParticipate {
			return nil, s, ErrManualEditUnavailable
		}
		if ns.Roles == nil {
			return nil, s, ErrRolesUnassigned
		}
		if cmd.Seat < 0 || cmd.Seat >= len(ns.Roles) {
			return nil, s, ErrSeatOutOfRange
		}
		if cmd.Label == "" {
			return nil, s, ErrEmptyLabel
		}
		ns.Roles[cmd.Seat] = cmd.Label
		events = append(events, Event{Type: EvtRoleEdited, Seat: cmd.Seat, Label: cmd.Label})
		if c := CheckConflict(ns.Roles, Canonical(ns)); !c.None() {
			events = append(events, Event{Type: EvtRoleConflict, Seat: cmd.Seat, Label: c.String()})
		}

	case CmdSetLanguage:
		if cmd.Label == "" {
			return nil, s, ErrInvalidSetting
		}
		ns.Settings.Language = cmd.Label
		events = append(events, Event{Type: EvtSettingChanged, Label: "language"})

	case CmdSetMaxPhases, CmdSetNegotiationRounds:
		if ns.Game != GameDiplomacy {
			return nil, s, ErrUnsupportedForGame
		}
		if cmd.Value <= 0 {
			return nil, s, ErrInvalidSetting
		}
		name := "max_phases"
		if cmd.Type == CmdSetMaxPhases {
			ns.Settings.MaxPhases = cmd.Value
		} else {
			name = "negotiation_rounds"
			ns.Settings.NegotiationRounds = cmd.Value
		}
		events = append(events, Event{Type: EvtSettingChanged, Label: name})

	case CmdLoadOptions:
		if _, ok := ParseGame(string(cmd.Game)); !ok {
			return nil, s, ErrUnknownGame
		}
		if cmd.Options == nil {
			return nil, s, ErrInvalidSetting
		}
		before := Canonical(ns)
		ns.Options[cmd.Game] = cmd.Options.clone()
		events = append(events, Event{Type: EvtOptionsLoaded, Label: string(cmd.Game)})
		if ns.Game == cmd.Game {
			fillDefaults(&ns.Settings, ns.Game, *cmd.Options)
			if !slices.Equal(before, Canonical(ns)) {
				events = append(events, resetRoles(&ns)...)
			}
		}

	default:
		return nil, s, ErrUnsupportedCommand
	}

	events = append(events, relayout(&ns)...)
	return events, ns, nil
}

// resetRoles drops the assignment so the next layout draws a fresh one.
func resetRoles(s *State) []Event {
	if s.Roles == nil && s.Bound == nil {
		return nil
	}
	s.Roles = nil
	s.Bound = nil
	return []Event{{Type: EvtRolesReset}}
}

// relayout assigns roles on first layout in observe mode and rebinds labels to
// seats once the selection is exactly complete.
func relayout(s *State) []Event {
	var events []Event
	if s.Mode == ModeObserve && s.Roles == nil {
		if canon := Canonical(*s); len(canon) > 0 {
			s.Roles = shuffleRoles(canon)
			events = append(events, Event{Type: EvtRolesAssigned})
		}
	}
	if s.Game != GameNone && s.Selection.Len() == RequiredSelection(*s) {
		s.Bound = Seats(*s)
	}
	return events
}

func fillDefaults(st *Settings, g Game, o GameOptions) {
	if st.Language == "" && o.Defaults.Language != "" {
		st.Language = o.Defaults.Language
	}
	if g != GameDiplomacy {
		return
	}
	if st.MaxPhases == 0 {
		st.MaxPhases = o.Defaults.MaxPhases
	}
	if st.NegotiationRounds == 0 {
		st.NegotiationRounds = o.Defaults.NegotiationRounds
	}
}

// drawParticipants is swapped out in tests that need a fixed draw.
var drawParticipants = func(rosterSize, n int) []int {
	perm := rand.Perm(rosterSize)[:n]
	ids := make([]int, n)
	for i, p := range perm {
		ids[i] = p + 1
	}
	return ids
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
