package engine

type Game string

const (
	GameNone      Game = ""
	GameAvalon    Game = "avalon"
	GameDiplomacy Game = "diplomacy"
)

func ParseGame(raw string) (Game, bool) {
	switch Game(raw) {
	case GameAvalon, GameDiplomacy:
		return Game(raw), true
	default:
		return GameNone, false
	}
}

type Mode string

const (
	ModeObserve     Mode = "observe"
	ModeParticipate Mode = "participate"
)

func ParseMode(raw string) (Mode, bool) {
	switch Mode(raw) {
	case ModeObserve, ModeParticipate:
		return Mode(raw), true
	default:
		return "", false
	}
}

const (
	MinAvalonPlayers     = 5
	MaxAvalonPlayers     = 10
	DefaultAvalonPlayers = 5
	DiplomacySeats       = 7

	DefaultRosterSize = 15
	DefaultLanguage   = "en"
)

// GameOptions is what the configuration source knows about one game.
type GameOptions struct {
	Roles       []string          `json:"roles,omitempty"`
	Powers      []string          `json:"powers,omitempty"`
	Models      []string          `json:"models,omitempty"`
	PowerModels map[string]string `json:"power_models,omitempty"`
	Defaults    Defaults          `json:"defaults"`
	// Builtin marks options that came from the built-in fallback.
	Builtin bool `json:"builtin"`
}

type Defaults struct {
	NumPlayers        int    `json:"num_players,omitempty"`
	Language          string `json:"language,omitempty"`
	MaxPhases         int    `json:"max_phases,omitempty"`
	NegotiationRounds int    `json:"negotiation_rounds,omitempty"`
	MapName           string `json:"map_name,omitempty"`
	HumanPower        string `json:"human_power,omitempty"`
	ModelName         string `json:"model_name,omitempty"`
}

func (o GameOptions) clone() GameOptions {
	out := o
	out.Roles = cloneStrings(o.Roles)
	out.Powers = cloneStrings(o.Powers)
	out.Models = cloneStrings(o.Models)
	if o.PowerModels != nil {
		out.PowerModels = make(map[string]string, len(o.PowerModels))
		for k, v := range o.PowerModels {
			out.PowerModels[k] = v
		}
	}
	return out
}

// Settings are the per-game scalar options the user can change before start.
type Settings struct {
	NumPlayers        int    `json:"num_players"`
	HumanIndex        int    `json:"human_index"`
	Language          string `json:"language"`
	MaxPhases         int    `json:"max_phases,omitempty"`
	NegotiationRounds int    `json:"negotiation_rounds,omitempty"`
}

// State is everything one lobby session owns. Derived views (seats, labels,
// readiness) are recomputed from it and never stored.
type State struct {
	Game      Game
	Mode      Mode
	Settings  Settings
	Selection Selection
	// Roles is the role/power assignment, index aligned with Seats in observe
	// mode. nil means no assignment has been made yet.
	Roles []string
	// Bound holds the seat keys the labels were last shown against.
	Bound      []SeatKey
	Options    map[Game]GameOptions
	RosterSize int
}

func NewEmptyState() State {
	return State{
		Mode:       ModeObserve,
		Settings:   Settings{Language: DefaultLanguage},
		Selection:  NewSelection(),
		Options:    map[Game]GameOptions{},
		RosterSize: DefaultRosterSize,
	}
}

// Clone returns a deep copy so Apply never writes through to the caller's state.
func (s State) Clone() State {
	out := s
	out.Selection = s.Selection.Clone()
	out.Roles = cloneStrings(s.Roles)
	if s.Bound != nil {
		out.Bound = append([]SeatKey(nil), s.Bound...)
	}
	out.Options = make(map[Game]GameOptions, len(s.Options))
	for g, o := range s.Options {
		out.Options[g] = o.clone()
	}
	return out
}

// SeatCount is the number of seats at the table, human seat included.
func SeatCount(s State) int {
	switch s.Game {
	case GameAvalon:
		if s.Settings.NumPlayers == 0 {
			return DefaultAvalonPlayers
		}
		return s.Settings.NumPlayers
	case GameDiplomacy:
		return DiplomacySeats
	default:
		return 0
	}
}

// RequiredSelection is how many participants must be selected to start.
func RequiredSelection(s State) int {
	n := SeatCount(s)
	if n > 0 && s.Mode == ModeParticipate {
		return n - 1
	}
	return n
}

// HumanIndex returns the configured human seat, clamped to 0 when out of range.
func HumanIndex(s State) int {
	h := s.Settings.HumanIndex
	if h < 0 || h >= SeatCount(s) {
		return 0
	}
	return h
}

// UsingDefaults reports whether the active game runs on built-in options.
func UsingDefaults(s State) bool {
	o, ok := s.Options[s.Game]
	return !ok || o.Builtin
}

func settingsFor(g Game, o GameOptions) Settings {
	st := Settings{Language: o.Defaults.Language}
	if st.Language == "" {
		st.Language = DefaultLanguage
	}
	switch g {
	case GameAvalon:
		st.NumPlayers = o.Defaults.NumPlayers
		if st.NumPlayers < MinAvalonPlayers || st.NumPlayers > MaxAvalonPlayers {
			st.NumPlayers = DefaultAvalonPlayers
		}
	case GameDiplomacy:
		st.NumPlayers = DiplomacySeats
		st.MaxPhases = o.Defaults.MaxPhases
		st.NegotiationRounds = o.Defaults.NegotiationRounds
		st.HumanIndex = indexOf(o.Powers, o.Defaults.HumanPower)
		if st.HumanIndex < 0 {
			st.HumanIndex = 0
		}
	}
	return st
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func indexOf(labels []string, want string) int {
	for i, l := range labels {
		if l == want {
			return i
		}
	}
	return -1
}
