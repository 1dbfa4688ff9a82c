package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/arena-lobby/pkg/types"
)

// recordingProfiles remembers every id it was asked about.
type recordingProfiles struct {
	configs map[int]types.AgentConfig
	asked   []int
}

func (r *recordingProfiles) AgentConfig(id int) (types.AgentConfig, bool) {
	r.asked = append(r.asked, id)
	c, ok := r.configs[id]
	return c, ok
}

func TestBuildPayload_AvalonObserve(t *testing.T) {
	s := newGameState(t, GameAvalon, ModeObserve, 3, 7, 1, 9, 2)

	assert.Equal(t, []SeatKey{"3", "7", "1", "9", "2"}, Seats(s))
	require.True(t, CheckConflict(s.Roles, []string{RoleMerlin, RoleServant, RoleServant, RoleMinion, RoleAssassin}).None())

	p, err := BuildPayload(s, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7, 1, 9, 2}, p.SelectedPortraitIDs)
	assert.Equal(t, "avalon", p.Game)
	assert.Equal(t, "observe", p.Mode)
	assert.Equal(t, 5, p.NumPlayers)
	assert.Nil(t, p.UserAgentID)
	require.Len(t, p.PresetRoles, 5)
	for i, r := range p.PresetRoles {
		assert.Equal(t, s.Roles[i], r.RoleName)
		assert.Equal(t, AvalonRoleID(r.RoleName), r.RoleID)
		assert.Equal(t, IsGoodRole(r.RoleName), r.IsGood)
	}
}

func TestBuildPayload_AvalonParticipate(t *testing.T) {
	s := newGameState(t, GameAvalon, ModeParticipate, 4, 8, 6, 1)
	s = mustApply(t, s, Command{Type: CmdSetHumanIndex, Value: 2})

	assert.Equal(t, []SeatKey{"4", "8", HumanSeat, "6", "1"}, Seats(s))

	p, err := BuildPayload(s, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 8, -1, 6, 1}, p.SelectedPortraitIDs)
	require.NotNil(t, p.UserAgentID)
	assert.Equal(t, 2, *p.UserAgentID)
	assert.Empty(t, p.PresetRoles)
}

func TestBuildPayload_HumanSentinelMatchesSeatLayout(t *testing.T) {
	for _, game := range []Game{GameAvalon, GameDiplomacy} {
		base := newGameState(t, game, ModeParticipate)
		base = mustApply(t, base, toggles(21, 22, 23, 24, 25, 26)[:RequiredSelection(base)]...)
		for human := range SeatCount(base) {
			s := mustApply(t, base, Command{Type: CmdSetHumanIndex, Value: human})
			p, err := BuildPayload(s, nil)
			require.NoError(t, err)

			seats := Seats(s)
			for i, id := range p.SelectedPortraitIDs {
				if seats[i] == HumanSeat {
					assert.Equal(t, HumanSentinel, id, "%s human=%d seat=%d", game, human, i)
				} else {
					assert.Equal(t, KeyFor(id), seats[i])
				}
			}
		}
	}
}

func TestBuildPayload_DuplicateRoleBlocksStart(t *testing.T) {
	fixedShuffle(t, identity)
	s := newGameState(t, GameAvalon, ModeObserve, 3, 7, 1, 9, 2)
	s = mustApply(t, s, Command{Type: CmdSetRole, Seat: 3, Label: RoleMerlin})

	r := Check(s)
	require.False(t, r.Ready())
	require.NotNil(t, r.Conflict)
	assert.Equal(t, 2, r.Conflict.Duplicates[RoleMerlin])
	assert.Contains(t, r.Problems, ProblemRoleConflict)

	_, err := BuildPayload(s, nil)
	require.ErrorIs(t, err, ErrNotReady)
	var nre *NotReadyError
	require.True(t, errors.As(err, &nre))
	assert.Equal(t, r, nre.Readiness)
}

func TestBuildPayload_IncompleteSelection(t *testing.T) {
	cases := []struct {
		name    string
		ids     []int
		deficit int
		excess  int
		hint    string
	}{
		{name: "short", ids: []int{1, 2, 3}, deficit: 2, hint: "2 more"},
		{name: "over", ids: []int{1, 2, 3, 4, 5, 6, 7}, excess: 2, hint: "Exceed 2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newGameState(t, GameAvalon, ModeObserve, tc.ids...)
			r := Check(s)
			assert.Equal(t, tc.deficit, r.Deficit)
			assert.Equal(t, tc.excess, r.Excess)
			assert.Equal(t, []Problem{ProblemIncompleteSelection}, r.Problems)
			assert.Equal(t, tc.hint, Derive(s).Hint)

			_, err := BuildPayload(s, nil)
			assert.ErrorIs(t, err, ErrNotReady)
		})
	}
}

func TestBuildPayload_DiplomacyWithoutPowersCannotStart(t *testing.T) {
	s := mustApply(t, NewEmptyState(), Command{Type: CmdSetGame, Game: GameDiplomacy})
	s = mustApply(t, s, toggles(1, 2, 3, 4, 5, 6, 7)...)

	assert.Empty(t, s.Roles)
	r := Check(s)
	assert.Equal(t, []Problem{ProblemNoCanonicalSet}, r.Problems)
	assert.True(t, Derive(s).Defaults)

	_, err := BuildPayload(s, nil)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestBuildPayload_NoGame(t *testing.T) {
	_, err := BuildPayload(NewEmptyState(), nil)
	var nre *NotReadyError
	require.ErrorAs(t, err, &nre)
	assert.Equal(t, []Problem{ProblemNoGame}, nre.Readiness.Problems)
}

func TestBuildPayload_DiplomacyRerollTwice(t *testing.T) {
	s := newGameState(t, GameDiplomacy, ModeObserve, 1, 2, 3, 4, 5, 6, 7)

	s = mustApply(t, s, Command{Type: CmdRerollRoles})
	first, err := BuildPayload(s, nil)
	require.NoError(t, err)
	s = mustApply(t, s, Command{Type: CmdRerollRoles})
	second, err := BuildPayload(s, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, diplomacyPowers, first.PowerNames)
	assert.ElementsMatch(t, diplomacyPowers, second.PowerNames)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, first.SelectedPortraitIDs)
	assert.Equal(t, 20, first.MaxPhases)
	assert.Equal(t, 3, first.NegotiationRounds)
	assert.Empty(t, first.HumanPower)
}

func TestBuildPayload_DiplomacyParticipate(t *testing.T) {
	s := newGameState(t, GameDiplomacy, ModeParticipate, 11, 12, 13, 14, 15, 16)
	s = mustApply(t, s,
		Command{Type: CmdSetHumanPower, Label: "FRANCE"},
		Command{Type: CmdLoadOptions, Game: GameDiplomacy, Options: &GameOptions{
			Powers:      diplomacyPowers,
			PowerModels: map[string]string{"FRANCE": "big-model"},
			Defaults:    Defaults{ModelName: "small-model", MaxPhases: 20, NegotiationRounds: 3},
		}},
	)

	p, err := BuildPayload(s, nil)
	require.NoError(t, err)
	assert.Equal(t, "FRANCE", p.HumanPower)
	assert.Equal(t, diplomacyPowers, p.PowerNames)
	assert.Equal(t, []int{11, 12, -1, 13, 14, 15, 16}, p.SelectedPortraitIDs)
	assert.Equal(t, "big-model", p.PowerModels["FRANCE"])
	assert.Equal(t, "small-model", p.PowerModels["TURKEY"])
}

func TestBuildPayload_AgentConfigsSkipHumanAndEmpty(t *testing.T) {
	s := newGameState(t, GameAvalon, ModeParticipate, 4, 8, 6, 1)
	s = mustApply(t, s, Command{Type: CmdSetHumanIndex, Value: 1})
	profiles := &recordingProfiles{configs: map[int]types.AgentConfig{
		4: {BaseModel: "m1"},
		8: {},
		6: {AgentClass: "ThinkingAgent"},
	}}

	p, err := BuildPayload(s, profiles)
	require.NoError(t, err)
	assert.Equal(t, map[int]types.AgentConfig{
		4: {BaseModel: "m1"},
		6: {AgentClass: "ThinkingAgent"},
	}, p.AgentConfigs)
	assert.NotContains(t, profiles.asked, HumanSentinel)
	assert.ElementsMatch(t, []int{4, 8, 6, 1}, profiles.asked)
}

func TestBuildPayload_NoOverridesLeavesMapOut(t *testing.T) {
	s := newGameState(t, GameAvalon, ModeObserve, 1, 2, 3, 4, 5)

	p, err := BuildPayload(s, ProfileMap{2: {}})
	require.NoError(t, err)
	assert.Nil(t, p.AgentConfigs)
}
