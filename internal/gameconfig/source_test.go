package gameconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/arena-lobby/internal/engine"
)

func writeDoc(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestFileSource_Avalon(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, AvalonFile, `
game:
  num_players: 6
  language: zh-CN
  roles_name: [Merlin, Percival, Servant, Servant, Minion, Assassin]
`)
	opts, err := NewFileSource(dir).Options(context.Background(), engine.GameAvalon)
	require.NoError(t, err)

	assert.Equal(t, []string{"Merlin", "Percival", "Servant", "Servant", "Minion", "Assassin"}, opts.Roles)
	assert.Equal(t, 6, opts.Defaults.NumPlayers)
	assert.Equal(t, "zh", opts.Defaults.Language)
	assert.False(t, opts.Builtin)
}

func TestFileSource_DiplomacyHumanPowerDefaultsToFirst(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, DiplomacyFile, `
game:
  power_names: [AUSTRIA, ENGLAND, FRANCE, GERMANY, ITALY, RUSSIA, TURKEY]
  max_phases: 12
  negotiation_rounds: 2
  map_name: standard
  language: english
  model_name: base
  power_models:
    FRANCE: big
`)
	opts, err := NewFileSource(dir).Options(context.Background(), engine.GameDiplomacy)
	require.NoError(t, err)

	assert.Len(t, opts.Powers, 7)
	assert.Equal(t, "AUSTRIA", opts.Defaults.HumanPower)
	assert.Equal(t, 12, opts.Defaults.MaxPhases)
	assert.Equal(t, 2, opts.Defaults.NegotiationRounds)
	assert.Equal(t, "en", opts.Defaults.Language)
	assert.Equal(t, "base", opts.Defaults.ModelName)
	assert.Equal(t, map[string]string{"FRANCE": "big"}, opts.PowerModels)
}

func TestFileSource_Web(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, WebFile, `
portraits:
  1: Arthur
  2: Guinevere
default_role:
  model:
    model_name: m1
    url: http://llm.local/v1
  agent:
    type: ReActAgent
`)
	web, err := NewFileSource(dir).Web(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[int]string{1: "Arthur", 2: "Guinevere"}, web.Portraits)
	assert.Equal(t, "m1", web.DefaultModel.ModelName)
	assert.Equal(t, "http://llm.local/v1", web.DefaultModel.APIBase)
	assert.Equal(t, "ReActAgent", web.DefaultModel.AgentClass)
	assert.Equal(t, 2048, web.DefaultModel.MaxTokens)
}

func TestFileSource_Errors(t *testing.T) {
	src := NewFileSource(t.TempDir())

	_, err := src.Options(context.Background(), engine.GameAvalon)
	assert.ErrorIs(t, err, ErrMissingDocument)

	_, err = src.Options(context.Background(), engine.Game("chess"))
	assert.ErrorIs(t, err, engine.ErrUnknownGame)

	dir := t.TempDir()
	writeDoc(t, dir, AvalonFile, "game: [not, a, map")
	_, err = NewFileSource(dir).Options(context.Background(), engine.GameAvalon)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingDocument)
}

func TestFileSource_ShippedConfigs(t *testing.T) {
	src := NewFileSource(filepath.Join("..", "..", "configs"))

	avalon, err := src.Options(context.Background(), engine.GameAvalon)
	require.NoError(t, err)
	assert.Len(t, avalon.Roles, avalon.Defaults.NumPlayers)

	dip, err := src.Options(context.Background(), engine.GameDiplomacy)
	require.NoError(t, err)
	assert.Len(t, dip.Powers, engine.DiplomacySeats)

	web, err := src.Web(context.Background())
	require.NoError(t, err)
	assert.Len(t, web.Portraits, engine.DefaultRosterSize)
}

func TestWithFallback_DegradesToBuiltin(t *testing.T) {
	src := WithFallback(NewFileSource(t.TempDir()), zaptest.NewLogger(t))

	avalon, err := src.Options(context.Background(), engine.GameAvalon)
	require.NoError(t, err)
	assert.True(t, avalon.Builtin)
	assert.Equal(t, engine.DefaultAvalonPlayers, avalon.Defaults.NumPlayers)

	dip, err := src.Options(context.Background(), engine.GameDiplomacy)
	require.NoError(t, err)
	assert.True(t, dip.Builtin)
	assert.Empty(t, dip.Powers)

	web, err := src.Web(context.Background())
	require.NoError(t, err)
	assert.True(t, web.Builtin)

	_, err = src.Options(context.Background(), engine.Game("chess"))
	assert.ErrorIs(t, err, engine.ErrUnknownGame)
}

func TestSeed_ConfiguredRolesFollowGameSwitch(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, AvalonFile, `
game:
  num_players: 5
  roles_name: [Merlin, Percival, Servant, Minion, Assassin]
`)
	src := WithFallback(NewFileSource(dir), zaptest.NewLogger(t))

	s, err := Seed(context.Background(), src, engine.NewEmptyState())
	require.NoError(t, err)
	require.Contains(t, s.Options, engine.GameDiplomacy)
	assert.True(t, s.Options[engine.GameDiplomacy].Builtin)

	_, s, err = engine.Apply(s, engine.Command{Type: engine.CmdSetGame, Game: engine.GameAvalon})
	require.NoError(t, err)
	assert.Equal(t, []string{"Merlin", "Percival", "Servant", "Minion", "Assassin"}, engine.Canonical(s))
	assert.False(t, engine.UsingDefaults(s))
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"zh", "zh"},
		{"zh-cn", "zh"},
		{"zh_CN", "zh"},
		{"ZH-TW", "zh"},
		{"cn", "zh"},
		{"zn", "zh"},
		{" Chinese ", "zh"},
		{"en", "en"},
		{"en-US", "en"},
		{"fr", "en"},
		{"", "en"},
		{"???", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLanguage(tt.in))
		})
	}
}
