package gameconfig

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-lobby/internal/engine"
)

// Builtin returns the options used when no document can be loaded. Diplomacy
// has no built-in power list, so a lobby on the fallback cannot start it.
func Builtin(game engine.Game) (engine.GameOptions, error) {
	switch game {
	case engine.GameAvalon:
		return engine.GameOptions{
			Defaults: engine.Defaults{
				NumPlayers: engine.DefaultAvalonPlayers,
				Language:   engine.DefaultLanguage,
			},
			Builtin: true,
		}, nil
	case engine.GameDiplomacy:
		return engine.GameOptions{
			Defaults: engine.Defaults{
				Language:          engine.DefaultLanguage,
				MaxPhases:         20,
				NegotiationRounds: 3,
				MapName:           "standard",
			},
			Builtin: true,
		}, nil
	}
	return engine.GameOptions{}, fmt.Errorf("gameconfig: options for %q: %w", game, engine.ErrUnknownGame)
}

type fallback struct {
	src Source
	log *zap.Logger
}

// WithFallback wraps src so load failures degrade to the built-in options.
// Unknown games are still reported as errors.
func WithFallback(src Source, log *zap.Logger) Source {
	return &fallback{src: src, log: log}
}

func (f *fallback) Options(ctx context.Context, game engine.Game) (engine.GameOptions, error) {
	if _, ok := engine.ParseGame(string(game)); !ok {
		return engine.GameOptions{}, fmt.Errorf("gameconfig: options for %q: %w", game, engine.ErrUnknownGame)
	}
	opts, err := f.src.Options(ctx, game)
	if err == nil {
		return opts, nil
	}
	f.log.Warn("option load failed, using built-in defaults", zap.String("game", string(game)), zap.Error(err))
	return Builtin(game)
}

func (f *fallback) Web(ctx context.Context) (WebOptions, error) {
	web, err := f.src.Web(ctx)
	if err == nil {
		return web, nil
	}
	f.log.Warn("web option load failed, using built-in defaults", zap.Error(err))
	return WebOptions{Portraits: map[int]string{}, Builtin: true}, nil
}

// Seed applies the options for every game to s, so switching games later
// picks up configured roles and defaults.
func Seed(ctx context.Context, src Source, s engine.State) (engine.State, error) {
	for _, game := range []engine.Game{engine.GameAvalon, engine.GameDiplomacy} {
		opts, err := src.Options(ctx, game)
		if err != nil {
			return s, err
		}
		_, next, err := engine.Apply(s, engine.Command{Type: engine.CmdLoadOptions, Game: game, Options: &opts})
		if err != nil {
			return s, fmt.Errorf("gameconfig: seed %s: %w", game, err)
		}
		s = next
	}
	return s, nil
}
