// Package gameconfig loads the per-game option documents a lobby is seeded
// from: role and power lists, defaults, and the web-facing portrait names.
package gameconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/arena-lobby/internal/engine"
)

const (
	AvalonFile    = "avalon.yaml"
	DiplomacyFile = "diplomacy.yaml"
	WebFile       = "web.yaml"
)

// Source provides game options and web options.
type Source interface {
	Options(ctx context.Context, game engine.Game) (engine.GameOptions, error)
	Web(ctx context.Context) (WebOptions, error)
}

// WebOptions is the game-independent part of the configuration.
type WebOptions struct {
	Portraits    map[int]string `json:"portraits"`
	DefaultModel DefaultModel   `json:"default_model"`
	Builtin      bool           `json:"builtin"`
}

type DefaultModel struct {
	ModelName   string  `json:"model_name" yaml:"model_name"`
	APIBase     string  `json:"api_base" yaml:"api_base"`
	APIKey      string  `json:"api_key" yaml:"api_key"`
	AgentClass  string  `json:"agent_class,omitempty" yaml:"-"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
}

type avalonDoc struct {
	Game struct {
		NumPlayers int      `yaml:"num_players"`
		Language   string   `yaml:"language"`
		RolesName  []string `yaml:"roles_name"`
	} `yaml:"game"`
}

type diplomacyDoc struct {
	Game struct {
		PowerNames        []string          `yaml:"power_names"`
		HumanPower        string            `yaml:"human_power"`
		MaxPhases         int               `yaml:"max_phases"`
		MapName           string            `yaml:"map_name"`
		NegotiationRounds int               `yaml:"negotiation_rounds"`
		Language          string            `yaml:"language"`
		Models            []string          `yaml:"models"`
		ModelName         string            `yaml:"model_name"`
		PowerModels       map[string]string `yaml:"power_models"`
	} `yaml:"game"`
}

type webDoc struct {
	Portraits   map[int]string `yaml:"portraits"`
	DefaultRole struct {
		Model struct {
			DefaultModel `yaml:",inline"`
			URL          string `yaml:"url"`
		} `yaml:"model"`
		Agent struct {
			Type string `yaml:"type"`
		} `yaml:"agent"`
	} `yaml:"default_role"`
}

// FileSource reads option documents from a directory.
type FileSource struct {
	Dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (f *FileSource) Options(ctx context.Context, game engine.Game) (engine.GameOptions, error) {
	if err := ctx.Err(); err != nil {
		return engine.GameOptions{}, err
	}
	switch game {
	case engine.GameAvalon:
		var doc avalonDoc
		if err := f.read(AvalonFile, &doc); err != nil {
			return engine.GameOptions{}, err
		}
		num := doc.Game.NumPlayers
		if num == 0 {
			num = engine.DefaultAvalonPlayers
		}
		return engine.GameOptions{
			Roles: doc.Game.RolesName,
			Defaults: engine.Defaults{
				NumPlayers: num,
				Language:   NormalizeLanguage(doc.Game.Language),
			},
		}, nil

	case engine.GameDiplomacy:
		var doc diplomacyDoc
		if err := f.read(DiplomacyFile, &doc); err != nil {
			return engine.GameOptions{}, err
		}
		g := doc.Game
		human := g.HumanPower
		if human == "" && len(g.PowerNames) > 0 {
			human = g.PowerNames[0]
		}
		return engine.GameOptions{
			Powers:      g.PowerNames,
			Models:      g.Models,
			PowerModels: g.PowerModels,
			Defaults: engine.Defaults{
				Language:          NormalizeLanguage(g.Language),
				MaxPhases:         g.MaxPhases,
				NegotiationRounds: g.NegotiationRounds,
				MapName:           g.MapName,
				HumanPower:        human,
				ModelName:         g.ModelName,
			},
		}, nil
	}
	return engine.GameOptions{}, fmt.Errorf("gameconfig: options for %q: %w", game, engine.ErrUnknownGame)
}

func (f *FileSource) Web(ctx context.Context) (WebOptions, error) {
	if err := ctx.Err(); err != nil {
		return WebOptions{}, err
	}
	var doc webDoc
	if err := f.read(WebFile, &doc); err != nil {
		return WebOptions{}, err
	}
	model := doc.DefaultRole.Model.DefaultModel
	if model.APIBase == "" {
		model.APIBase = doc.DefaultRole.Model.URL
	}
	model.AgentClass = doc.DefaultRole.Agent.Type
	if model.Temperature == 0 {
		model.Temperature = 0.7
	}
	if model.MaxTokens == 0 {
		model.MaxTokens = 2048
	}
	portraits := doc.Portraits
	if portraits == nil {
		portraits = map[int]string{}
	}
	return WebOptions{Portraits: portraits, DefaultModel: model}, nil
}

var ErrMissingDocument = errors.New("gameconfig: option document not found")

func (f *FileSource) read(name string, out any) error {
	path := filepath.Join(f.Dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingDocument, path)
		}
		return fmt.Errorf("gameconfig: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("gameconfig: parse %s: %w", path, err)
	}
	return nil
}
