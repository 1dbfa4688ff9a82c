// Package profile stores per-participant display names and agent overrides.
package profile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/DoyleJ11/arena-lobby/internal/engine"
	"github.com/DoyleJ11/arena-lobby/pkg/types"
)

var ErrNotFound = errors.New("profile not found")

type Profile struct {
	ParticipantID int    `json:"participant_id"`
	Name          string `json:"name"`
	BaseModel     string `json:"base_model,omitempty"`
	APIBase       string `json:"api_base,omitempty"`
	APIKey        string `json:"api_key,omitempty"`
	AgentClass    string `json:"agent_class,omitempty"`
}

// HasOverride reports whether the profile carries any agent setting.
func (p Profile) HasOverride() bool {
	return !p.AgentConfig().IsZero()
}

func (p Profile) AgentConfig() types.AgentConfig {
	return types.AgentConfig{
		BaseModel:  p.BaseModel,
		APIBase:    p.APIBase,
		APIKey:     p.APIKey,
		AgentClass: p.AgentClass,
	}
}

type Store interface {
	Get(ctx context.Context, participantID int) (Profile, error)
	// GetMany returns the profiles that exist; missing ids are skipped.
	GetMany(ctx context.Context, participantIDs []int) ([]Profile, error)
	Put(ctx context.Context, p Profile) error
}

// Lookup resolves the overrides for ids into the form the payload builder
// consumes. Negative ids (the human seat) are ignored.
func Lookup(ctx context.Context, store Store, ids []int) (engine.ProfileMap, error) {
	wanted := make([]int, 0, len(ids))
	for _, id := range ids {
		if id >= 0 {
			wanted = append(wanted, id)
		}
	}
	profiles, err := store.GetMany(ctx, wanted)
	if err != nil {
		return nil, fmt.Errorf("profile: lookup: %w", err)
	}
	out := make(engine.ProfileMap, len(profiles))
	for _, p := range profiles {
		if p.HasOverride() {
			out[p.ParticipantID] = p.AgentConfig()
		}
	}
	return out, nil
}

// SeedNames gives every portrait a profile name, leaving names that were
// already set alone. It returns how many profiles were written.
func SeedNames(ctx context.Context, store Store, portraits map[int]string) (int, error) {
	var (
		written int
		errs    error
	)
	for id, name := range portraits {
		if name == "" {
			continue
		}
		p, err := store.Get(ctx, id)
		switch {
		case errors.Is(err, ErrNotFound):
			p = Profile{ParticipantID: id}
		case err != nil:
			errs = multierr.Append(errs, err)
			continue
		}
		if p.Name != "" {
			continue
		}
		p.Name = name
		if err := store.Put(ctx, p); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		written++
	}
	return written, errs
}
