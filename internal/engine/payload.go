package engine

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/arena-lobby/pkg/types"
)

var ErrNotReady = errors.New("lobby not ready to start")

// NotReadyError carries the readiness report that blocked a start.
type NotReadyError struct {
	Readiness Readiness
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%v: %v", ErrNotReady, e.Readiness.Problems)
}

func (e *NotReadyError) Is(target error) bool { return target == ErrNotReady }

// Profiles resolves per-participant overrides for the payload.
type Profiles interface {
	AgentConfig(participantID int) (types.AgentConfig, bool)
}

type ProfileMap map[int]types.AgentConfig

func (m ProfileMap) AgentConfig(id int) (types.AgentConfig, bool) {
	c, ok := m[id]
	return c, ok
}

// BuildPayload turns a ready lobby into its start-game configuration. It runs
// the full readiness check itself and fails with *NotReadyError otherwise.
func BuildPayload(s State, profiles Profiles) (types.StartPayload, error) {
	if r := Check(s); !r.Ready() {
		return types.StartPayload{}, &NotReadyError{Readiness: r}
	}

	p := types.StartPayload{
		Game:     string(s.Game),
		Mode:     string(s.Mode),
		Language: s.Settings.Language,
	}
	if s.Mode == ModeParticipate {
		p.SelectedPortraitIDs = participantSlots(s)
	} else {
		p.SelectedPortraitIDs = s.Selection.Ordered()
	}

	canon := Canonical(s)
	switch s.Game {
	case GameAvalon:
		p.NumPlayers = SeatCount(s)
		if s.Mode == ModeParticipate {
			human := HumanIndex(s)
			p.UserAgentID = &human
		} else {
			p.PresetRoles = presetRoles(s.Roles)
		}
	case GameDiplomacy:
		p.MaxPhases = s.Settings.MaxPhases
		p.NegotiationRounds = s.Settings.NegotiationRounds
		p.PowerNames = Assignment(s)
		if s.Mode == ModeParticipate {
			p.HumanPower = canon[HumanIndex(s)]
		}
		p.PowerModels = powerModels(s.Options[s.Game], canon)
	}

	p.AgentConfigs = agentConfigs(p.SelectedPortraitIDs, profiles)
	return p, nil
}

func presetRoles(roles []string) []types.PresetRole {
	out := make([]types.PresetRole, len(roles))
	for i, r := range roles {
		out[i] = types.PresetRole{RoleID: AvalonRoleID(r), RoleName: r, IsGood: IsGoodRole(r)}
	}
	return out
}

func powerModels(o GameOptions, powers []string) map[string]string {
	out := map[string]string{}
	for _, p := range powers {
		if m := o.PowerModels[p]; m != "" {
			out[p] = m
		} else if o.Defaults.ModelName != "" {
			out[p] = o.Defaults.ModelName
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// agentConfigs looks up overrides for every real participant id. The human
// sentinel is never looked up and empty overrides are left out.
func agentConfigs(ids []int, profiles Profiles) map[int]types.AgentConfig {
	if profiles == nil {
		return nil
	}
	out := map[int]types.AgentConfig{}
	for _, id := range ids {
		if id == HumanSentinel {
			continue
		}
		if c, ok := profiles.AgentConfig(id); ok && !c.IsZero() {
			out[id] = c
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
