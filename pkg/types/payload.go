package types

// StartPayload is the start-game configuration handed to the game server
// (POST /api/start-game).
type StartPayload struct {
	Game     string `json:"game"`
	Mode     string `json:"mode"`
	Language string `json:"language"`

	// Avalon
	NumPlayers  int          `json:"num_players,omitempty"`
	UserAgentID *int         `json:"user_agent_id,omitempty"`
	PresetRoles []PresetRole `json:"preset_roles,omitempty"`

	// Diplomacy
	HumanPower        string            `json:"human_power,omitempty"`
	MaxPhases         int               `json:"max_phases,omitempty"`
	NegotiationRounds int               `json:"negotiation_rounds,omitempty"`
	PowerNames        []string          `json:"power_names,omitempty"`
	PowerModels       map[string]string `json:"power_models,omitempty"`

	// SelectedPortraitIDs is aligned with seats; -1 marks the human and any
	// unfilled seat.
	SelectedPortraitIDs []int               `json:"selected_portrait_ids"`
	AgentConfigs        map[int]AgentConfig `json:"agent_configs,omitempty"`
}

type PresetRole struct {
	RoleID   int    `json:"role_id"`
	RoleName string `json:"role_name"`
	IsGood   bool   `json:"is_good"`
}

// AgentConfig carries per-participant model overrides.
type AgentConfig struct {
	BaseModel  string `json:"base_model"`
	APIBase    string `json:"api_base"`
	APIKey     string `json:"api_key"`
	AgentClass string `json:"agent_class,omitempty"`
}

func (c AgentConfig) IsZero() bool {
	return c.BaseModel == "" && c.APIBase == "" && c.APIKey == "" && c.AgentClass == ""
}
