package types

// Client -> Server (websocket, JSON text frames)
// toggle:                 participant_id: number
// swap:                   participant_id: number, other_id: number
// random_select:          {}
// set_game:               game: "avalon" | "diplomacy"
// set_mode:               mode: "observe" | "participate"
// set_num_players:        value: number (avalon, 5-10)
// set_human_index:        value: number
// set_human_power:        label: string (diplomacy)
// reroll:                 {}
// set_role:               seat: number, label: string
// set_language:           label: "en" | "zh" (other tags are normalized)
// set_max_phases:         value: number (diplomacy)
// set_negotiation_rounds: value: number (diplomacy)

// Server -> Client
// StateSnapshot:
//   version: number
//   view: {
//     game, mode, settings, selected: number[],
//     seats: [{ key: "human" | "<id>" | "", participant_id: number, label?: string }],
//     human_index, human_power?, roles?: string[], canonical?: string[],
//     readiness: { required, selected, deficit?, excess?, conflict?, problems? },
//     hint, can_reroll, can_edit_roles, using_defaults
//   }
//
// Started:
//   version: number
//   payload: StartPayload
//
// Error:
//   error: string
