// Package pogo talks to the game's map service: the remote client boundary,
// the map poller and the throttled gym detail fetcher.
package pogo

import (
	"encoding/json"

	"github.com/banshee-data/gymwatch/internal/geo"
)

// Call types as they appear under the envelope's "responses" key.
const (
	CallMapObjects = "GET_MAP_OBJECTS"
	CallGymDetails = "GET_GYM_DETAILS"
)

// Envelope is the nested response mapping returned by the remote service.
// Per-call payloads stay raw until a caller picks out the one it asked for.
type Envelope struct {
	Responses map[string]json.RawMessage `json:"responses"`
}

// MapObjects is the GET_MAP_OBJECTS payload.
type MapObjects struct {
	Status   int       `json:"status"`
	MapCells []MapCell `json:"map_cells"`
}

// MapCell is one spatial cell of the map response.
type MapCell struct {
	S2CellID uint64 `json:"s2_cell_id"`
	Forts    []Fort `json:"forts,omitempty"`
}

// Fort is a point of interest on the map. A fort is a gym iff GymPoints is
// present; the nominal Type code is not reliable and is never used for
// classification.
type Fort struct {
	ID             string  `json:"id"`
	Type           int     `json:"type,omitempty"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	GymPoints      *int64  `json:"gym_points,omitempty"`
	OwnedByTeam    int     `json:"owned_by_team,omitempty"`
	GuardPokemonID int     `json:"guard_pokemon_id,omitempty"`
	Enabled        bool    `json:"enabled,omitempty"`
	LastModifiedMs int64   `json:"last_modified_timestamp_ms,omitempty"`

	// Geohash is not part of the wire format; the poller annotates forts
	// with it before the cell listing is persisted.
	Geohash string `json:"geohash,omitempty"`
}

// IsGym reports whether the fort carries a prestige value.
func (f *Fort) IsGym() bool {
	return f.GymPoints != nil
}

// Position returns the fort's coordinates.
func (f *Fort) Position() geo.Position {
	return geo.Position{Lat: f.Latitude, Lng: f.Longitude}
}

// GymDetail is the GET_GYM_DETAILS payload for one gym. A payload without a
// name is considered malformed and is never persisted.
type GymDetail struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	URLs        []string `json:"urls,omitempty"`
	GymState    GymState `json:"gym_state"`
}

// GymState carries the fort snapshot and the current roster.
type GymState struct {
	FortData    Fort         `json:"fort_data"`
	Memberships []Membership `json:"memberships,omitempty"`
}

// Membership is one creature-and-trainer pairing assigned to a gym.
type Membership struct {
	PokemonData          PokemonInstance `json:"pokemon_data"`
	TrainerPublicProfile Trainer         `json:"trainer_public_profile"`
}

// PokemonInstance describes one deployed creature. Individual values are each
// in [0, 15].
type PokemonInstance struct {
	PokemonID         int    `json:"pokemon_id"`
	Nickname          string `json:"nickname,omitempty"`
	CP                int    `json:"cp"`
	Stamina           int    `json:"stamina"`
	StaminaMax        int    `json:"stamina_max,omitempty"`
	Move1             int    `json:"move_1"`
	Move2             int    `json:"move_2"`
	IndividualAttack  int    `json:"individual_attack"`
	IndividualDefense int    `json:"individual_defense"`
	IndividualStamina int    `json:"individual_stamina"`
}

// Trainer is the public profile of a gym member's owner.
type Trainer struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}
