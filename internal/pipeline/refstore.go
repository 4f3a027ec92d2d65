package pipeline

import (
	"encoding/json"
	"fmt"
)

// Team is one row of the teams lookup table. Immutable for a season.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// PositionType is one row of the element-types lookup table ("Goalkeeper",
// "Defender", "Midfielder", "Forward").
type PositionType struct {
	ID           int    `json:"id"`
	SingularName string `json:"singular_name"`
}

// Resolver is an id-keyed lookup built once per reference table and reused
// for every join, instead of re-deriving an index on each call.
type Resolver[K comparable, V any] struct {
	entries map[K]V
}

// NewResolver creates an empty Resolver.
func NewResolver[K comparable, V any]() *Resolver[K, V] {
	return &Resolver[K, V]{entries: make(map[K]V)}
}

// Put stores a mapping.
func (r *Resolver[K, V]) Put(key K, value V) { r.entries[key] = value }

// Lookup returns the mapped value and whether it exists.
func (r *Resolver[K, V]) Lookup(key K) (V, bool) {
	v, ok := r.entries[key]
	return v, ok
}

// Len returns the number of entries.
func (r *Resolver[K, V]) Len() int { return len(r.entries) }

// Reference holds the three normalized lookup tables decoded from one
// bootstrap payload, plus the id-keyed resolvers built over them. It is owned
// by the run: consumers read from it and copy-then-merge, never mutate.
type Reference struct {
	Elements  []Row
	Positions []PositionType
	Teams     []Team

	TeamNames     *Resolver[int, string] // team id -> full name
	TeamShort     *Resolver[int, string] // team id -> short name
	PositionNames *Resolver[int, string] // element type id -> singular name
	PlayerNames   *Resolver[int, string] // element id -> web name
	PlayerRows    *Resolver[int, Row]    // element id -> raw element row
}

// BuildReference decodes the three reference tables from a raw bootstrap
// payload. The three sequences are decoded independently; no cross-validation
// happens here beyond what the resolvers need.
func BuildReference(raw []byte) (*Reference, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &MalformedPayloadError{Key: "(root)", Reason: "payload is not a JSON object"}
	}

	elements, err := decodeSequence[Row](payload, "elements")
	if err != nil {
		return nil, err
	}
	positions, err := decodeSequence[PositionType](payload, "element_types")
	if err != nil {
		return nil, err
	}
	teams, err := decodeSequence[Team](payload, "teams")
	if err != nil {
		return nil, err
	}

	ref := &Reference{
		Elements:      elements,
		Positions:     positions,
		Teams:         teams,
		TeamNames:     NewResolver[int, string](),
		TeamShort:     NewResolver[int, string](),
		PositionNames: NewResolver[int, string](),
		PlayerNames:   NewResolver[int, string](),
		PlayerRows:    NewResolver[int, Row](),
	}

	for _, t := range teams {
		ref.TeamNames.Put(t.ID, t.Name)
		ref.TeamShort.Put(t.ID, t.ShortName)
	}
	for _, p := range positions {
		ref.PositionNames.Put(p.ID, p.SingularName)
	}
	for i, el := range elements {
		id, ok := Int(el["id"])
		if !ok {
			return nil, &MalformedPayloadError{
				Key:    "elements",
				Reason: fmt.Sprintf("record %d has no integer id", i),
			}
		}
		if _, dup := ref.PlayerRows.Lookup(id); dup {
			return nil, &MalformedPayloadError{
				Key:    "elements",
				Reason: fmt.Sprintf("duplicate player id %d", id),
			}
		}
		ref.PlayerRows.Put(id, el)
		if name, ok := String(el["web_name"]); ok {
			ref.PlayerNames.Put(id, name)
		}
	}

	return ref, nil
}

// decodeSequence unmarshals one top-level key into a uniformly-shaped slice.
func decodeSequence[T any](payload map[string]json.RawMessage, key string) ([]T, error) {
	rawSeq, ok := payload[key]
	if !ok {
		return nil, &MalformedPayloadError{Key: key, Reason: "missing"}
	}
	var seq []T
	if err := json.Unmarshal(rawSeq, &seq); err != nil {
		return nil, &MalformedPayloadError{Key: key, Reason: "not a sequence of uniformly-shaped records"}
	}
	return seq, nil
}
