// Package persist encodes the game state to a versioned snapshot and keeps it
// in one of several key/blob stores.
package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"ittycoon/internal/game"
)

type VersionPolicy string

const (
	// PolicyDiscard throws away snapshots older than game.StateVersion.
	PolicyDiscard VersionPolicy = "discard"
	// PolicyReconcile sends old snapshots through the same merge and
	// reconciliation path as current ones.
	PolicyReconcile VersionPolicy = "reconcile"
)

type Outcome string

const (
	OutcomeFresh      Outcome = "fresh"
	OutcomeLoaded     Outcome = "loaded"
	OutcomeReconciled Outcome = "reconciled"
	OutcomeDiscarded  Outcome = "discarded"
	OutcomeCorrupt    Outcome = "corrupt"
)

type Codec struct {
	Policy VersionPolicy
}

func (c Codec) Encode(s game.GameState) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return raw, nil
}

// Decode always returns a usable state. The error is only set for corrupt input,
// including snapshots that parse but fail GameState.Validate, and there the state
// is the default.
func (c Codec) Decode(raw []byte) (game.GameState, Outcome, error) {
	def := game.DefaultState()
	if len(bytes.TrimSpace(raw)) == 0 {
		return def, OutcomeFresh, nil
	}
	var snap map[string]any
	if err := json.Unmarshal(raw, &snap); err != nil {
		return def, OutcomeCorrupt, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap == nil {
		return def, OutcomeFresh, nil
	}

	outcome := OutcomeLoaded
	if v, ok := snapshotVersion(snap); !ok || v < game.StateVersion {
		if c.Policy != PolicyReconcile {
			return def, OutcomeDiscarded, nil
		}
		outcome = OutcomeReconciled
	}

	merged, err := toMap(def)
	if err != nil {
		return def, OutcomeCorrupt, err
	}
	maps.Copy(merged, snap)
	if Reconcile(merged) {
		outcome = OutcomeReconciled
	}
	if outcome == OutcomeReconciled {
		merged["version"] = game.StateVersion
	}

	body, err := json.Marshal(merged)
	if err != nil {
		return def, OutcomeCorrupt, fmt.Errorf("re-encode snapshot: %w", err)
	}
	// merged already carries every default key, so decoding into a zero value
	// keeps the merge shallow: a snapshot's sub-object replaces the default one.
	var out game.GameState
	if err := json.Unmarshal(body, &out); err != nil {
		return def, OutcomeCorrupt, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := out.Validate(); err != nil {
		return def, OutcomeCorrupt, fmt.Errorf("decode snapshot: %w", err)
	}
	out.Normalize()
	return out, outcome, nil
}

var legacyStatKeys = []string{
	"money", "mood", "maxMood", "health", "maxHealth", "stamina", "maxStamina", "education",
}

// Reconcile moves legacy top-level stat fields into the nested stats object,
// overwriting what is there, and deletes them from the top level. It reports
// whether anything moved. Running it on an already-migrated map changes nothing.
func Reconcile(m map[string]any) bool {
	stats, _ := m["stats"].(map[string]any)
	changed := false
	for _, key := range legacyStatKeys {
		v, ok := m[key]
		if !ok {
			continue
		}
		if stats == nil {
			stats = map[string]any{}
		}
		stats[key] = v
		delete(m, key)
		changed = true
	}
	if changed {
		m["stats"] = stats
	}
	return changed
}

func snapshotVersion(m map[string]any) (int, bool) {
	v, ok := m["version"].(float64)
	if !ok {
		return 0, false
	}
	return int(v), true
}

func toMap(s game.GameState) (map[string]any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode defaults: %w", err)
	}
	return m, nil
}
