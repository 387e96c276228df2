package checked

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SchemaVersion tags every persisted ledger blob.
const SchemaVersion = 1

type storedLedger struct {
	Version int           `json:"version"`
	Entries []storedEntry `json:"entries"`
}

// storedEntry is persisted as a [key, entry] pair.
type storedEntry struct {
	Key   string
	Entry Entry
}

func (e storedEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Key, e.Entry})
}

func (e *storedEntry) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &e.Key); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &e.Entry)
}

// Encode serializes a ledger with the current schema version.
func Encode(entries map[string]Entry) ([]byte, error) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stored := storedLedger{Version: SchemaVersion, Entries: make([]storedEntry, 0, len(keys))}
	for _, k := range keys {
		stored.Entries = append(stored.Entries, storedEntry{Key: k, Entry: entries[k]})
	}
	return json.Marshal(stored)
}

// Decode parses a persisted ledger. Blobs written with another schema version
// return ErrSchemaMismatch without their entries being inspected.
func Decode(data []byte) (map[string]Entry, error) {
	var header struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if header.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: got version %d, want %d", ErrSchemaMismatch, header.Version, SchemaVersion)
	}

	var stored storedLedger
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	entries := make(map[string]Entry, len(stored.Entries))
	for _, e := range stored.Entries {
		entries[e.Key] = e.Entry
	}
	return entries, nil
}
