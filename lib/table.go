package lib

import (
	"sort"

	"go.dedis.ch/returncodes"
)

// TableEntry maps the base64 hash of a long return code to the base64
// encryption of its short code.
type TableEntry struct {
	Key   string
	Value string
}

// MappingTable is the Return Codes Mapping Table, sorted by key.
type MappingTable struct {
	entries []TableEntry
}

// NewMappingTable sorts a copy of entries by key and rejects duplicate
// keys.
func NewMappingTable(entries []TableEntry) (*MappingTable, error) {
	sorted := append([]TableEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Key == sorted[i-1].Key {
			return nil, returncodes.Validationf("mapping table contains key %s twice", sorted[i].Key)
		}
	}
	return &MappingTable{entries: sorted}, nil
}

// Lookup returns the value stored under key.
func (t *MappingTable) Lookup(key string) (string, bool) {
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Key >= key
	})
	if i < len(t.entries) && t.entries[i].Key == key {
		return t.entries[i].Value, true
	}
	return "", false
}

// Entries returns the sorted entries.
func (t *MappingTable) Entries() []TableEntry {
	return append([]TableEntry(nil), t.entries...)
}

// Len returns the number of entries.
func (t *MappingTable) Len() int {
	return len(t.entries)
}
