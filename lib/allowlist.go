package lib

import (
	"sort"

	"go.dedis.ch/returncodes"
)

// AllowList is a lexicographically sorted set of base64 digests.
type AllowList struct {
	entries []string
}

// NewAllowList sorts a copy of entries. Duplicates are rejected, as a
// digest identifies one voting option of one voter.
func NewAllowList(entries []string) (*AllowList, error) {
	sorted := append([]string(nil), entries...)
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, returncodes.Validationf("allow list contains %s twice", sorted[i])
		}
	}
	return &AllowList{entries: sorted}, nil
}

// Contains returns true if entry is in the list.
func (al *AllowList) Contains(entry string) bool {
	i := sort.SearchStrings(al.entries, entry)
	return i < len(al.entries) && al.entries[i] == entry
}

// Entries returns the sorted entries.
func (al *AllowList) Entries() []string {
	return append([]string(nil), al.entries...)
}

// Len returns the number of entries.
func (al *AllowList) Len() int {
	return len(al.entries)
}

// MergeAllowLists returns the union of the lists. It is used to gather the
// allow list of a card set computed chunk by chunk.
func MergeAllowLists(lists ...*AllowList) (*AllowList, error) {
	var all []string
	for _, l := range lists {
		all = append(all, l.entries...)
	}
	return NewAllowList(all)
}
