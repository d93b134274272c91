package metadata

import "strings"

// ExclusionSet collects manuscripts to leave out of searches and
// composition runs. Entries may be system ids or shelfmarks; shelfmarks
// are folded to canonical ids through the resolver.
//
// The set is not safe for concurrent mutation; running analyses take a
// Snapshot instead of reading the live set.
type ExclusionSet struct {
	resolver   *Resolver
	ids        map[string]struct{}
	unresolved []string
}

// NewExclusionSet creates an empty exclusion set over the resolver.
func NewExclusionSet(resolver *Resolver) (*ExclusionSet, error) {
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	return &ExclusionSet{
		resolver: resolver,
		ids:      make(map[string]struct{}),
	}, nil
}

// Add records one entry. A digits-only entry is taken as a system id;
// anything else is resolved as a shelfmark. Reports whether the entry
// was resolved; entries that resolve to nothing are kept aside and
// listed by Unresolved.
func (x *ExclusionSet) Add(entry string) bool {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return false
	}

	compact := strings.Join(strings.Fields(entry), "")
	if digits := digitsOnly(compact); digits != "" && digits == compact {
		x.ids[compact] = struct{}{}
		return true
	}

	if id, ok := x.resolver.ResolveByShelfmark(entry); ok {
		x.ids[id] = struct{}{}
		return true
	}
	x.unresolved = append(x.unresolved, entry)
	return false
}

// AddAll records each entry in turn.
func (x *ExclusionSet) AddAll(entries ...string) {
	for _, entry := range entries {
		x.Add(entry)
	}
}

// Contains reports whether the manuscript id is excluded.
func (x *ExclusionSet) Contains(manuscriptId string) bool {
	_, ok := x.ids[manuscriptId]
	return ok
}

// Len returns the number of excluded manuscript ids.
func (x *ExclusionSet) Len() int {
	return len(x.ids)
}

// Snapshot copies the excluded ids for one analysis run, so a running
// analysis never races user edits to the set.
func (x *ExclusionSet) Snapshot() map[string]struct{} {
	snapshot := make(map[string]struct{}, len(x.ids))
	for id := range x.ids {
		snapshot[id] = struct{}{}
	}
	return snapshot
}

// Unresolved lists entries that could not be mapped to a manuscript id.
func (x *ExclusionSet) Unresolved() []string {
	return append([]string(nil), x.unresolved...)
}
