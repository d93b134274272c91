// Package index provides the full-text index boundary and its embedded
// implementation.
//
// The Engine interface is the seam the query planner composes searches
// from: positional phrase and alternation-phrase queries, edit-distance
// and regex vocabulary queries, and an exclusive full-replace rebuild.
// Embedded implements it over the BadgerDB repositories, intersecting
// positional posting lists directly and keeping a ristretto cache in
// front of posting reads, since composition analysis re-reads most terms
// once per overlapping chunk.
package index
