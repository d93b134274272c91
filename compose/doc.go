// Package compose finds shared passages between a source text and the
// indexed corpus.
//
// The Matcher type manages the composition workflow:
//   - Splitting the source into overlapping fixed-size chunks
//   - Searching every chunk concurrently through the query planner
//   - Discarding chunks so common they carry no discriminative value
//   - Grouping the surviving matches by catalogue title
//   - Optionally re-analyzing the text of each matched manuscript
//
// A run tolerates partial failure: a chunk whose search fails is
// recorded on the result and skipped, never aborting the rest.
package compose
