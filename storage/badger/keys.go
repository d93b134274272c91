package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/gershuni/GenizahSearch/core"
)

// Key prefixes for different data types. No prefix is a prefix of another,
// so iterators never need to skip foreign keys.
const (
	fragmentPrefix  = "fragrec"
	pagePrefix      = "mspage"
	postingPrefix   = "postrec"
	manifestPrefix  = "manifest"
	manifestCurrent = "manifest:current"
)

// makeFragmentKey generates a key for a fragment by ID.
func makeFragmentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", fragmentPrefix, id))
}

// makePageKey generates a composite key for the manuscript page index.
// Format: prefix:manuscriptId:pageIndex:id
func makePageKey(manuscriptId string, pageIndex int, id core.ID) []byte {
	prefix := pagePrefix + ":" + manuscriptId + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 12 // 4 bytes for page index + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint32(buf[offset:], uint32(pageIndex))
	offset += 4
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialPageKey generates the iteration prefix for one manuscript.
// Format: prefix:manuscriptId:
func makePartialPageKey(manuscriptId string) []byte {
	return []byte(pagePrefix + ":" + manuscriptId + ":")
}

// makePostingKey generates a key for a posting list by term.
func makePostingKey(term string) []byte {
	return []byte(postingPrefix + ":" + term)
}

// postingKeyTerm recovers the term from a posting key.
func postingKeyTerm(key []byte) string {
	return string(key[len(postingPrefix)+1:])
}

// makeManifestKey generates the key of the current index manifest.
func makeManifestKey() []byte {
	return []byte(manifestCurrent)
}
