package badger

import (
	"encoding/binary"

	"github.com/poiesic/oraculum/core"
)

// Key prefixes for different data types
const (
	indexEntryPrefix = "vecent"
	indexDimsKey     = "vecdims"
	indexEntrySeq    = "vecentseq"
)

// makeEntryKey generates a key for an index entry by ID.
// Format: prefix:id with the ID in BigEndian so keys have a fixed size.
func makeEntryKey(id core.ID) []byte {
	prefix := indexEntryPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// entryKeyPrefix returns the prefix shared by all entry keys.
func entryKeyPrefix() []byte {
	return []byte(indexEntryPrefix + ":")
}

// dimsKey returns the key pinning the index vector dimensionality.
func dimsKey() []byte {
	return []byte(indexDimsKey)
}
