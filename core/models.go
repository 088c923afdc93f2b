package core

import (
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that identical
// inputs always map to the same identity.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EntryID derives the stable index entry identity for a chunk.
// It hashes the source document ID together with the chunk index,
// so re-indexing the same document overwrites instead of duplicating.
func EntryID(documentID ID, chunkIndex int) ID {
	return IDFromContent(strconv.FormatUint(uint64(documentID), 10) + ":" + strconv.Itoa(chunkIndex))
}

// Document is a single source file loaded for indexing. Documents are
// ephemeral: they exist only for the duration of an indexing run.
type Document struct {
	Id       ID
	Filename string
	Path     string
	Contents string
}

// Chunk is a bounded text segment derived from a document.
// Chunks carry the provenance of the text they cover.
type Chunk struct {
	Text       string
	Index      int // strictly increasing per document
	DocumentId ID
	CharStart  int // offset into the cleaned document text
	CharEnd    int
	Metadata   map[string]string
}

// IndexEntry is the persisted form of an embedded chunk.
// Seq records insertion order and survives upserts, so search ties
// are broken in favor of earlier entries.
type IndexEntry struct {
	Id        ID
	Vector    []float32
	ChunkText string
	Metadata  map[string]string
	Seq       uint64
}

// RetrievalResult is a search hit, annotated with cosine distance.
// Lower distance means more similar.
type RetrievalResult struct {
	ChunkText string
	Metadata  map[string]string
	Distance  float32
}

// IndexStats describes the current state of the vector index.
type IndexStats struct {
	EntryCount int
	Dimensions int
}

// Source identifies a document that contributed context to an answer.
type Source struct {
	Filename string
	Distance float32
}

// Answer is the result of a query. Degraded answers echo retrieved
// context without synthesis because no generation backend was available.
type Answer struct {
	Text     string
	Backend  string
	Degraded bool
	Sources  []Source
}
