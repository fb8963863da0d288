package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// DatasetFingerprint identifies a dataset shape for report replayability
type DatasetFingerprint Hash

// String returns the string representation
func (f DatasetFingerprint) String() string { return Hash(f).String() }

// ComputeDatasetFingerprint hashes the header list and row count so two
// reports over the same dataset shape can be matched without re-reading it.
func ComputeDatasetFingerprint(headers []string, rowCount int64) DatasetFingerprint {
	var data strings.Builder
	for _, h := range headers {
		data.WriteString(h)
		data.WriteString("\x1f")
	}
	data.WriteString(fmt.Sprintf("%d", rowCount))
	return DatasetFingerprint(NewHash([]byte(data.String())))
}
