// ABOUTME: Embedding vector serialization for BLOB storage
// ABOUTME: Vectors are stored flat as little-endian float64, validated to fixed dimension
package sqlite

import (
	"encoding/binary"
	"fmt"
	"math"
)

// vectorToBlob converts a float64 slice to a binary blob.
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob back to a float64 slice.
func blobToVector(blob []byte) []float64 {
	vector := make([]float64, len(blob)/8)
	for i := range vector {
		vector[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return vector
}

// validateVector rejects vectors that are not flat arrays of exactly dim values.
func (db *DB) validateVector(what string, vector []float64) error {
	if len(vector) != db.dim {
		return fmt.Errorf("invalid %s embedding dimension: expected %d, got %d", what, db.dim, len(vector))
	}
	return nil
}
