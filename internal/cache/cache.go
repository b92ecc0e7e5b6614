package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ClaimKey generates a cache key for a single claim lookup
func ClaimKey(id string) string {
	return "truthstream:v1:claim:" + id
}

// QueryKey generates a cache key for a query response. The raw query is
// hashed so arbitrary user input never becomes a key verbatim.
func QueryKey(query string) string {
	hash := sha256.Sum256([]byte(query))
	return "truthstream:v1:query:" + hex.EncodeToString(hash[:])
}
