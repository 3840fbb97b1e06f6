package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// TopicsHash is the SHA-256 (hex) of the canonical JSON form of a topic
// configuration. Object keys are emitted sorted and insignificant
// whitespace dropped, so two documents that differ only in layout or key
// order hash the same. A nil configuration hashes as JSON null.
func TopicsHash(topics any) (string, error) {
	raw, err := json.Marshal(topics)
	if err != nil {
		return "", fmt.Errorf("encode topics: %w", err)
	}
	// Round-trip through a generic value: encoding/json sorts map keys,
	// which struct and ordered inputs would otherwise not get.
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("decode topics: %w", err)
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("canonicalize topics: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
