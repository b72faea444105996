package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint returns a deterministic hash of the normalized request,
// suitable as a cache key: two requests with identical inputs hash
// identically. encoding/json sorts map keys, so the serialization is
// canonical for these types.
func Fingerprint(req *AnalysisRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: nil request", ErrStructuralValidation)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
