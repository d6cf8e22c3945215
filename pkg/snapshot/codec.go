package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"archive-session-store/internal/entity"
)

const (
	// Format tags the envelope so foreign blobs are rejected instead of
	// silently misread.
	Format = "archive-analyzer/snapshot"

	// Version of the envelope layout. Bump on incompatible artifact changes.
	Version = 1
)

// ErrCorruptSnapshot marks a stored blob that exists but cannot be decoded.
// Distinct from "not found" so operators can tell corruption from expiry.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

type envelope struct {
	Format   string           `json:"format"`
	Version  int              `json:"version"`
	Artifact *entity.Artifact `json:"artifact"`
}

// Encode serializes an artifact into a versioned, self-describing blob.
func Encode(artifact *entity.Artifact) ([]byte, error) {
	if artifact == nil {
		return nil, errors.New("nil artifact")
	}

	data, err := json.Marshal(envelope{
		Format:   Format,
		Version:  Version,
		Artifact: artifact,
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	return data, nil
}

// Decode restores an artifact from a blob produced by Encode. Any deviation
// (malformed JSON, foreign format tag, unsupported version, missing payload)
// reports ErrCorruptSnapshot rather than a raw decoding error.
func Decode(data []byte) (*entity.Artifact, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	if env.Format != Format {
		return nil, fmt.Errorf("%w: unexpected format %q", ErrCorruptSnapshot, env.Format)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, env.Version)
	}
	if env.Artifact == nil {
		return nil, fmt.Errorf("%w: missing artifact payload", ErrCorruptSnapshot)
	}

	return env.Artifact, nil
}
