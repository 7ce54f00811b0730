// Package export reads and writes session export envelopes. Trade data
// and challenge configuration must survive an export/import round trip
// structurally unchanged; only the export metadata is stamped on the
// way out.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/propdeck/challenge-backend/pkg/types"
)

// Version is the export format version.
const Version = "1.0"

// Source identifies this backend in export metadata.
const Source = "challenge-backend"

// Write serializes an envelope, stamping metadata defaults for any
// field the caller left empty. TradeData and ChallengeConfig are
// written exactly as provided.
func Write(w io.Writer, env *types.ExportEnvelope) error {
	out := *env
	if out.ExportMetadata.ExportDate.IsZero() {
		out.ExportMetadata.ExportDate = time.Now()
	}
	if out.ExportMetadata.Version == "" {
		out.ExportMetadata.Version = Version
	}
	if out.ExportMetadata.Source == "" {
		out.ExportMetadata.Source = Source
	}
	if out.ExportMetadata.ExportID == "" {
		out.ExportMetadata.ExportID = uuid.New().String()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// Read deserializes an envelope.
func Read(r io.Reader) (*types.ExportEnvelope, error) {
	var env types.ExportEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return &env, nil
}
