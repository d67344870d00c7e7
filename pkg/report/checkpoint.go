package report

import (
	"encoding/gob"
	"fmt"
	"io"
)

func init() {
	gob.Register(Finding{})
}

// Checkpoint is a resumable snapshot of a fuzz campaign: how many cases
// have run and every Finding seen so far, for a long-running campaign that
// may be interrupted and restarted.
type Checkpoint struct {
	Completed int64
	Findings  []Finding
}

// SaveCheckpoint gob-encodes c to w.
func SaveCheckpoint(w io.Writer, c Checkpoint) error {
	if err := gob.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("report: save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint gob-decodes a Checkpoint from r.
func LoadCheckpoint(r io.Reader) (Checkpoint, error) {
	var c Checkpoint
	if err := gob.NewDecoder(r).Decode(&c); err != nil {
		return Checkpoint{}, fmt.Errorf("report: load checkpoint: %w", err)
	}
	return c, nil
}
