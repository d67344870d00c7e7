// Package report collects the results of a fuzz campaign (pkg/fuzz) and
// persists them: an in-memory, concurrency-safe Table accumulates Findings
// as workers discover them, and a Checkpoint snapshots progress so a long
// campaign can resume.
package report

import "sync"

// Finding records one property check that failed during a fuzz campaign:
// the expression, the CPU's result, the reference evaluator's expected
// value, and which property was violated.
type Finding struct {
	Expr     string `json:"expr"`
	Got      uint32 `json:"got"`
	Want     uint32 `json:"want"`
	Property string `json:"property"`
}

// Table accumulates Findings from concurrently running fuzz workers.
type Table struct {
	mu       sync.Mutex
	findings []Finding
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{}
}

// Add records a Finding. Safe for concurrent use.
func (t *Table) Add(f Finding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.findings = append(t.findings, f)
}

// Findings returns a copy of all recorded findings, in the order they were
// added.
func (t *Table) Findings() []Finding {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Finding, len(t.findings))
	copy(out, t.findings)
	return out
}

// Len returns the number of recorded findings.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.findings)
}
