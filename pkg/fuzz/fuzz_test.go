package fuzz

import "testing"

// Hard-asserting zero findings only holds because generate.go guarantees
// every Div operand comes from safeTree (non-negative, within a Word):
// Add/Sub/Mul stay congruent mod 2^32 regardless of sign or magnitude, but
// Div does not, so an ordinary Sub-producing-negative feeding a Div would
// make this assertion structurally unsound rather than a flaky edge case.
func TestRunFindsNoMismatchesOnSmallDeterministicCampaign(t *testing.T) {
	pool := NewPool(Config{
		NumWorkers: 4,
		NumCases:   200,
		MaxDepth:   3,
		Seed:       12345,
	})
	results := pool.Run()
	if pool.Checked() != 200 {
		t.Errorf("Checked() = %d, want 200", pool.Checked())
	}
	for _, f := range results.Findings() {
		t.Errorf("unexpected finding: %+v", f)
	}
}

func TestRunIsDeterministicForFixedSeed(t *testing.T) {
	run := func() int64 {
		pool := NewPool(Config{NumWorkers: 2, NumCases: 100, MaxDepth: 3, Seed: 7})
		pool.Run()
		return pool.Checked()
	}
	if run() != run() {
		t.Error("Checked() count differs across runs with the same seed")
	}
}

func TestProgressCallbackInvoked(t *testing.T) {
	var lastSeen int64
	pool := NewPool(Config{
		NumWorkers: 2,
		NumCases:   50,
		MaxDepth:   2,
		Seed:       1,
		Progress:   func(completed int64) { lastSeen = completed },
	})
	pool.Run()
	if lastSeen != 50 {
		t.Errorf("final progress report = %d, want 50", lastSeen)
	}
}
