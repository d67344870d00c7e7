// Package fuzz is a property-based fuzz harness for the compiler/VM
// pipeline: it generates random expression trees, lowers and executes each
// on its own CPU, and cross-checks the result against the reference
// evaluator. Concurrency here is across independent CPU instances, one
// per worker goroutine — each individual cpu.Execute call remains the
// single-threaded, synchronous computation the core's contract requires.
// The pool shape (channel of tasks, WaitGroup fan-out, atomic counters,
// ticking progress reporter) is the same one a worker-pool-based search
// would use, repurposed here for property checking instead of search.
package fuzz

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oisee/exprvm/pkg/alu"
	"github.com/oisee/exprvm/pkg/ast"
	"github.com/oisee/exprvm/pkg/codegen"
	"github.com/oisee/exprvm/pkg/cpu"
	"github.com/oisee/exprvm/pkg/refeval"
	"github.com/oisee/exprvm/pkg/report"
)

// Config controls one fuzz campaign.
type Config struct {
	NumWorkers int
	NumCases   int64
	MaxDepth   int
	Seed       uint64
	// Progress, if non-nil, is called periodically with the number of
	// cases completed so far. Optional.
	Progress func(completed int64)
}

// Pool runs a fuzz campaign across NumWorkers goroutines, each generating
// and checking its own share of expression trees.
type Pool struct {
	cfg     Config
	Results *report.Table

	checked   atomic.Int64
	mismatch  atomic.Int64
	completed atomic.Int64
}

// NewPool returns a Pool ready to Run.
func NewPool(cfg Config) *Pool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 4
	}
	return &Pool{cfg: cfg, Results: report.NewTable()}
}

// Run executes the campaign to completion and returns the accumulated
// findings table. Each worker owns an independent rng stream derived from
// cfg.Seed and a fixed round-robin share of the cases, so the campaign is
// deterministic for a given seed and worker count.
func (p *Pool) Run() *report.Table {
	tasks := make([]chan int64, p.cfg.NumWorkers)
	for w := range tasks {
		tasks[w] = make(chan int64, 4)
	}

	var wg sync.WaitGroup
	for w := 0; w < p.cfg.NumWorkers; w++ {
		wg.Add(1)
		go func(workerIdx int) {
			defer wg.Done()
			gen := newGenerator(p.cfg.Seed, uint64(workerIdx), p.cfg.MaxDepth)
			for range tasks[workerIdx] {
				p.checkOne(gen)
				p.completed.Add(1)
			}
		}(w)
	}

	var tickerDone, tickerExited chan struct{}
	if p.cfg.Progress != nil {
		tickerDone = make(chan struct{})
		tickerExited = make(chan struct{})
		go func() {
			p.reportProgress(tickerDone)
			close(tickerExited)
		}()
	}

	for i := int64(0); i < p.cfg.NumCases; i++ {
		tasks[i%int64(p.cfg.NumWorkers)] <- i
	}
	for _, ch := range tasks {
		close(ch)
	}
	wg.Wait()

	if tickerDone != nil {
		close(tickerDone)
		<-tickerExited
	}
	return p.Results
}

func (p *Pool) reportProgress(done chan struct{}) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.cfg.Progress(p.completed.Load())
		case <-done:
			p.cfg.Progress(p.completed.Load())
			return
		}
	}
}

// checkOne generates one expression tree and checks it against every
// universal invariant this package can exercise at the tree/program level:
// codegen determinism, the reference-evaluator cross-check (mod 2^32), and
// division-by-zero agreement between refeval and the CPU.
func (p *Pool) checkOne(gen *generator) {
	p.checked.Add(1)
	tree := gen.tree(0)
	exprStr := describe(tree)

	refVal, refErr := refeval.Eval(tree)

	prog, resultReg, err := codegen.Lower(tree)
	if err != nil {
		p.record(report.Finding{Expr: exprStr, Property: "codegen-internal-error:" + err.Error()})
		return
	}

	prog2, resultReg2, err := codegen.Lower(tree)
	if err != nil || resultReg2 != resultReg || !slices.Equal(prog.Instrs(), prog2.Instrs()) {
		p.record(report.Finding{Expr: exprStr, Property: "codegen-nondeterministic"})
		return
	}

	c := cpu.New()
	result, execErr := c.Execute(prog)

	switch {
	case refErr != nil && execErr != nil:
		// Both sides agree this expression is undefined (division by
		// zero); nothing to cross-check.
		return
	case refErr != nil && execErr == nil:
		p.record(report.Finding{Expr: exprStr, Property: "ref-errored-cpu-did-not"})
		return
	case refErr == nil && execErr != nil:
		p.record(report.Finding{Expr: exprStr, Property: fmt.Sprintf("cpu-errored-ref-did-not: %v", execErr)})
		return
	}

	// Safe for Div too: generate.go only ever hands Div operands drawn
	// from safeTree, so every operand's true value is already in
	// [0, wordCeiling) and the unsigned/signed truncating division agree.
	want := refeval.Mod32(refVal)
	if alu.Word(result) != want {
		p.mismatch.Add(1)
		p.record(report.Finding{Expr: exprStr, Got: uint32(result), Want: want, Property: "mod32-cross-check"})
		return
	}

	if c.Regs[resultReg] != alu.Word(result) {
		p.record(report.Finding{Expr: exprStr, Property: "result-register-mismatch"})
	}
}

func (p *Pool) record(f report.Finding) {
	p.Results.Add(f)
}

// Checked returns the number of cases generated and evaluated so far.
func (p *Pool) Checked() int64 { return p.checked.Load() }

// Mismatches returns the number of cross-check failures found so far.
func (p *Pool) Mismatches() int64 { return p.mismatch.Load() }

// describe renders tree as a compact infix string, for Finding.Expr.
func describe(tree ast.Tree) string {
	switch n := tree.(type) {
	case *ast.Number:
		return fmt.Sprintf("%d", n.Value)
	case *ast.BinaryOp:
		return fmt.Sprintf("(%s%s%s)", describe(n.Left), n.Op, describe(n.Right))
	default:
		return "?"
	}
}
