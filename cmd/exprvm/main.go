// Command exprvm is the excluded driver: it reads an expression, compiles
// it through the lexer/parser/codegen pipeline, and runs it on the CPU,
// printing traces and demonstration results. None of its behaviour is part
// of the core's contract.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/oisee/exprvm/pkg/codegen"
	"github.com/oisee/exprvm/pkg/cpu"
	"github.com/oisee/exprvm/pkg/fuzz"
	"github.com/oisee/exprvm/pkg/ir"
	"github.com/oisee/exprvm/pkg/mem"
	"github.com/oisee/exprvm/pkg/parser"
	"github.com/oisee/exprvm/pkg/refeval"
	"github.com/oisee/exprvm/pkg/report"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "exprvm",
		Short: "Compile and execute arithmetic expressions on the register VM",
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newCompileCmd())
	root.AddCommand(newExecCmd())
	root.AddCommand(newTraceCmd())
	root.AddCommand(newFuzzCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <expr>",
		Short: "Compile and execute an expression, printing the result and a cross-check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := parser.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			prog, _, err := codegen.Lower(tree)
			if err != nil {
				return fmt.Errorf("lower: %w", err)
			}
			c := cpu.New()
			c.Mem = mem.New()
			result, err := c.Execute(prog)
			if err != nil {
				return fmt.Errorf("execute: %w", err)
			}
			fmt.Printf("result = %d (%#x)\n", result, result)

			refVal, err := refeval.Eval(tree)
			if err != nil {
				fmt.Println("reference evaluator:", err)
				return nil
			}
			want := refeval.Mod32(refVal)
			if uint32(result) != want {
				fmt.Printf("WARNING: cross-check mismatch, reference mod 2^32 = %#x\n", want)
			} else {
				fmt.Println("cross-check ok")
			}
			return nil
		},
	}
}

func newCompileCmd() *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "compile <expr>",
		Short: "Compile an expression to an IR program and write it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := parser.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			prog, _, err := codegen.Lower(tree)
			if err != nil {
				return fmt.Errorf("lower: %w", err)
			}
			data, err := json.MarshalIndent(prog, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal program: %w", err)
			}
			if outputPath == "" {
				fmt.Println(string(data))
				return nil
			}
			return os.WriteFile(outputPath, data, 0o644)
		},
	}
	cmd.Flags().StringVar(&outputPath, "output", "", "file to write the compiled program to (default: stdout)")
	return cmd
}

func newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <program.json>",
		Short: "Execute a previously compiled IR program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read program: %w", err)
			}
			var prog ir.Program
			if err := json.Unmarshal(data, &prog); err != nil {
				return fmt.Errorf("unmarshal program: %w", err)
			}
			c := cpu.New()
			c.Mem = mem.New()
			result, err := c.Execute(&prog)
			if err != nil {
				return fmt.Errorf("execute: %w", err)
			}
			fmt.Printf("result = %d (%#x)\n", result, result)
			return nil
		},
	}
}

func newTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace <expr>",
		Short: "Compile and execute an expression, printing one diagnostic line per instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := parser.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			prog, _, err := codegen.Lower(tree)
			if err != nil {
				return fmt.Errorf("lower: %w", err)
			}
			c := cpu.New()
			c.Mem = mem.New()
			c.Logger = log.New(os.Stdout, "", 0)
			result, err := c.Execute(prog)
			if err != nil {
				return fmt.Errorf("execute: %w", err)
			}
			fmt.Printf("result = %d (%#x)\n", result, result)
			return nil
		},
	}
}

func newFuzzCmd() *cobra.Command {
	var (
		numWorkers int
		numCases   int64
		maxDepth   int
		seed       uint64
		checkpoint string
	)
	cmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Run a concurrent property-based fuzz campaign against the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			var prior report.Checkpoint
			if checkpoint != "" {
				loaded, err := loadCheckpointIfExists(checkpoint)
				if err != nil {
					return fmt.Errorf("load checkpoint: %w", err)
				}
				prior = loaded
			}

			remaining := numCases - prior.Completed
			if prior.Completed > 0 {
				fmt.Printf("resuming from checkpoint: %d cases already completed, %d findings carried over\n",
					prior.Completed, len(prior.Findings))
			}
			if remaining <= 0 {
				fmt.Printf("checkpoint already covers %d cases (target %d); nothing to do\n", prior.Completed, numCases)
				return nil
			}

			pool := fuzz.NewPool(fuzz.Config{
				NumWorkers: numWorkers,
				NumCases:   remaining,
				MaxDepth:   maxDepth,
				Seed:       seed,
				Progress: func(completed int64) {
					fmt.Fprintf(os.Stderr, "\rchecked %d/%d", prior.Completed+completed, numCases)
				},
			})
			for _, f := range prior.Findings {
				pool.Results.Add(f)
			}
			results := pool.Run()
			fmt.Fprintln(os.Stderr)

			totalCompleted := prior.Completed + pool.Checked()
			fmt.Printf("checked %d cases (%d new), %d findings\n", totalCompleted, pool.Checked(), results.Len())
			for _, f := range results.Findings() {
				fmt.Printf("  %s: %s (got=%#x want=%#x)\n", f.Property, f.Expr, f.Got, f.Want)
			}

			if checkpoint != "" {
				out, err := os.Create(checkpoint)
				if err != nil {
					return fmt.Errorf("create checkpoint: %w", err)
				}
				defer out.Close()
				return report.SaveCheckpoint(out, report.Checkpoint{
					Completed: totalCompleted,
					Findings:  results.Findings(),
				})
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&numWorkers, "workers", 4, "number of concurrent fuzz workers")
	cmd.Flags().Int64Var(&numCases, "cases", 10000, "number of expression trees to check")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 4, "maximum expression tree depth")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "PRNG seed, for reproducible campaigns")
	cmd.Flags().StringVar(&checkpoint, "checkpoint", "", "file to gob-encode campaign results to")
	return cmd
}

// loadCheckpointIfExists reads a prior fuzz checkpoint from path, returning
// a zero-value Checkpoint (Completed: 0, no Findings) if the file does not
// exist yet — the normal state for a campaign's first run.
func loadCheckpointIfExists(path string) (report.Checkpoint, error) {
	in, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return report.Checkpoint{}, nil
		}
		return report.Checkpoint{}, err
	}
	defer in.Close()
	return report.LoadCheckpoint(in)
}
