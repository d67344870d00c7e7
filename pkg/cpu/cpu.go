// Package cpu implements the program-counter-driven virtual machine: a
// fetch-decode-execute loop over an IR program, dispatching arithmetic and
// comparison opcodes to the ALU and load/store opcodes to an optionally
// attached Memory. Execution is strictly single-threaded and synchronous —
// one Execute call is one self-contained computation with no suspension
// points other than the step-count watchdog.
package cpu

import (
	"fmt"
	"log"

	"github.com/oisee/exprvm/pkg/alu"
	"github.com/oisee/exprvm/pkg/ir"
	"github.com/oisee/exprvm/pkg/mem"
)

// NumRegisters is the fixed register file size.
const NumRegisters = 32

// MaxSteps bounds the fetch-decode-execute loop: exceeding it trips
// ErrInfiniteLoopGuard rather than hanging on a program-supplied infinite
// loop.
const MaxSteps = 1_000_000

// CPU holds the register file, program counter, most-recent flags, and a
// borrowed (non-owning) reference to Memory. The zero value is usable; New
// exists for symmetry with the other packages' constructors.
type CPU struct {
	Regs  [NumRegisters]alu.Word
	PC    int
	Flags alu.Flags
	Mem   *mem.Memory

	// lastDst is the most recently written destination register, updated
	// by LoadConst, arithmetic, and Load. Cmp and Store do not update it.
	lastDst    uint8
	hasLastDst bool

	// Logger, if non-nil, receives one diagnostic line per executed
	// instruction. The format is not part of the contract; tests must not
	// depend on it.
	Logger *log.Logger
}

// New returns a freshly zeroed CPU with no memory attached. Attach mem via
// the Mem field before Execute if the program uses Load/Store.
func New() *CPU {
	return &CPU{}
}

// validRegister reports whether r addresses the register file.
func validRegister(r uint8) bool {
	return int(r) < NumRegisters
}

// Execute runs program to completion: normal termination is pc reaching
// program.Len(); any error unwinds immediately with no partial-failure
// recovery. On success it returns the Word held in the last-written
// destination register (zero if no instruction ever wrote one).
func (c *CPU) Execute(program *ir.Program) (alu.Word, error) {
	steps := 0
	for c.PC < program.Len() {
		steps++
		if steps > MaxSteps {
			return 0, fmt.Errorf("%w: pc=%d", ErrInfiniteLoopGuard, c.PC)
		}

		instr := program.At(c.PC)
		if err := c.validateRegisters(instr); err != nil {
			return 0, err
		}

		branched, err := c.dispatch(instr, program.Len())
		if err != nil {
			return 0, err
		}
		c.traceInstr(instr)
		if !branched {
			c.PC++
		}
	}
	if c.hasLastDst {
		return c.Regs[c.lastDst], nil
	}
	return 0, nil
}

// validateRegisters checks that every register index instr actually uses is
// in [0, NumRegisters). Which fields are "used" depends on the opcode, per
// the per-opcode field table.
func (c *CPU) validateRegisters(instr ir.Instr) error {
	check := func(r uint8) error {
		if !validRegister(r) {
			return fmt.Errorf("%w: %d", ErrRegisterOutOfRange, r)
		}
		return nil
	}
	switch instr.Op {
	case ir.LoadConst:
		return check(instr.Dst)
	case ir.Add, ir.Sub, ir.Mul, ir.Div, ir.Cmp:
		if err := check(instr.Dst); err != nil {
			return err
		}
		return check(instr.Src)
	case ir.Jmp, ir.Jz, ir.Jnz:
		return nil
	case ir.Load:
		if err := check(instr.Dst); err != nil {
			return err
		}
		return check(instr.Addr)
	case ir.Store:
		if err := check(instr.Src); err != nil {
			return err
		}
		return check(instr.Addr)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownOpcode, instr.Op)
	}
}

// dispatch executes instr and reports whether it wrote pc itself (a taken
// branch), in which case Execute must not also advance it.
func (c *CPU) dispatch(instr ir.Instr, programLen int) (branched bool, err error) {
	switch instr.Op {
	case ir.LoadConst:
		c.setReg(instr.Dst, instr.Imm)
		return false, nil

	case ir.Add:
		result, flags := alu.Add(c.Regs[instr.Dst], c.Regs[instr.Src])
		c.Flags = flags
		c.setReg(instr.Dst, result)
		return false, nil

	case ir.Sub:
		result, flags := alu.Sub(c.Regs[instr.Dst], c.Regs[instr.Src])
		c.Flags = flags
		c.setReg(instr.Dst, result)
		return false, nil

	case ir.Mul:
		result, flags := alu.Mul(c.Regs[instr.Dst], c.Regs[instr.Src])
		c.Flags = flags
		c.setReg(instr.Dst, result)
		return false, nil

	case ir.Div:
		if c.Regs[instr.Src] == 0 {
			return false, fmt.Errorf("%w: r%d", ErrDivisionByZero, instr.Src)
		}
		result, flags := alu.Div(c.Regs[instr.Dst], c.Regs[instr.Src])
		c.Flags = flags
		c.setReg(instr.Dst, result)
		return false, nil

	case ir.Cmp:
		_, flags := alu.Sub(c.Regs[instr.Dst], c.Regs[instr.Src])
		c.Flags = flags
		return false, nil

	case ir.Jmp:
		if err := validateBranchTarget(instr.Target, programLen); err != nil {
			return false, err
		}
		c.PC = instr.Target
		return true, nil

	case ir.Jz:
		if c.Flags.Z {
			if err := validateBranchTarget(instr.Target, programLen); err != nil {
				return false, err
			}
			c.PC = instr.Target
			return true, nil
		}
		return false, nil

	case ir.Jnz:
		if !c.Flags.Z {
			if err := validateBranchTarget(instr.Target, programLen); err != nil {
				return false, err
			}
			c.PC = instr.Target
			return true, nil
		}
		return false, nil

	case ir.Load:
		if c.Mem == nil {
			return false, fmt.Errorf("%w: Load", ErrMemoryNotAttached)
		}
		value, err := c.Mem.ReadWord(c.Regs[instr.Addr])
		if err != nil {
			return false, err
		}
		c.setReg(instr.Dst, value)
		return false, nil

	case ir.Store:
		if c.Mem == nil {
			return false, fmt.Errorf("%w: Store", ErrMemoryNotAttached)
		}
		if err := c.Mem.WriteWord(c.Regs[instr.Addr], c.Regs[instr.Src]); err != nil {
			return false, err
		}
		return false, nil

	default:
		return false, fmt.Errorf("%w: %v", ErrUnknownOpcode, instr.Op)
	}
}

func validateBranchTarget(target, programLen int) error {
	if target < 0 || target > programLen {
		return fmt.Errorf("%w: target=%d len=%d", ErrBranchOutOfRange, target, programLen)
	}
	return nil
}

func (c *CPU) setReg(r uint8, v alu.Word) {
	c.Regs[r] = v
	c.lastDst = r
	c.hasLastDst = true
}
