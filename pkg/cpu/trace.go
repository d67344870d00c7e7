package cpu

import (
	"fmt"

	"github.com/oisee/exprvm/pkg/alu"
	"github.com/oisee/exprvm/pkg/ir"
)

// traceInstr emits one diagnostic line for instr on c.Logger, if set. The
// format is deliberately informal — it is not part of the contract and
// nothing in this package or its tests parses it back.
func (c *CPU) traceInstr(instr ir.Instr) {
	if c.Logger == nil {
		return
	}
	c.Logger.Print(fmt.Sprintf("pc=%-4d %-9s dst=%-2d src=%-2d imm=%#x target=%-3d addr=%-2d flags=%s",
		c.PC, instr.Op, instr.Dst, instr.Src, instr.Imm, instr.Target, instr.Addr, flagLetters(c.Flags)))
}

// flagLetters renders flags as a four-character code, one letter per
// position {Z,N,C,V}, '-' where clear.
func flagLetters(f alu.Flags) string {
	letter := func(set bool, ch byte) byte {
		if set {
			return ch
		}
		return '-'
	}
	return string([]byte{
		letter(f.Z, 'Z'),
		letter(f.N, 'N'),
		letter(f.C, 'C'),
		letter(f.V, 'V'),
	})
}
