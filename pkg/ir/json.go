package ir

import "encoding/json"

// programJSON is the on-disk shape of a Program: just the instruction list,
// capacity is a runtime detail and is not persisted.
type programJSON struct {
	Instrs []Instr `json:"instrs"`
}

// MarshalJSON persists the program as its instruction list, following the
// teacher's encoding/json-based result serialization (pkg/result.WriteJSON).
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(programJSON{Instrs: p.instrs})
}

// UnmarshalJSON rebuilds a Program from a previously persisted instruction
// list, growing the backing array through the normal Append path so the
// capacity-doubling contract still holds for programs loaded from disk.
func (p *Program) UnmarshalJSON(data []byte) error {
	var pj programJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	*p = *NewProgram()
	for _, instr := range pj.Instrs {
		p.Append(instr)
	}
	return nil
}
