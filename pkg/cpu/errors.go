package cpu

import "errors"

// Error kinds surfaced by Execute. Each is a sentinel so callers can test
// with errors.Is; detection sites wrap them with fmt.Errorf("%w: ...", ...)
// to attach the offending instruction or value.
var (
	ErrRegisterOutOfRange = errors.New("cpu: register index out of range")
	ErrBranchOutOfRange   = errors.New("cpu: branch target out of range")
	ErrDivisionByZero     = errors.New("cpu: division by zero")
	ErrInfiniteLoopGuard  = errors.New("cpu: step count exceeded MAX_STEPS")
	ErrUnknownOpcode      = errors.New("cpu: unknown opcode")
	ErrMemoryNotAttached  = errors.New("cpu: memory op with no memory attached")
)
