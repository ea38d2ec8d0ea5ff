package config

// MaxStringLen is the hard ceiling on the length of any string value.
// Creating or concatenating a string longer than this is an error.
const MaxStringLen = 65535

// StaticSlots is the number of fixed integer variable slots (A% .. Z%).
const StaticSlots = 26

// Initial size of the operand stack
const InitialStackSize = 256

// Growth increment when the operand stack needs to expand
const StackGrowthIncrement = 256

// DefaultMaxStackSize is the cap on operand stack entries. Hitting it means
// the expression is too complex for the machine, not that the program is
// wrong in kind.
const DefaultMaxStackSize = 65536

// DefaultOpStackSize is the number of deferred operator slots available to a
// single call frame's expression evaluation.
const DefaultOpStackSize = 256

// DefaultMaxCallDepth bounds recursive function calls so runaway recursion
// surfaces as an error instead of exhausting the host stack.
const DefaultMaxCallDepth = 1024

// DefaultMemorySize is the size of the flat emulated address space.
const DefaultMemorySize = 1 << 16

// True and False are the language's canonical truth values.
const (
	True  = -1
	False = 0
)
