package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Limits collects the tunable resource ceilings of the evaluator. A zero
// value for any field means "use the default". Limits are normally loaded
// once at startup from a YAML file shipped alongside the interpreter, or
// taken wholesale from DefaultLimits.
type Limits struct {
	MaxStringLen int `yaml:"maxStringLen"`
	MaxStackSize int `yaml:"maxStackSize"`
	OpStackSize  int `yaml:"opStackSize"`
	MaxCallDepth int `yaml:"maxCallDepth"`
	MemorySize   int `yaml:"memorySize"`
}

// DefaultLimits returns the built-in resource ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxStringLen: MaxStringLen,
		MaxStackSize: DefaultMaxStackSize,
		OpStackSize:  DefaultOpStackSize,
		MaxCallDepth: DefaultMaxCallDepth,
		MemorySize:   DefaultMemorySize,
	}
}

// Normalize fills zero fields with their defaults and rejects negative or
// nonsensical settings.
func (l *Limits) Normalize() error {
	def := DefaultLimits()
	if l.MaxStringLen == 0 {
		l.MaxStringLen = def.MaxStringLen
	}
	if l.MaxStackSize == 0 {
		l.MaxStackSize = def.MaxStackSize
	}
	if l.OpStackSize == 0 {
		l.OpStackSize = def.OpStackSize
	}
	if l.MaxCallDepth == 0 {
		l.MaxCallDepth = def.MaxCallDepth
	}
	if l.MemorySize == 0 {
		l.MemorySize = def.MemorySize
	}
	if l.MaxStringLen < 0 || l.MaxStackSize < 1 || l.OpStackSize < 1 || l.MaxCallDepth < 1 || l.MemorySize < 0 {
		return fmt.Errorf("invalid limits: %+v", *l)
	}
	return nil
}

// LoadLimits reads a Limits document from a YAML file. Missing fields fall
// back to defaults.
func LoadLimits(path string) (Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, fmt.Errorf("reading limits file: %w", err)
	}
	var l Limits
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Limits{}, fmt.Errorf("parsing limits file %s: %w", path, err)
	}
	if err := l.Normalize(); err != nil {
		return Limits{}, err
	}
	return l, nil
}
