package analysis

import (
	"errors"
	"fmt"
)

// Mode is one named analysis preset. MaxModules strictly increases
// quick < guided < expert; config validation enforces it at startup.
type Mode struct {
	Name       string
	MaxModules int
	OutputMode string // brief | analytical
	Focus      string // essential | structured | comprehensive
}

// ErrUnknownMode is returned for any mode outside the configured table.
var ErrUnknownMode = errors.New("analysis: unknown mode")

// TooManyModulesError reports an explicit module list exceeding the mode bound.
type TooManyModulesError struct {
	Mode      string
	Requested int
	Max       int
}

func (e *TooManyModulesError) Error() string {
	return fmt.Sprintf("analysis: %d modules requested, mode %q allows %d", e.Requested, e.Mode, e.Max)
}

// Modes is the immutable mode table, loaded once at startup.
type Modes map[string]Mode

func (m Modes) Resolve(name string) (Mode, error) {
	mode, ok := m[name]
	if !ok {
		return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return mode, nil
}
