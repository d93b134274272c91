package compose

import (
	"fmt"

	"github.com/gershuni/GenizahSearch/core"
)

// Defaults for a composition run.
const (
	DefaultChunkSize         = 5
	DefaultMaxFreq           = 10
	DefaultAppendixThreshold = 5
)

// Options configure a single composition analysis run. The zero value
// selects the defaults.
type Options struct {
	// ChunkSize is the sliding-window width in tokens.
	ChunkSize int

	// MaxFreq is the most distinct manuscripts a window may match
	// before it is discarded as too common.
	MaxFreq int

	// AppendixThreshold is the most window matches a title group may
	// accumulate before it is demoted to the appendix.
	AppendixThreshold int

	// Mode is the search mode windows run under. Exact family only.
	Mode core.Mode

	// Gap is the token gap allowed between window tokens.
	Gap int

	// Exclude names manuscripts whose hits are dropped before any
	// counting.
	Exclude map[string]struct{}

	// Recursive re-analyzes the text of each primary manuscript.
	Recursive bool

	// Depth bounds how many nested levels a recursive run may open.
	// Zero with Recursive set means one level.
	Depth int

	// Selector picks which primary manuscripts seed nested runs.
	// Nil selects all of them.
	Selector func(primary []*TitleGroup) []string
}

func (o Options) withDefaults() Options {
	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.MaxFreq == 0 {
		o.MaxFreq = DefaultMaxFreq
	}
	if o.AppendixThreshold == 0 {
		o.AppendixThreshold = DefaultAppendixThreshold
	}
	if o.Mode == 0 {
		o.Mode = core.ModeVariants
	}
	if o.Recursive && o.Depth == 0 {
		o.Depth = 1
	}
	return o
}

func (o Options) validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", core.ErrInvalidConfiguration)
	}
	if o.MaxFreq < 0 {
		return fmt.Errorf("%w: max frequency must not be negative", core.ErrInvalidConfiguration)
	}
	if o.AppendixThreshold < 0 {
		return fmt.Errorf("%w: appendix threshold must not be negative", core.ErrInvalidConfiguration)
	}
	if o.Gap < 0 {
		return fmt.Errorf("%w: gap must not be negative", core.ErrInvalidConfiguration)
	}
	if o.Depth < 0 {
		return fmt.Errorf("%w: depth must not be negative", core.ErrInvalidConfiguration)
	}
	if !o.Mode.ExactFamily() {
		return fmt.Errorf("%w: composition analysis needs an exact-family mode, got %s", core.ErrInvalidConfiguration, o.Mode)
	}
	return nil
}
