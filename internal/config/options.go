package config

import "github.com/codalotl/align3/internal/finediff"

// Options are the comparison settings of an Engine.
type Options struct {
	IgnoreWhiteSpace bool `yaml:"ignore_white_space"` // lines differing only in white space are equal
	IgnoreNumbers    bool `yaml:"ignore_numbers"`     // digits, '-' and '.' are ignored when matching lines
	IgnoreComments   bool `yaml:"ignore_comments"`    // comments are ignored when matching lines; comment-only rows count as equal
	CaseSensitive    bool `yaml:"case_sensitive"`

	Minimal         bool `yaml:"minimal"`           // exhaustive line diff search (no too-expensive cutoff)
	SpeedLargeFiles bool `yaml:"speed_large_files"` // big-snake heuristic in the line diff
	AlignBC         bool `yaml:"align_bc"`          // run B-C reconciliation on three-way compares
	Parallel        bool `yaml:"parallel"`          // compute the pairwise line and fine diffs concurrently

	TabSize  int      `yaml:"tab_size" validate:"min=1,max=64"`
	FineDiff FineDiff `yaml:"fine_diff"`
}

// FineDiff configures the character-level diff of changed rows.
type FineDiff struct {
	Engine         finediff.Engine `yaml:"engine" validate:"omitempty,oneof=window primitive semantic"` // "" means window
	MaxSearchRange int             `yaml:"max_search_range" validate:"min=1"` // window engine only
}

// Default returns the settings used when nothing else is configured.
func Default() Options {
	return Options{
		IgnoreWhiteSpace: true,
		CaseSensitive:    true,
		Minimal:          true,
		TabSize:          8,
		FineDiff: FineDiff{
			Engine:         finediff.EngineWindow,
			MaxSearchRange: finediff.DefaultMaxSearchRange,
		},
	}
}
