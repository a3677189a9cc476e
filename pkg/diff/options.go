package diff

import (
	"fmt"

	"github.com/sdejongh/treesync/pkg/ignore"
	"github.com/sdejongh/treesync/pkg/models"
)

// ExactMatch is the precision at which fuzzy matching is disabled
const ExactMatch = 1.0

// Options configures one comparison
type Options struct {
	Left      string
	Right     string
	Recursive bool
	Inclusion models.ScanInclusionMode
	Ignore    *ignore.Matcher
	// MatchPrecision is the minimum filename similarity for fuzzy pairing.
	// ExactMatch turns fuzzy pairing off.
	MatchPrecision float64
	// SizeTolerance, when positive, decides fuzzy pairs by relative size
	// difference instead of content
	SizeTolerance float64
}

// Fuzzy reports whether fuzzy pairing runs
func (o Options) Fuzzy() bool {
	return o.MatchPrecision < ExactMatch
}

// Validate checks option ranges
func (o Options) Validate() error {
	if o.MatchPrecision < 0 || o.MatchPrecision > 1 {
		return &models.ValidationError{Field: "match_precision", Message: fmt.Sprintf("must be between 0 and 1, got %v", o.MatchPrecision)}
	}
	if o.SizeTolerance < 0 || o.SizeTolerance > 1 {
		return &models.ValidationError{Field: "size_tolerance", Message: fmt.Sprintf("must be between 0 and 1, got %v", o.SizeTolerance)}
	}
	if _, err := models.ParseScanInclusionMode(string(o.Inclusion)); err != nil {
		return err
	}
	return nil
}
