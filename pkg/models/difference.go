package models

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// NormalizeRelative converts a path relative to a tree root into the
// slash-separated form used as the identity key for comparisons.
// The root itself normalizes to ".".
func NormalizeRelative(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "/")
	p = path.Clean(p)
	if p == "" || p == "/" {
		return "."
	}
	return p
}

// DifferenceStatus tags which partition of a DirectoryDifference a path
// belongs to
type DifferenceStatus string

const (
	// StatusOnlyInLeft marks a path present only in the left tree
	StatusOnlyInLeft DifferenceStatus = "onlyInLeft"
	// StatusOnlyInRight marks a path present only in the right tree
	StatusOnlyInRight DifferenceStatus = "onlyInRight"
	// StatusModified marks a path present on both sides with different content
	StatusModified DifferenceStatus = "modified"
	// StatusCommon marks a path present on both sides with equal content
	StatusCommon DifferenceStatus = "common"
)

// DirectoryDifference is the immutable result of comparing two trees.
// Every path appears in at most one of the four partitions.
type DirectoryDifference struct {
	onlyInLeft  mapset.Set[string]
	onlyInRight mapset.Set[string]
	modified    mapset.Set[string]
	common      mapset.Set[string]

	// matches maps a left path to the differently-named right path it was
	// fuzzy-paired with
	matches map[string]string
}

// NewDirectoryDifference builds a DirectoryDifference from the four
// partitions. It fails if a path is claimed by more than one partition.
func NewDirectoryDifference(onlyInLeft, onlyInRight, modified, common []string, matches map[string]string) (*DirectoryDifference, error) {
	d := &DirectoryDifference{
		onlyInLeft:  mapset.NewThreadUnsafeSet[string](),
		onlyInRight: mapset.NewThreadUnsafeSet[string](),
		modified:    mapset.NewThreadUnsafeSet[string](),
		common:      mapset.NewThreadUnsafeSet[string](),
		matches:     make(map[string]string, len(matches)),
	}

	seen := make(map[string]DifferenceStatus)
	add := func(set mapset.Set[string], status DifferenceStatus, paths []string) error {
		for _, p := range paths {
			if prev, ok := seen[p]; ok && prev != status {
				return fmt.Errorf("path %q listed as both %s and %s", p, prev, status)
			}
			seen[p] = status
			set.Add(p)
		}
		return nil
	}

	if err := add(d.onlyInLeft, StatusOnlyInLeft, onlyInLeft); err != nil {
		return nil, err
	}
	if err := add(d.onlyInRight, StatusOnlyInRight, onlyInRight); err != nil {
		return nil, err
	}
	if err := add(d.modified, StatusModified, modified); err != nil {
		return nil, err
	}
	if err := add(d.common, StatusCommon, common); err != nil {
		return nil, err
	}

	for left, right := range matches {
		d.matches[left] = right
	}

	return d, nil
}

// EmptyDifference returns a difference with all partitions empty
func EmptyDifference() *DirectoryDifference {
	d, _ := NewDirectoryDifference(nil, nil, nil, nil, nil)
	return d
}

// OnlyInLeft returns the sorted paths present only in the left tree
func (d *DirectoryDifference) OnlyInLeft() []string { return sortedSlice(d.onlyInLeft) }

// OnlyInRight returns the sorted paths present only in the right tree
func (d *DirectoryDifference) OnlyInRight() []string { return sortedSlice(d.onlyInRight) }

// Modified returns the sorted paths whose content differs
func (d *DirectoryDifference) Modified() []string { return sortedSlice(d.modified) }

// Common returns the sorted paths whose content is equal
func (d *DirectoryDifference) Common() []string { return sortedSlice(d.common) }

// Matches returns a copy of the fuzzy left→right pairings
func (d *DirectoryDifference) Matches() map[string]string {
	out := make(map[string]string, len(d.matches))
	for k, v := range d.matches {
		out[k] = v
	}
	return out
}

// MatchFor returns the right-side path paired with a left path.
// Paths without a fuzzy partner map to themselves.
func (d *DirectoryDifference) MatchFor(left string) string {
	if right, ok := d.matches[left]; ok {
		return right
	}
	return left
}

// HasDifferences reports whether anything differs between the two trees
func (d *DirectoryDifference) HasDifferences() bool {
	return d.onlyInLeft.Cardinality() > 0 ||
		d.onlyInRight.Cardinality() > 0 ||
		d.modified.Cardinality() > 0
}

// Status returns the partition a path belongs to
func (d *DirectoryDifference) Status(p string) (DifferenceStatus, bool) {
	switch {
	case d.onlyInLeft.Contains(p):
		return StatusOnlyInLeft, true
	case d.onlyInRight.Contains(p):
		return StatusOnlyInRight, true
	case d.modified.Contains(p):
		return StatusModified, true
	case d.common.Contains(p):
		return StatusCommon, true
	}
	return "", false
}

// Statuses returns every path with its partition tag
func (d *DirectoryDifference) Statuses() map[string]DifferenceStatus {
	out := make(map[string]DifferenceStatus, d.Total())
	tag := func(set mapset.Set[string], status DifferenceStatus) {
		for p := range set.Iter() {
			out[p] = status
		}
	}
	tag(d.onlyInLeft, StatusOnlyInLeft)
	tag(d.onlyInRight, StatusOnlyInRight)
	tag(d.modified, StatusModified)
	tag(d.common, StatusCommon)
	return out
}

// Total returns the number of paths across all partitions
func (d *DirectoryDifference) Total() int {
	return d.onlyInLeft.Cardinality() + d.onlyInRight.Cardinality() +
		d.modified.Cardinality() + d.common.Cardinality()
}

// Equal reports whether two differences hold the same partitions and matches
func (d *DirectoryDifference) Equal(other *DirectoryDifference) bool {
	if other == nil {
		return false
	}
	if !d.onlyInLeft.Equal(other.onlyInLeft) ||
		!d.onlyInRight.Equal(other.onlyInRight) ||
		!d.modified.Equal(other.modified) ||
		!d.common.Equal(other.common) {
		return false
	}
	if len(d.matches) != len(other.matches) {
		return false
	}
	for k, v := range d.matches {
		if other.matches[k] != v {
			return false
		}
	}
	return true
}

// Summary returns the informational counts of the difference
func (d *DirectoryDifference) Summary() DifferenceSummary {
	return DifferenceSummary{
		OnlyInLeft:  d.onlyInLeft.Cardinality(),
		OnlyInRight: d.onlyInRight.Cardinality(),
		Modified:    d.modified.Cardinality(),
		Common:      d.common.Cardinality(),
		Identical:   !d.HasDifferences(),
	}
}

// DifferenceSummary holds the derived counts of a DirectoryDifference
type DifferenceSummary struct {
	OnlyInLeft  int  `json:"onlyInLeft"`
	OnlyInRight int  `json:"onlyInRight"`
	Modified    int  `json:"modified"`
	Common      int  `json:"common"`
	Identical   bool `json:"identical"`
}

func sortedSlice(set mapset.Set[string]) []string {
	out := set.ToSlice()
	sort.Strings(out)
	return out
}
