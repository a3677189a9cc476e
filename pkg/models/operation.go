package models

import (
	"fmt"
	"path/filepath"
)

// SyncDirection defines the synchronization direction
type SyncDirection string

const (
	// OneWay syncs from left to right only
	OneWay SyncDirection = "one-way"
	// TwoWay syncs in both directions
	TwoWay SyncDirection = "two-way"
)

// ConflictResolution defines how two-way sync handles a file modified on both sides
type ConflictResolution string

const (
	// KeepNewest copies the side with the later modification time
	KeepNewest ConflictResolution = "keep-newest"
	// KeepLeft always copies the left version over the right
	KeepLeft ConflictResolution = "keep-left"
	// KeepRight always copies the right version over the left
	KeepRight ConflictResolution = "keep-right"
	// Skip leaves conflicting files untouched
	Skip ConflictResolution = "skip"
)

// ParseConflictResolution validates a conflict resolution name
func ParseConflictResolution(s string) (ConflictResolution, error) {
	switch c := ConflictResolution(s); c {
	case KeepNewest, KeepLeft, KeepRight, Skip:
		return c, nil
	}
	return "", &ValidationError{
		Field:   "conflict_resolution",
		Message: fmt.Sprintf("invalid value %q (valid: keep-newest, keep-left, keep-right, skip)", s),
	}
}

// SyncMode selects one-way or two-way sync. Conflict only applies to two-way.
type SyncMode struct {
	Direction SyncDirection
	Conflict  ConflictResolution
}

// OneWayMode returns the one-way sync mode
func OneWayMode() SyncMode {
	return SyncMode{Direction: OneWay}
}

// TwoWayMode returns a two-way sync mode with the given conflict resolution
func TwoWayMode(resolution ConflictResolution) SyncMode {
	return SyncMode{Direction: TwoWay, Conflict: resolution}
}

func (m SyncMode) String() string {
	if m.Direction == TwoWay {
		return fmt.Sprintf("%s(%s)", m.Direction, m.Conflict)
	}
	return string(m.Direction)
}

// ScanInclusionMode controls how much of the right tree is enumerated
type ScanInclusionMode string

const (
	// IncludeAll scans both trees fully
	IncludeAll ScanInclusionMode = "all"
	// IncludeNone only probes left paths on the right side
	IncludeNone ScanInclusionMode = "none"
	// IncludeLeafFoldersOnly scans the right directories matching left's leaf directories
	IncludeLeafFoldersOnly ScanInclusionMode = "leaf-folders-only"
)

// ParseScanInclusionMode validates an inclusion mode name
func ParseScanInclusionMode(s string) (ScanInclusionMode, error) {
	switch m := ScanInclusionMode(s); m {
	case IncludeAll, IncludeNone, IncludeLeafFoldersOnly:
		return m, nil
	case "":
		return IncludeAll, nil
	}
	return "", &ValidationError{
		Field:   "inclusion",
		Message: fmt.Sprintf("invalid value %q (valid: all, none, leaf-folders-only)", s),
	}
}

// OperationType is the kind of planned file operation
type OperationType string

const (
	// OpCopy creates a file that is missing on the destination side
	OpCopy OperationType = "copy"
	// OpUpdate overwrites a destination file whose content differs
	OpUpdate OperationType = "update"
	// OpDelete removes a destination file
	OpDelete OperationType = "delete"
	// OpInfo carries a message and has no filesystem effect
	OpInfo OperationType = "info"
	// OpCompareError reports a comparison or planning failure through the result stream
	OpCompareError OperationType = "compareError"
)

// FileOperation is a planned action on a single relative path
type FileOperation struct {
	Type            OperationType `json:"type"`
	RelativePath    string        `json:"relativePath"`
	SourcePath      string        `json:"sourcePath,omitempty"`
	DestinationPath string        `json:"destinationPath,omitempty"`
	// Size is the expected source size in bytes, 0 when unknown
	Size   int64  `json:"size,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// NewCopy creates a copy operation between two tree roots
func NewCopy(rel, fromRoot, toRoot string) FileOperation {
	return FileOperation{
		Type:            OpCopy,
		RelativePath:    rel,
		SourcePath:      filepath.Join(fromRoot, filepath.FromSlash(rel)),
		DestinationPath: filepath.Join(toRoot, filepath.FromSlash(rel)),
	}
}

// NewUpdate creates an update operation. The destination relative path may
// differ from the source path when the pair was fuzzy matched.
func NewUpdate(rel, fromRoot, fromRel, toRoot, toRel string) FileOperation {
	return FileOperation{
		Type:            OpUpdate,
		RelativePath:    rel,
		SourcePath:      filepath.Join(fromRoot, filepath.FromSlash(fromRel)),
		DestinationPath: filepath.Join(toRoot, filepath.FromSlash(toRel)),
	}
}

// NewDelete creates a delete operation
func NewDelete(rel, root string) FileOperation {
	return FileOperation{
		Type:            OpDelete,
		RelativePath:    rel,
		DestinationPath: filepath.Join(root, filepath.FromSlash(rel)),
	}
}

// NewInfo creates an informational operation
func NewInfo(rel, reason string) FileOperation {
	return FileOperation{Type: OpInfo, RelativePath: rel, Reason: reason}
}

// NewCompareError creates the sentinel operation used to report a failure
// that happened before execution
func NewCompareError(reason string) FileOperation {
	return FileOperation{Type: OpCompareError, Reason: reason}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
