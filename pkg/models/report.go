package models

// OperationResult is the outcome of one executed operation
type OperationResult struct {
	Operation        FileOperation
	BytesTransferred int64
	Err              error
}

// Success creates a successful result
func Success(op FileOperation, bytes int64) OperationResult {
	return OperationResult{Operation: op, BytesTransferred: bytes}
}

// Failure creates a failed result
func Failure(op FileOperation, err error) OperationResult {
	return OperationResult{Operation: op, Err: err}
}

// Succeeded reports whether the operation completed
func (r OperationResult) Succeeded() bool {
	return r.Err == nil
}

// Summary tallies a stream of operation results
type Summary struct {
	Succeeded        int
	Failed           int
	Skipped          int // info operations, which carry no filesystem effect
	BytesTransferred int64

	// SetupError is set when the stream carried a compareError failure
	SetupError error

	Failures []OperationResult
}

// Add records one result
func (s *Summary) Add(r OperationResult) {
	if !r.Succeeded() {
		s.Failed++
		s.Failures = append(s.Failures, r)
		if r.Operation.Type == OpCompareError && s.SetupError == nil {
			s.SetupError = r.Err
		}
		return
	}
	if r.Operation.Type == OpInfo {
		s.Skipped++
		return
	}
	s.Succeeded++
	s.BytesTransferred += r.BytesTransferred
}

// Total returns the number of results seen
func (s *Summary) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// ExitCode returns the process exit code for this summary
func (s *Summary) ExitCode() int {
	switch {
	case s.SetupError != nil:
		return ExitSetupError
	case s.Failed > 0:
		return ExitDifferences
	default:
		return ExitOK
	}
}
