package console

// ReportedError marks a failure that was already presented to the user. Callers exit
// non-zero without printing it again.
type ReportedError struct {
	Cause error
}

// Error returns the underlying failure message.
func (reportedError ReportedError) Error() string {
	if reportedError.Cause == nil {
		return ""
	}
	return reportedError.Cause.Error()
}

// Unwrap exposes the underlying failure.
func (reportedError ReportedError) Unwrap() error {
	return reportedError.Cause
}
