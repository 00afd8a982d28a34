package cli

import "fmt"

// exitError carries a specific process exit code through cobra's
// error-returning RunE without cobra printing a spurious "Error: ..."
// line for what is really just a soft, expected status.
type exitError struct {
	code int
}

func newExitError(code int) error {
	return &exitError{code: code}
}

func (e *exitError) Error() string {
	return fmt.Sprintf("zeus: exiting with status %d", e.code)
}

// exitCodeOf extracts the process exit code for err: 0 for nil, the
// carried code for an *exitError, and 1 for anything else (a config
// error or other unexpected failure).
func exitCodeOf(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return ExitInterrupted
}
