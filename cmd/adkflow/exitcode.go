package main

import (
	"errors"

	"github.com/kadirpekel/adkflow/internal/runner"
)

// runFailedError wraps a completed RunResult whose status was not
// "completed", so the CLI can map it to a distinct process exit code
// without re-parsing the result's Status string.
type runFailedError struct {
	status runner.Status
	msg    string
}

func (e *runFailedError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return "run did not complete: " + string(e.status)
}

func exitCodeFor(err error) int {
	var rf *runFailedError
	if errors.As(err, &rf) && rf.status == runner.StatusCancelled {
		return 2
	}
	return 1
}
