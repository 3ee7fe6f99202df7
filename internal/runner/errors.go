// Package runner implements the Workflow Runner (spec 4.13): end-to-end
// orchestration of compile, pre-agent custom nodes, the live agent tree,
// user-input suspend/resume, post-agent custom nodes, and output files.
package runner

import (
	"strings"
	"time"
)

const defaultToolTimeout = 30 * time.Second

// ExecutionError wraps a custom-node or shell failure surfaced by the
// runner outside the compile stages (spec section 7).
type ExecutionError struct {
	Stage string
	Msg   string
	Err   error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return e.Stage + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Stage + ": " + e.Msg
}
func (e *ExecutionError) Unwrap() error { return e.Err }

// PermissionError reports a shell-validator rejection under fail_fast.
type PermissionError struct {
	Command string
	Reason  string
}

func (e *PermissionError) Error() string {
	return "command " + e.Command + " not permitted: " + e.Reason
}

// CancellationError marks a run that was cancelled rather than failed.
type CancellationError struct {
	RunID string
}

func (e *CancellationError) Error() string { return "run " + e.RunID + " was cancelled" }

// CredentialError reports a missing or invalid API credential, recognized
// by pattern match in FriendlyError.
type CredentialError struct {
	Provider string
	Err      error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return "credential error (" + e.Provider + "): " + e.Err.Error()
	}
	return "credential error (" + e.Provider + ")"
}
func (e *CredentialError) Unwrap() error { return e.Err }

var credentialPhrases = []string{
	"api key", "apikey", "api_key",
	"unauthorized", "401",
	"defaultcredentialserror", "default credentials",
	"permission denied", "invalid_api_key",
}

// FriendlyError prepends actionable guidance to errors that look
// credential-related (missing API key, ADC failures, 401s), preserving the
// original message, per spec section 7's "credential-error filter".
func FriendlyError(err error) error {
	if err == nil {
		return nil
	}
	lower := strings.ToLower(err.Error())
	for _, phrase := range credentialPhrases {
		if strings.Contains(lower, phrase) {
			return &CredentialError{Err: err}
		}
	}
	return err
}
