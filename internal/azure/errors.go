package azure

import (
	"errors"
	"fmt"
	"strings"
)

// AuthError means the Azure CLI reported that no account is logged in.
// It is fatal to a run.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "azure cli is not authenticated, run 'az login'"
	}
	return fmt.Sprintf("azure cli is not authenticated: %s", e.Detail)
}

// NotInstalledError means the Azure CLI binary could not be found.
type NotInstalledError struct {
	Binary string
}

func (e *NotInstalledError) Error() string {
	return fmt.Sprintf("azure cli binary %q not found, is the Azure CLI installed?", e.Binary)
}

// SubscriptionError wraps a failure scoped to a single subscription.
// The orchestrator reports it as a warning and continues the run.
type SubscriptionError struct {
	SubscriptionID string
	Err            error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription %s: %v", e.SubscriptionID, e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

// ParseError means the Azure CLI produced output this tool could not decode.
type ParseError struct {
	Command string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed output from 'az %s': %v", e.Command, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is, or wraps, an AuthError
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// authMarkers are stderr fragments the Azure CLI emits when the session
// is missing or expired
var authMarkers = []string{
	"az login",
	"please run 'az login'",
	"aadsts",
	"not logged in",
	"expiredauthenticationtoken",
	"authentication needed",
	"refresh token has expired",
}

// classifyStderr turns a failed az invocation into a bridge-level error,
// distinguishing "not authenticated" from generic failure
func classifyStderr(command, stderr string, err error) error {
	lowered := strings.ToLower(stderr)
	for _, marker := range authMarkers {
		if strings.Contains(lowered, marker) {
			return &AuthError{Detail: firstLine(stderr)}
		}
	}
	if detail := firstLine(stderr); detail != "" {
		return fmt.Errorf("'az %s' failed: %w: %s", command, err, detail)
	}
	return fmt.Errorf("'az %s' failed: %w", command, err)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
