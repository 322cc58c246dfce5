package gemini

import "fmt"

// TransientError marks a retryable failure: the API rate-limited the request
// or the transport hiccuped. The client retries these internally; callers only
// ever see one after the retry budget is spent, wrapped in a PermanentError.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient gemini failure: %v", e.Cause)
}

func (e *TransientError) Unwrap() error { return e.Cause }

// PermanentError marks a failure no further retry can fix: exhausted retries,
// a malformed response body, or an unresolvable endpoint.
type PermanentError struct {
	Cause error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent gemini failure: %v", e.Cause)
}

func (e *PermanentError) Unwrap() error { return e.Cause }
