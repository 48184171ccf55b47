package reddit

import "fmt"

// APIError is an error response from the API, fatal for the operation that
// triggered it.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("received API error from Reddit (code %d): %s", e.Code, e.Message)
}

// RateLimitError signals that the API refused a request because the client
// exhausted its request window. It is recoverable: callers keep whatever was
// collected before the refusal and treat the operation as complete with
// partial data.
type RateLimitError struct {
	Used              int
	Remaining         int
	ResetAfterSeconds int
}

// WindowTotal is the request budget of the current rate-limit window.
func (e *RateLimitError) WindowTotal() int { return e.Used + e.Remaining }

// Stats summarizes the rate-limit window for the operator.
func (e *RateLimitError) Stats() string {
	return fmt.Sprintf("Used %d/%d requests (resets in %d seconds)",
		e.Used, e.WindowTotal(), e.ResetAfterSeconds)
}

func (e *RateLimitError) Error() string {
	return "rate limited by Reddit: " + e.Stats()
}

// PartialBatchError reports that one lookup chunk kept failing after all
// retries were exhausted. Results collected before the failing chunk are
// still returned and usable.
type PartialBatchError struct {
	// Fetched is the number of records collected before the failure.
	Fetched int
	Err     error
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("batch lookup abandoned after %d records: %v", e.Fetched, e.Err)
}

func (e *PartialBatchError) Unwrap() error { return e.Err }
