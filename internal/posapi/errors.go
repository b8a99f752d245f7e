package posapi

import (
	"errors"
	"fmt"
)

// ErrTokenExpired is returned before an authenticated call when the
// stored access token is already past its expiry.
var ErrTokenExpired = errors.New("access token has expired")

// FetchError reports a failed read from the POS API (catalog, listings).
type FetchError struct {
	Endpoint string
	Status   int // 0 when the request never reached the server
	Message  string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d: %s", e.Endpoint, e.Status, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// SubmissionError carries the server's rejection of a transaction,
// message verbatim. The cart is left as it was; the user corrects and
// resubmits.
type SubmissionError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submit transaction: %v", e.Err)
	}
	return fmt.Sprintf("submit transaction: status %d: %s", e.Status, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
