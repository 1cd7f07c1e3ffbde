package willy

import "fmt"

// APIError represents a failure talking to the Willy Weather API. It covers
// transport errors and unexpected responses; the caller shows it as a
// non-fatal banner rather than crashing.
type APIError struct {
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("willyweather API error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("willyweather API error: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func NewAPIError(message string, err error) *APIError {
	return &APIError{
		Message: message,
		Err:     err,
	}
}

// InvalidCredentialError means the API rejected our key.
type InvalidCredentialError struct {
	StatusCode int
}

func (e *InvalidCredentialError) Error() string {
	return fmt.Sprintf("willyweather rejected API key (status %d)", e.StatusCode)
}
