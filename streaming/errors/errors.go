// Package errors defines the structured errors returned by the streaming
// engine and the backend client.
package errors

type (
	// Error represents a structured streaming error.
	Error struct {
		Message string
		Kind    Kind

		NestedError error

		PropertyName  string
		PropertyValue any

		Operation      string
		HTTPStatusCode int
	}

	// Kind defines the type of error being thrown.
	Kind int
)

// The following are the defined error kinds.
const (
	ConfigurationInvalid Kind = iota
	ArgumentInvalid
	StateInvalid
	PayloadInvalid
	NetworkError
	ServiceError
	Cancellation
	InternalLogicError
	UnknownError
)

// Error returns the error as a string.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the nested error, if any.
func (e *Error) Unwrap() error {
	return e.NestedError
}
