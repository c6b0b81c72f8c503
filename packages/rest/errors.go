package rest

import "fmt"

// InvalidURLError reports a target URL that could not be parsed as an
// absolute http(s) URL. It is raised at assignment time, never at execution
// time.
type InvalidURLError struct {
	Raw string
	Err error
}

func (e *InvalidURLError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid URL %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("invalid URL %q", e.Raw)
}

func (e *InvalidURLError) Unwrap() error { return e.Err }

// InvalidParameterError reports a parameter-add call with an empty name or a
// nil value. The offending call leaves the request untouched.
type InvalidParameterError struct {
	Name   string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid parameter: %s", e.Reason)
	}
	return fmt.Sprintf("invalid parameter %q: %s", e.Name, e.Reason)
}

// NetworkError reports that the transport layer could not complete the round
// trip: DNS resolution, connection refused, timeout, or TLS handshake
// failure. Receiving any HTTP status code, 4xx and 5xx included, is not a
// NetworkError.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DeserializationError reports response content that does not parse as the
// expected format. Content carries the raw body for diagnosis; absent or
// extra fields never produce this error, only malformed syntax does.
type DeserializationError struct {
	Content string
	Err     error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("cannot deserialize response: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }
