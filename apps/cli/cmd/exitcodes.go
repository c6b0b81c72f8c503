package cmd

// Exit codes for the restcall CLI
const (
	// ExitSuccess indicates the call completed
	ExitSuccess = 0

	// ExitHTTPFailure indicates --fail was set and the status was 4xx/5xx,
	// or schema validation failed
	ExitHTTPFailure = 1

	// ExitBuildError indicates the request could not be constructed
	ExitBuildError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates the transport could not complete the call
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
