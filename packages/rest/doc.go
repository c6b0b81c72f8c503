// Package rest provides the request/response core of restcall: a fluent,
// mutable request descriptor, an executor that performs exactly one network
// round trip per call, and a tolerant deserializer for response bodies.
//
// A Request accumulates state through chained mutators without performing any
// I/O. The Executor turns a Request into a Response, measuring elapsed time
// and classifying transport failures separately from HTTP error statuses:
// a 404 or 500 is a successful execution at this layer, while DNS failures,
// refused connections, timeouts and TLS handshake errors surface as
// *NetworkError. Deserialize converts response bodies into caller-supplied
// structs, tolerating absent, extra and null fields.
package rest
