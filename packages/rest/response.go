package rest

import (
	"net/url"
	"strings"
	"time"
)

// Header is one response header line. Duplicate names are preserved as
// separate entries.
type Header struct {
	Name  string
	Value string
}

// Response is an immutable snapshot of one completed call. It is owned by
// the Request that produced it and replaced wholesale on each execution.
type Response struct {
	StatusCode int
	Status     string

	// Headers holds the response headers sorted by canonical name, with
	// duplicate values kept in received order.
	Headers []Header

	// RawBody is the response body as received; Content is its string
	// view, interpreted as UTF-8.
	RawBody []byte
	Content string

	ContentType string

	// ResponseURI is the final URL after any redirects.
	ResponseURI *url.URL

	Duration time.Duration
}

// Header returns the first value of the named header, matching
// case-insensitively, or "" when absent.
func (r *Response) Header(name string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// Values returns every value of the named header in order.
func (r *Response) Values(name string) []string {
	var values []string
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			values = append(values, h.Value)
		}
	}
	return values
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

// IsJSON reports whether the declared content type is JSON.
func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType, "application/json") ||
		strings.Contains(r.ContentType, "+json")
}

// IsXML reports whether the declared content type is XML.
func (r *Response) IsXML() bool {
	return strings.Contains(r.ContentType, "/xml") ||
		strings.Contains(r.ContentType, "+xml")
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
