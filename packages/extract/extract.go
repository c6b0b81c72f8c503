// Package extract pulls values out of completed responses by JSON path,
// header name, status or timing.
package extract

import (
	"github.com/tidwall/gjson"

	"github.com/restcall-dev/restcall/packages/rest"
)

// Extractor reads values from one response. The body is parsed once.
type Extractor struct {
	response *rest.Response
	bodyJSON gjson.Result
}

func New(resp *rest.Response) *Extractor {
	e := &Extractor{response: resp}
	if resp.IsJSON() {
		e.bodyJSON = gjson.ParseBytes(resp.RawBody)
	}
	return e
}

// Body returns the value at the given gjson path. An empty path returns the
// whole body: the parsed value for JSON responses, the raw text otherwise.
func (e *Extractor) Body(path string) (any, bool) {
	if !e.bodyJSON.Exists() {
		if path == "" {
			return e.response.Content, true
		}
		return nil, false
	}
	if path == "" {
		return e.bodyJSON.Value(), true
	}
	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// HeaderValue returns the named response header.
func (e *Extractor) HeaderValue(name string) (string, bool) {
	value := e.response.Header(name)
	return value, value != ""
}

// Status returns the response status code.
func (e *Extractor) Status() int {
	return e.response.StatusCode
}

// DurationMs returns the measured round-trip time in milliseconds.
func (e *Extractor) DurationMs() int64 {
	return e.response.DurationMs()
}

// All resolves a set of named body paths against resp. Paths that do not
// resolve are omitted from the result.
func All(resp *rest.Response, paths map[string]string) map[string]any {
	e := New(resp)
	results := make(map[string]any)
	for name, path := range paths {
		if value, ok := e.Body(path); ok {
			results[name] = value
		}
	}
	return results
}
