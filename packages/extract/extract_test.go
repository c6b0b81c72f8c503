package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restcall-dev/restcall/packages/rest"
)

func jsonResponse(content string) *rest.Response {
	return &rest.Response{
		StatusCode:  200,
		RawBody:     []byte(content),
		Content:     content,
		ContentType: "application/json",
		Headers:     []rest.Header{{Name: "X-Request-Id", Value: "req-1"}},
	}
}

func TestExtractor_Body(t *testing.T) {
	e := New(jsonResponse(`{"user":{"name":"a","roles":["admin","dev"]}}`))

	tests := []struct {
		name  string
		path  string
		want  any
		found bool
	}{
		{"nested field", "user.name", "a", true},
		{"array index", "user.roles.1", "dev", true},
		{"array length", "user.roles.#", float64(2), true},
		{"missing", "user.age", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Body(tt.path)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractor_WholeBody(t *testing.T) {
	e := New(jsonResponse(`{"n":1}`))
	value, ok := e.Body("")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"n": float64(1)}, value)
}

func TestExtractor_NonJSONBody(t *testing.T) {
	resp := &rest.Response{
		RawBody:     []byte("plain text"),
		Content:     "plain text",
		ContentType: "text/plain",
	}
	e := New(resp)

	value, ok := e.Body("")
	require.True(t, ok)
	assert.Equal(t, "plain text", value)

	_, ok = e.Body("any.path")
	assert.False(t, ok)
}

func TestExtractor_HeaderAndStatus(t *testing.T) {
	e := New(jsonResponse(`{}`))

	value, ok := e.HeaderValue("x-request-id")
	require.True(t, ok)
	assert.Equal(t, "req-1", value)

	_, ok = e.HeaderValue("X-Missing")
	assert.False(t, ok)

	assert.Equal(t, 200, e.Status())
}

func TestAll(t *testing.T) {
	resp := jsonResponse(`{"id":7,"name":"a"}`)
	results := All(resp, map[string]string{
		"id":      "id",
		"name":    "name",
		"missing": "nope",
	})

	assert.Equal(t, map[string]any{"id": float64(7), "name": "a"}, results)
}
