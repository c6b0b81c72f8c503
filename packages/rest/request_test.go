package rest

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest_URLRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"plain host", "http://example.com"},
		{"with path", "https://example.com/api/v1"},
		{"with port", "http://example.com:8080/api"},
		{"with query", "https://example.com/search?q=go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.url, req.TargetString())
		})
	}
}

func TestNewRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"missing scheme", "example.com/path"},
		{"bad scheme", "ftp://example.com"},
		{"file scheme", "file:///etc/passwd"},
		{"missing host", "http:///path"},
		{"garbage", "http://exa mple.com/%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRequest(tt.url)
			require.Error(t, err)
			var invalidURL *InvalidURLError
			assert.ErrorAs(t, err, &invalidURL)
			assert.Equal(t, tt.url, invalidURL.Raw)
		})
	}
}

func TestRequest_SetURL_KeepsPreviousOnFailure(t *testing.T) {
	req, err := NewRequest("http://example.com")
	require.NoError(t, err)

	err = req.SetURL("not a url")
	require.Error(t, err)
	assert.Equal(t, "http://example.com", req.TargetString())
}

func TestRequest_Defaults(t *testing.T) {
	req, err := NewRequest("http://example.com")
	require.NoError(t, err)

	assert.Equal(t, Get, req.Method)
	assert.Equal(t, FormatJSON, req.Format)
	assert.Zero(t, req.Timeout)
	assert.Zero(t, req.Attempts())
	assert.NotEqual(t, [16]byte{}, [16]byte(req.ID))
}

func TestRequest_AddParameter_PreservesOrder(t *testing.T) {
	req, err := NewRequest("http://example.com")
	require.NoError(t, err)

	require.NoError(t, req.AddQueryParameter("b", "2"))
	require.NoError(t, req.AddHeader("X-Token", "abc"))
	require.NoError(t, req.AddQueryParameter("a", "1"))

	require.Len(t, req.Parameters, 3)
	assert.Equal(t, "b", req.Parameters[0].Name)
	assert.Equal(t, "X-Token", req.Parameters[1].Name)
	assert.Equal(t, "a", req.Parameters[2].Name)
}

func TestRequest_AddParameter_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		paramName string
		value     any
	}{
		{"empty name", "", "v"},
		{"nil value", "k", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest("http://example.com")
			require.NoError(t, err)
			require.NoError(t, req.AddQueryParameter("existing", "1"))

			err = req.AddParameter(tt.paramName, tt.value, QueryString)
			require.Error(t, err)
			var invalid *InvalidParameterError
			assert.ErrorAs(t, err, &invalid)

			// The failed call must not mutate the sequence.
			require.Len(t, req.Parameters, 1)
			assert.Equal(t, "existing", req.Parameters[0].Name)
		})
	}
}

func TestRequest_Chaining(t *testing.T) {
	req, err := NewRequest("http://example.com")
	require.NoError(t, err)

	same := req.SetMethod(Post).
		SetResource("/users").
		SetTimeout(2 * time.Second).
		SetReadWriteTimeout(time.Second).
		SetEnforceTLS12(true)

	assert.Same(t, req, same)
	assert.Equal(t, Post, req.Method)
	assert.Equal(t, "users", req.Resource)
	assert.Equal(t, 2*time.Second, req.Timeout)
	assert.True(t, req.EnforceTLS12)
}

func TestRequest_AddJSONBody(t *testing.T) {
	req, err := NewRequest("http://example.com")
	require.NoError(t, err)

	require.NoError(t, req.AddJSONBody(map[string]any{"name": "a"}))

	body := req.Body()
	require.NotNil(t, body)
	assert.Equal(t, "application/json", body.ContentType)
	assert.JSONEq(t, `{"name":"a"}`, parameterValue(body.Value))
	assert.Equal(t, FormatJSON, req.Format)
}

func TestRequest_AddXMLBody(t *testing.T) {
	type widget struct {
		XMLName struct{} `xml:"widget"`
		Name    string   `xml:"name"`
	}

	req, err := NewRequest("http://example.com")
	require.NoError(t, err)

	require.NoError(t, req.AddXMLBodyWithNamespace(widget{Name: "a"}, "urn:example"))

	body := req.Body()
	require.NotNil(t, body)
	assert.Equal(t, "application/xml", body.ContentType)
	assert.Equal(t, `<widget xmlns="urn:example"><name>a</name></widget>`, parameterValue(body.Value))
	assert.Equal(t, FormatXML, req.Format)
}

func TestRequest_LatestBodyWins(t *testing.T) {
	req, err := NewRequest("http://example.com")
	require.NoError(t, err)

	require.NoError(t, req.AddJSONBody(map[string]string{"a": "1"}))
	require.NoError(t, req.AddJSONBody(map[string]string{"b": "2"}))

	var bodies int
	for _, p := range req.Parameters {
		if p.Kind == RequestBody {
			bodies++
		}
	}
	assert.Equal(t, 1, bodies)
	assert.JSONEq(t, `{"b":"2"}`, parameterValue(req.Body().Value))
}

func TestRequest_AddBody_UsesSelectedFormat(t *testing.T) {
	type widget struct {
		XMLName struct{} `xml:"widget"`
		Name    string   `xml:"name" json:"name"`
	}

	req, err := NewRequest("http://example.com")
	require.NoError(t, err)

	// Format follows the last explicit body call.
	require.NoError(t, req.AddXMLBody(widget{Name: "a"}))
	require.NoError(t, req.AddBody(widget{Name: "b"}))

	assert.Equal(t, "application/xml", req.Body().ContentType)
	assert.Contains(t, parameterValue(req.Body().Value), "<name>b</name>")
}

func TestRequest_AddFileVariants(t *testing.T) {
	req, err := NewRequest("http://example.com")
	require.NoError(t, err)

	require.NoError(t, req.AddFile("report", "/tmp/report.csv", "text/csv"))
	require.NoError(t, req.AddFileBytes("data", []byte("abc"), "data.bin", ""))
	require.NoError(t, req.AddFileWriter("gen", func(w io.Writer) error {
		_, err := w.Write([]byte("streamed"))
		return err
	}, "gen.txt", "text/plain"))

	require.Len(t, req.Files, 3)
	assert.Equal(t, "report.csv", req.Files[0].FileName)
	assert.Equal(t, []byte("abc"), req.Files[1].Content)
	assert.NotNil(t, req.Files[2].Writer)
}

func TestRequest_AddFile_Invalid(t *testing.T) {
	req, err := NewRequest("http://example.com")
	require.NoError(t, err)

	assert.Error(t, req.AddFile("", "/tmp/x", ""))
	assert.Error(t, req.AddFile("x", "", ""))
	assert.Error(t, req.AddFileBytes("x", nil, "f", ""))
	assert.Error(t, req.AddFileWriter("x", nil, "f", ""))
	assert.Empty(t, req.Files)
}

func TestRequest_AttemptCounter(t *testing.T) {
	req, err := NewRequest("http://example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, req.IncrementAttempts())
	assert.Equal(t, 2, req.IncrementAttempts())
	assert.Equal(t, 2, req.Attempts())
}

func TestRequest_SetResource_StripsLeadingSlash(t *testing.T) {
	req, err := NewRequest("http://example.com/api")
	require.NoError(t, err)

	req.SetResource("/users/42")
	assert.Equal(t, "users/42", req.Resource)
}
