package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restcall-dev/restcall/packages/config"
	"github.com/restcall-dev/restcall/packages/rest"
)

func TestSplitPair(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		sep     string
		key     string
		value   string
		wantErr bool
	}{
		{"header", "Accept: application/json", ":", "Accept", "application/json", false},
		{"query", "page=2", "=", "page", "2", false},
		{"value with separator", "Authorization: Bearer a:b", ":", "Authorization", "Bearer a:b", false},
		{"empty value ok", "flag=", "=", "flag", "", false},
		{"missing separator", "broken", "=", "", "", true},
		{"empty key", "=v", "=", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, v, err := splitPair(tt.input, tt.sep)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, k)
			assert.Equal(t, tt.value, v)
		})
	}
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("1500")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	d, err = parseDuration("2s")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	_, err = parseDuration("soon")
	assert.Error(t, err)
}

func TestBuildRequest(t *testing.T) {
	flags := &requestFlags{
		method:   "post",
		resource: "/users/{id}",
		headers:  []string{"X-Token: abc"},
		queries:  []string{"page=2"},
		segments: []string{"id=42"},
		cookies:  []string{"session=s1"},
		body:     `{"name":"a"}`,
		timeout:  "2s",
		tls12:    true,
	}
	cfg := &config.Config{Headers: map[string]string{"Accept": "application/json"}}

	req, err := buildRequest("http://example.com/api", flags, cfg)
	require.NoError(t, err)

	assert.Equal(t, rest.Post, req.Method)
	assert.Equal(t, "users/{id}", req.Resource)
	assert.Equal(t, 2*time.Second, req.Timeout)
	assert.True(t, req.EnforceTLS12)

	body := req.Body()
	require.NotNil(t, body)
	assert.Equal(t, `{"name":"a"}`, body.Value)

	kinds := map[rest.ParameterKind]int{}
	for _, p := range req.Parameters {
		kinds[p.Kind]++
	}
	assert.Equal(t, 2, kinds[rest.HTTPHeader]) // config + flag
	assert.Equal(t, 1, kinds[rest.QueryString])
	assert.Equal(t, 1, kinds[rest.URLSegment])
	assert.Equal(t, 1, kinds[rest.Cookie])
}

func TestBuildRequest_BodyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.xml")
	require.NoError(t, os.WriteFile(path, []byte("<widget/>"), 0o644))

	flags := &requestFlags{bodyFile: path, xml: true}
	req, err := buildRequest("http://example.com", flags, config.DefaultConfig())
	require.NoError(t, err)

	body := req.Body()
	require.NotNil(t, body)
	assert.Equal(t, "<widget/>", body.Value)
	assert.Equal(t, "application/xml", body.Name)
}

func TestBuildRequest_InvalidURL(t *testing.T) {
	_, err := buildRequest("not a url", &requestFlags{}, config.DefaultConfig())
	require.Error(t, err)
	var invalidURL *rest.InvalidURLError
	assert.ErrorAs(t, err, &invalidURL)
}

func TestBuildRequest_BadPair(t *testing.T) {
	_, err := buildRequest("http://example.com", &requestFlags{queries: []string{"broken"}}, config.DefaultConfig())
	assert.Error(t, err)
}
