package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/restcall-dev/restcall/packages/config"
	"github.com/restcall-dev/restcall/packages/rest"
)

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

// splitPair splits "key<sep>value" and rejects anything else.
func splitPair(s, sep string) (string, string, error) {
	parts := strings.SplitN(s, sep, 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("expected key%svalue, got %q", sep, s)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

type requestFlags struct {
	method    string
	resource  string
	headers   []string
	queries   []string
	segments  []string
	cookies   []string
	forms     []string
	body      string
	bodyFile  string
	xml       bool
	files     []string
	timeout   string
	rwTimeout string
	tls12     bool
}

// buildRequest assembles a rest.Request from parsed flags plus config
// defaults.
func buildRequest(url string, flags *requestFlags, cfg *config.Config) (*rest.Request, error) {
	req, err := rest.NewRequest(url)
	if err != nil {
		return nil, err
	}

	if flags.method != "" {
		req.SetMethod(rest.Method(flags.method))
	}
	if flags.resource != "" {
		req.SetResource(flags.resource)
	}

	for k, v := range cfg.Headers {
		if err := req.AddHeader(k, v); err != nil {
			return nil, err
		}
	}
	for _, h := range flags.headers {
		k, v, err := splitPair(h, ":")
		if err != nil {
			return nil, err
		}
		if err := req.AddHeader(k, v); err != nil {
			return nil, err
		}
	}
	for _, q := range flags.queries {
		k, v, err := splitPair(q, "=")
		if err != nil {
			return nil, err
		}
		if err := req.AddQueryParameter(k, v); err != nil {
			return nil, err
		}
	}
	for _, s := range flags.segments {
		k, v, err := splitPair(s, "=")
		if err != nil {
			return nil, err
		}
		if err := req.AddURLSegment(k, v); err != nil {
			return nil, err
		}
	}
	for _, c := range flags.cookies {
		k, v, err := splitPair(c, "=")
		if err != nil {
			return nil, err
		}
		if err := req.AddCookie(k, v); err != nil {
			return nil, err
		}
	}
	for _, f := range flags.forms {
		k, v, err := splitPair(f, "=")
		if err != nil {
			return nil, err
		}
		if err := req.AddParameter(k, v, rest.FormData); err != nil {
			return nil, err
		}
	}
	for _, f := range flags.files {
		name, path, err := splitPair(f, "=")
		if err != nil {
			return nil, err
		}
		if err := req.AddFile(name, path, ""); err != nil {
			return nil, err
		}
	}

	if err := applyBody(req, flags); err != nil {
		return nil, err
	}

	if err := applyTimeouts(req, flags, cfg); err != nil {
		return nil, err
	}

	if flags.tls12 || cfg.EnforceTLS12 {
		req.SetEnforceTLS12(true)
	}

	return req, nil
}

// applyBody sets the raw body from --body or --body-file. The flag carries
// pre-serialized content, so it bypasses AddJSONBody/AddXMLBody and goes in
// as the RequestBody parameter directly.
func applyBody(req *rest.Request, flags *requestFlags) error {
	content := flags.body
	if flags.bodyFile != "" {
		data, err := os.ReadFile(flags.bodyFile)
		if err != nil {
			return fmt.Errorf("cannot read body file: %w", err)
		}
		content = string(data)
	}
	if content == "" {
		return nil
	}

	contentType := "application/json"
	if flags.xml {
		contentType = "application/xml"
	}
	return req.AddParameter(contentType, content, rest.RequestBody)
}

func applyTimeouts(req *rest.Request, flags *requestFlags, cfg *config.Config) error {
	timeout := flags.timeout
	if timeout == "" {
		timeout = cfg.Timeout
	}
	if timeout != "" {
		d, err := parseDuration(timeout)
		if err != nil {
			return err
		}
		req.SetTimeout(d)
	}
	if flags.rwTimeout != "" {
		d, err := parseDuration(flags.rwTimeout)
		if err != nil {
			return err
		}
		req.SetReadWriteTimeout(d)
	}
	return nil
}

// parseDuration accepts Go duration syntax and bare milliseconds.
func parseDuration(s string) (d time.Duration, err error) {
	if ms, convErr := strconv.Atoi(s); convErr == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err = time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

// buildExecutor derives executor options from config and network flags.
func buildExecutor(cfg *config.Config, insecure, noRedirect bool, proxy string) *rest.Executor {
	opts := []rest.ExecutorOption{
		rest.WithValidateSSL(cfg.GetValidateSSL() && !insecure),
		rest.WithFollowRedirects(cfg.GetFollowRedirects() && !noRedirect),
	}
	if cfg.MaxRedirects > 0 {
		opts = append(opts, rest.WithMaxRedirects(cfg.MaxRedirects))
	}
	if proxy == "" {
		proxy = cfg.Proxy
	}
	if proxy != "" {
		opts = append(opts, rest.WithProxy(proxy))
	}
	return rest.NewExecutor(opts...)
}
