package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	neturl "net/url"
	"os"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a round trip when neither the executor nor the
	// request sets one.
	DefaultTimeout = 1500 * time.Millisecond
	// DefaultRetryCount is the suggested attempt ceiling for caller-level
	// retry loops. The executor itself makes exactly one attempt per call.
	DefaultRetryCount = 3
	// DefaultMaxRedirects is the maximum number of redirects to follow.
	DefaultMaxRedirects = 10
)

// Executor performs one network round trip per Execute call. It holds only
// configuration; connections live no longer than a single call, so distinct
// requests may be executed concurrently.
type Executor struct {
	timeout          time.Duration
	readWriteTimeout time.Duration
	followRedirects  bool
	maxRedirects     int
	validateSSL      bool
	proxyURL         string
	defaultHeaders   map[string]string
}

type ExecutorOption func(*Executor)

func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		timeout:         DefaultTimeout,
		followRedirects: true,
		maxRedirects:    DefaultMaxRedirects,
		validateSSL:     true,
		defaultHeaders:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithTimeout sets the default round-trip timeout for requests that do not
// carry their own.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

// WithReadWriteTimeout bounds waiting for response headers.
func WithReadWriteTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.readWriteTimeout = d }
}

func WithFollowRedirects(follow bool) ExecutorOption {
	return func(e *Executor) { e.followRedirects = follow }
}

func WithMaxRedirects(max int) ExecutorOption {
	return func(e *Executor) { e.maxRedirects = max }
}

// WithValidateSSL enables or disables certificate verification.
func WithValidateSSL(validate bool) ExecutorOption {
	return func(e *Executor) { e.validateSSL = validate }
}

func WithProxy(proxyURL string) ExecutorOption {
	return func(e *Executor) { e.proxyURL = proxyURL }
}

// WithDefaultHeader sets a header applied to every request before the
// request's own headers.
func WithDefaultHeader(key, value string) ExecutorOption {
	return func(e *Executor) { e.defaultHeaders[key] = value }
}

func WithDefaultHeaders(headers map[string]string) ExecutorOption {
	return func(e *Executor) {
		for k, v := range headers {
			e.defaultHeaders[k] = v
		}
	}
}

// Execute performs exactly one round trip for req. Transport-level failures
// (DNS, connection refused, timeout, TLS) return a *NetworkError; any HTTP
// status, 4xx and 5xx included, returns a normal Response. The Response and
// elapsed time are also stored on req, replacing previous values.
func (e *Executor) Execute(req *Request) (*Response, error) {
	return e.ExecuteContext(context.Background(), req)
}

// ExecuteContext is Execute with an explicit parent context. The effective
// deadline is the sooner of ctx's and the configured timeout.
func (e *Executor) ExecuteContext(ctx context.Context, req *Request) (*Response, error) {
	effectiveURL, err := e.buildURL(req)
	if err != nil {
		return nil, err
	}

	body, contentType, err := buildBody(req)
	if err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := string(req.Method)
	if method == "" {
		method = string(Get)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, effectiveURL, body)
	if err != nil {
		return nil, &InvalidURLError{Raw: effectiveURL, Err: err}
	}

	for k, v := range e.defaultHeaders {
		httpReq.Header.Set(k, v)
	}
	for _, p := range req.Parameters {
		switch p.Kind {
		case HTTPHeader:
			httpReq.Header.Add(p.Name, parameterValue(p.Value))
		case Cookie:
			httpReq.AddCookie(&http.Cookie{Name: p.Name, Value: parameterValue(p.Value)})
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	client := e.clientFor(req)

	start := time.Now()
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{URL: effectiveURL, Err: err}
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return nil, &NetworkError{URL: effectiveURL, Err: err}
	}

	resp := &Response{
		StatusCode:  httpResp.StatusCode,
		Status:      httpResp.Status,
		Headers:     captureHeaders(httpResp.Header),
		RawBody:     rawBody,
		Content:     string(rawBody),
		ContentType: httpResp.Header.Get("Content-Type"),
		ResponseURI: httpResp.Request.URL,
		Duration:    elapsed,
	}

	req.Response = resp
	req.Elapsed = elapsed
	return resp, nil
}

// clientFor builds the transport for one execution. A fresh transport per
// call keeps the TLS 1.2 pin scoped to the invocation instead of the
// process, so concurrent requests with different policies do not interfere.
func (e *Executor) clientFor(req *Request) *http.Client {
	transport := &http.Transport{
		DisableKeepAlives: true,
	}

	tlsConfig := &tls.Config{}
	if !e.validateSSL {
		tlsConfig.InsecureSkipVerify = true
	}
	if req.EnforceTLS12 {
		tlsConfig.MinVersion = tls.VersionTLS12
		tlsConfig.MaxVersion = tls.VersionTLS12
	}
	transport.TLSClientConfig = tlsConfig

	if e.proxyURL != "" {
		if proxyURL, err := neturl.Parse(e.proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	rwTimeout := req.ReadWriteTimeout
	if rwTimeout <= 0 {
		rwTimeout = e.readWriteTimeout
	}
	if rwTimeout > 0 {
		transport.ResponseHeaderTimeout = rwTimeout
	}

	redirectPolicy := func(r *http.Request, via []*http.Request) error {
		if !e.followRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= e.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	return &http.Client{
		Transport:     transport,
		CheckRedirect: redirectPolicy,
	}
}

// buildURL resolves target + resource, fills {segment} placeholders and
// appends QueryString parameters in insertion order.
func (e *Executor) buildURL(req *Request) (string, error) {
	target := req.URL()
	if target == nil {
		return "", &InvalidURLError{Raw: "", Err: fmt.Errorf("request has no target URL")}
	}

	path := target.Path
	if req.Resource != "" {
		path = strings.TrimSuffix(path, "/") + "/" + req.Resource
	}
	for _, p := range req.Parameters {
		if p.Kind == URLSegment {
			placeholder := "{" + p.Name + "}"
			path = strings.ReplaceAll(path, placeholder, parameterValue(p.Value))
		}
	}
	// Path holds the decoded form; clearing RawPath lets URL.String escape
	// substituted segment values itself.
	target.Path = path
	target.RawPath = ""

	var query strings.Builder
	query.WriteString(target.RawQuery)
	for _, p := range req.Parameters {
		if p.Kind != QueryString {
			continue
		}
		if query.Len() > 0 {
			query.WriteByte('&')
		}
		query.WriteString(neturl.QueryEscape(p.Name))
		query.WriteByte('=')
		query.WriteString(neturl.QueryEscape(parameterValue(p.Value)))
	}
	target.RawQuery = query.String()

	return target.String(), nil
}

// buildBody assembles the request body. Attachments force multipart
// encoding; otherwise the RequestBody parameter or urlencoded FormData
// parameters are used, in that priority.
func buildBody(req *Request) (io.Reader, string, error) {
	if len(req.Files) > 0 {
		return buildMultipartBody(req)
	}

	if body := req.Body(); body != nil {
		contentType := body.ContentType
		if contentType == "" {
			contentType = body.Name
		}
		return strings.NewReader(parameterValue(body.Value)), contentType, nil
	}

	var form strings.Builder
	for _, p := range req.Parameters {
		if p.Kind != FormData {
			continue
		}
		if form.Len() > 0 {
			form.WriteByte('&')
		}
		form.WriteString(neturl.QueryEscape(p.Name))
		form.WriteByte('=')
		form.WriteString(neturl.QueryEscape(parameterValue(p.Value)))
	}
	if form.Len() > 0 {
		return strings.NewReader(form.String()), "application/x-www-form-urlencoded", nil
	}

	return nil, "", nil
}

func buildMultipartBody(req *Request) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, p := range req.Parameters {
		if p.Kind != FormData {
			continue
		}
		if err := writer.WriteField(p.Name, parameterValue(p.Value)); err != nil {
			return nil, "", err
		}
	}

	for _, f := range req.Files {
		part, err := createFilePart(writer, f)
		if err != nil {
			return nil, "", err
		}
		switch {
		case f.Path != "":
			file, err := os.Open(f.Path)
			if err != nil {
				return nil, "", err
			}
			_, err = io.Copy(part, file)
			file.Close()
			if err != nil {
				return nil, "", err
			}
		case f.Writer != nil:
			if err := f.Writer(part); err != nil {
				return nil, "", err
			}
		default:
			if _, err := part.Write(f.Content); err != nil {
				return nil, "", err
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func createFilePart(writer *multipart.Writer, f File) (io.Writer, error) {
	fileName := f.FileName
	if fileName == "" {
		fileName = f.Name
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Name, fileName))
	header.Set("Content-Type", contentType)
	return writer.CreatePart(header)
}

// captureHeaders flattens an http.Header into an ordered slice. net/http
// does not preserve wire order, so entries are sorted by canonical name with
// duplicate values kept in received order.
func captureHeaders(h http.Header) []Header {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var headers []Header
	for _, name := range names {
		for _, value := range h[name] {
			headers = append(headers, Header{Name: name, Value: value})
		}
	}
	return headers
}
