package rest

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Method is an HTTP method accepted by the executor.
type Method string

const (
	Get     Method = "GET"
	Post    Method = "POST"
	Put     Method = "PUT"
	Delete  Method = "DELETE"
	Head    Method = "HEAD"
	Options Method = "OPTIONS"
)

// ParameterKind determines where a parameter ends up in the assembled
// transport request.
type ParameterKind int

const (
	// QueryString parameters are appended to the effective URL.
	QueryString ParameterKind = iota
	// FormData parameters become urlencoded form fields, or multipart
	// fields when attachments are present.
	FormData
	// URLSegment parameters replace {name} placeholders in the target
	// path and resource.
	URLSegment
	// HTTPHeader parameters become request headers.
	HTTPHeader
	// RequestBody is the request body; at most one is active.
	RequestBody
	// Cookie parameters are sent in the Cookie header.
	Cookie
)

func (k ParameterKind) String() string {
	switch k {
	case QueryString:
		return "QueryString"
	case FormData:
		return "FormData"
	case URLSegment:
		return "UrlSegment"
	case HTTPHeader:
		return "HttpHeader"
	case RequestBody:
		return "RequestBody"
	case Cookie:
		return "Cookie"
	default:
		return fmt.Sprintf("ParameterKind(%d)", int(k))
	}
}

// BodyFormat selects how AddBody serializes its argument. It is updated
// implicitly by AddJSONBody and AddXMLBody; the latest body call wins.
type BodyFormat int

const (
	FormatJSON BodyFormat = iota
	FormatXML
)

// Parameter is one (name, value, kind) triple. Values are kept as supplied
// and rendered to text when the transport request is assembled.
type Parameter struct {
	Name        string
	Value       any
	Kind        ParameterKind
	ContentType string
}

// File is a named byte source included in a multipart body. Exactly one of
// Path, Content or Writer is set.
type File struct {
	Name        string
	FileName    string
	ContentType string

	Path    string
	Content []byte
	Writer  func(io.Writer) error
}

// Request is a mutable description of one prospective HTTP call. It performs
// no I/O itself; pass it to an Executor to obtain a Response.
//
// Mutators that cannot fail return the same *Request for chaining. Mutators
// that validate their input return an error and leave the request untouched
// when validation fails.
type Request struct {
	// ID identifies the request in history records and reports.
	ID uuid.UUID

	Method   Method
	Resource string

	Parameters []Parameter
	Files      []File

	// Timeout bounds the whole round trip; zero means the executor
	// default. ReadWriteTimeout bounds waiting for response headers.
	Timeout          time.Duration
	ReadWriteTimeout time.Duration

	// EnforceTLS12 pins the connection to TLS 1.2, applied per execution
	// on a dedicated transport.
	EnforceTLS12 bool

	// Format is the serialization used by AddBody. AddJSONBody and
	// AddXMLBody update it as a side effect.
	Format BodyFormat

	// Response and Elapsed are replaced wholesale by each execution.
	Response *Response
	Elapsed  time.Duration

	target   *url.URL
	attempts int
}

// NewRequest parses rawURL and returns a GET request targeting it. The URL
// must be absolute with an http or https scheme; anything else fails with
// *InvalidURLError.
func NewRequest(rawURL string) (*Request, error) {
	r := &Request{
		ID:     uuid.New(),
		Method: Get,
	}
	if err := r.SetURL(rawURL); err != nil {
		return nil, err
	}
	return r, nil
}

// SetURL replaces the target URL, applying the same validation as
// NewRequest. On failure the previous target is kept.
func (r *Request) SetURL(rawURL string) error {
	u, err := parseTarget(rawURL)
	if err != nil {
		return err
	}
	r.target = u
	return nil
}

func parseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &InvalidURLError{Raw: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &InvalidURLError{Raw: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &InvalidURLError{Raw: rawURL, Err: fmt.Errorf("missing host")}
	}
	return u, nil
}

// URL returns a copy of the target URL. The resource fragment and query
// parameters are not applied; see Executor for effective-URL assembly.
func (r *Request) URL() *url.URL {
	if r.target == nil {
		return nil
	}
	u := *r.target
	return &u
}

// TargetString returns the target URL as a string.
func (r *Request) TargetString() string {
	if r.target == nil {
		return ""
	}
	return r.target.String()
}

// SetMethod sets the HTTP method. The zero value and unknown strings are
// treated as GET by the executor.
func (r *Request) SetMethod(m Method) *Request {
	r.Method = Method(strings.ToUpper(string(m)))
	return r
}

// SetResource sets the path fragment appended to the target at execution
// time. A leading slash is stripped; the fragment may contain {name}
// placeholders filled by URLSegment parameters.
func (r *Request) SetResource(resource string) *Request {
	r.Resource = strings.TrimPrefix(resource, "/")
	return r
}

// SetTimeout overrides the executor's round-trip timeout for this request.
func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// SetReadWriteTimeout overrides the executor's response-header timeout for
// this request.
func (r *Request) SetReadWriteTimeout(d time.Duration) *Request {
	r.ReadWriteTimeout = d
	return r
}

// SetEnforceTLS12 pins executions of this request to TLS 1.2.
func (r *Request) SetEnforceTLS12(enforce bool) *Request {
	r.EnforceTLS12 = enforce
	return r
}

// AddParameter appends a parameter, preserving insertion order. An empty
// name or nil value fails with *InvalidParameterError without mutating the
// request. A RequestBody parameter replaces any existing body: the latest
// body wins.
func (r *Request) AddParameter(name string, value any, kind ParameterKind) error {
	if name == "" {
		return &InvalidParameterError{Reason: "name must not be empty"}
	}
	if value == nil {
		return &InvalidParameterError{Name: name, Reason: "value must not be nil"}
	}
	p := Parameter{Name: name, Value: value, Kind: kind}
	if kind == RequestBody {
		for i := range r.Parameters {
			if r.Parameters[i].Kind == RequestBody {
				r.Parameters[i] = p
				return nil
			}
		}
	}
	r.Parameters = append(r.Parameters, p)
	return nil
}

// AddQueryParameter appends a QueryString parameter.
func (r *Request) AddQueryParameter(name, value string) error {
	return r.AddParameter(name, value, QueryString)
}

// AddHeader appends an HTTPHeader parameter. Repeated names produce
// repeated header lines.
func (r *Request) AddHeader(name, value string) error {
	return r.AddParameter(name, value, HTTPHeader)
}

// AddCookie appends a Cookie parameter.
func (r *Request) AddCookie(name, value string) error {
	return r.AddParameter(name, value, Cookie)
}

// AddURLSegment appends a URLSegment parameter filling the {name}
// placeholder in the target path or resource.
func (r *Request) AddURLSegment(name, value string) error {
	return r.AddParameter(name, value, URLSegment)
}

// AddFile attaches a file read from the filesystem at execution time. The
// attachment forces multipart encoding regardless of method. contentType may
// be empty; the part then defaults to application/octet-stream.
func (r *Request) AddFile(name, path, contentType string) error {
	if name == "" {
		return &InvalidParameterError{Reason: "file name must not be empty"}
	}
	if path == "" {
		return &InvalidParameterError{Name: name, Reason: "file path must not be empty"}
	}
	r.Files = append(r.Files, File{
		Name:        name,
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Path:        path,
	})
	return nil
}

// AddFileBytes attaches an in-memory buffer as a file part.
func (r *Request) AddFileBytes(name string, content []byte, fileName, contentType string) error {
	if name == "" {
		return &InvalidParameterError{Reason: "file name must not be empty"}
	}
	if content == nil {
		return &InvalidParameterError{Name: name, Reason: "file content must not be nil"}
	}
	r.Files = append(r.Files, File{
		Name:        name,
		FileName:    fileName,
		ContentType: contentType,
		Content:     content,
	})
	return nil
}

// AddFileWriter attaches a file part whose bytes are produced by writer when
// the multipart body is assembled.
func (r *Request) AddFileWriter(name string, writer func(io.Writer) error, fileName, contentType string) error {
	if name == "" {
		return &InvalidParameterError{Reason: "file name must not be empty"}
	}
	if writer == nil {
		return &InvalidParameterError{Name: name, Reason: "file writer must not be nil"}
	}
	r.Files = append(r.Files, File{
		Name:        name,
		FileName:    fileName,
		ContentType: contentType,
		Writer:      writer,
	})
	return nil
}

// AddBody serializes v using the request's current Format and stores it as
// the body. Equivalent to AddJSONBody or AddXMLBody depending on Format.
func (r *Request) AddBody(v any) error {
	if r.Format == FormatXML {
		return r.AddXMLBody(v)
	}
	return r.AddJSONBody(v)
}

// AddJSONBody serializes v as JSON and stores it as the request body,
// replacing any previous body and selecting JSON as the body format.
func (r *Request) AddJSONBody(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &InvalidParameterError{Name: "body", Reason: fmt.Sprintf("cannot serialize to JSON: %v", err)}
	}
	r.Format = FormatJSON
	return r.setBody(string(data), "application/json")
}

// AddXMLBody serializes v as XML and stores it as the request body,
// replacing any previous body and selecting XML as the body format.
func (r *Request) AddXMLBody(v any) error {
	return r.AddXMLBodyWithNamespace(v, "")
}

// AddXMLBodyWithNamespace is AddXMLBody with an xmlns attribute injected on
// the document element.
func (r *Request) AddXMLBodyWithNamespace(v any, namespace string) error {
	data, err := xml.Marshal(v)
	if err != nil {
		return &InvalidParameterError{Name: "body", Reason: fmt.Sprintf("cannot serialize to XML: %v", err)}
	}
	body := string(data)
	if namespace != "" {
		if i := strings.IndexAny(body, " >"); i > 0 {
			body = body[:i] + ` xmlns="` + namespace + `"` + body[i:]
		}
	}
	r.Format = FormatXML
	return r.setBody(body, "application/xml")
}

func (r *Request) setBody(content, contentType string) error {
	if err := r.AddParameter(contentType, content, RequestBody); err != nil {
		return err
	}
	for i := range r.Parameters {
		if r.Parameters[i].Kind == RequestBody {
			r.Parameters[i].ContentType = contentType
		}
	}
	return nil
}

// Body returns the active RequestBody parameter, or nil when none is set.
func (r *Request) Body() *Parameter {
	for i := range r.Parameters {
		if r.Parameters[i].Kind == RequestBody {
			return &r.Parameters[i]
		}
	}
	return nil
}

// IncrementAttempts bumps the attempt counter and returns the new value.
// The executor never calls this; it exists for caller-level retry loops
// (see package repeat). DefaultRetryCount documents the suggested ceiling.
func (r *Request) IncrementAttempts() int {
	r.attempts++
	return r.attempts
}

// Attempts returns how many execution attempts have been recorded.
func (r *Request) Attempts() int { return r.attempts }

// parameterValue renders a parameter value for transmission.
func parameterValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
