package rtsp

import (
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Method is an RTSP request method (RFC 2326 §10).
type Method string

const (
	MethodOptions      Method = "OPTIONS"
	MethodDescribe     Method = "DESCRIBE"
	MethodSetup        Method = "SETUP"
	MethodPlay         Method = "PLAY"
	MethodPause        Method = "PAUSE"
	MethodTeardown     Method = "TEARDOWN"
	MethodGetParameter Method = "GET_PARAMETER"
)

// ParseErrorKind classifies why a request failed to parse.
type ParseErrorKind int

const (
	EmptyRequest ParseErrorKind = iota
	InvalidRequestLine
	InvalidHeader
)

// ParseError is returned by ParseRequest for any malformed input; Kind
// lets callers map a failure to the right RTSP status code without
// string-matching the message.
type ParseError struct {
	Kind ParseErrorKind
	Msg  string
}

func (e *ParseError) Error() string {
	return e.Msg
}

func newParseError(kind ParseErrorKind, format string, a ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Msg: xerrors.Errorf(format, a...).Error()}
}

// Request is a parsed RTSP request: method, URI, protocol version, and
// headers, keyed case-insensitively per RFC 2326 §4.2.
type Request struct {
	Method  Method
	URI     string
	Version string
	Headers map[string]string
	Body    []byte
}

// Header looks up a header by name, case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.Headers[strings.ToLower(name)]
	return v, ok
}

// CSeq returns the request's CSeq header as an integer, defaulting to 0
// if absent or unparseable; the handler echoes this value, so an
// unparseable CSeq is answered with "CSeq: 0".
func (r *Request) CSeq() int {
	v, ok := r.Header("CSeq")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

// ParseRequest parses the request line and headers of a single RTSP
// request out of lines, which must already be split on CRLF (or LF)
// with the trailing blank-line terminator removed by the caller.
func ParseRequest(lines []string) (*Request, error) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, newParseError(EmptyRequest, "empty request")
	}

	parts := strings.Fields(lines[0])
	if len(parts) != 3 {
		return nil, newParseError(InvalidRequestLine, "malformed request line: %q", lines[0])
	}

	req := &Request{
		Method:  Method(strings.ToUpper(parts[0])),
		URI:     parts[1],
		Version: parts[2],
		Headers: make(map[string]string),
	}

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			return nil, newParseError(InvalidHeader, "malformed header: %q", line)
		}
		name := strings.ToLower(strings.TrimSpace(line[:colon]))
		value := strings.TrimSpace(line[colon+1:])
		req.Headers[name] = value
	}

	return req, nil
}
