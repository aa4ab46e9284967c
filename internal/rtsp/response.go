package rtsp

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is an RTSP response status code (RFC 2326 §7.1, a subset of
// HTTP/1.1's registry plus RTSP-specific codes).
type Status int

const (
	StatusOK                   Status = 200
	StatusBadRequest           Status = 400
	StatusNotFound             Status = 404
	StatusMethodNotAllowed     Status = 405
	StatusSessionNotFound      Status = 454
	StatusUnsupportedTransport Status = 461
	StatusInternalServerError  Status = 500
	StatusNotImplemented       Status = 501
)

var reasonPhrases = map[Status]string{
	StatusOK:                   "OK",
	StatusBadRequest:           "Bad Request",
	StatusNotFound:             "Not Found",
	StatusMethodNotAllowed:     "Method Not Allowed",
	StatusSessionNotFound:      "Session Not Found",
	StatusUnsupportedTransport: "Unsupported Transport",
	StatusInternalServerError:  "Internal Server Error",
	StatusNotImplemented:       "Not Implemented",
}

func (s Status) Reason() string {
	if r, ok := reasonPhrases[s]; ok {
		return r
	}
	return "Unknown"
}

// Response is an RTSP response under construction. Headers preserve
// insertion order so Server and CSeq consistently lead the wire output,
// matching what RTSP clients expect to find first.
type Response struct {
	Status  Status
	headers []headerField
	Body    []byte
}

type headerField struct {
	name  string
	value string
}

// NewResponse creates a response for status, with Server (if
// serverAgent is non-empty) and CSeq pre-populated as the first
// headers. CSeq is always written, as "0" when cseq is 0.
func NewResponse(status Status, serverAgent string, cseq int) *Response {
	r := &Response{Status: status}
	if serverAgent != "" {
		r.SetHeader("Server", serverAgent)
	}
	r.SetHeader("CSeq", strconv.Itoa(cseq))
	return r
}

// SetHeader appends or replaces a header, preserving first-seen order.
func (r *Response) SetHeader(name, value string) {
	lower := strings.ToLower(name)
	for i, h := range r.headers {
		if strings.ToLower(h.name) == lower {
			r.headers[i].value = value
			return
		}
	}
	r.headers = append(r.headers, headerField{name: name, value: value})
}

// SetBody attaches a response body and sets Content-Length accordingly.
func (r *Response) SetBody(body []byte, contentType string) {
	r.Body = body
	if contentType != "" {
		r.SetHeader("Content-Type", contentType)
	}
	r.SetHeader("Content-Length", strconv.Itoa(len(body)))
}

// Bytes serializes the response as a wire-ready RTSP message.
func (r *Response) Bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "RTSP/1.0 %d %s\r\n", r.Status, r.Status.Reason())
	for _, h := range r.headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h.name, h.value)
	}
	b.WriteString("\r\n")
	out := []byte(b.String())
	out = append(out, r.Body...)
	return out
}
