package gows

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

const serverProduct = "gows/1.0"

// Header is a single name/value pair, kept as a slice on Response so
// insertion order survives into the wire format (spec requires user headers
// to be emitted in registration order).
type Header struct {
	Name  string
	Value string
}

// Body is implemented by every response body variant: in-memory text,
// in-memory JSON, a borrowed static byte slice, and an owned file stream
// (inline or attachment).
type Body interface {
	isBody()
}

// BodyText is an in-memory UTF-8 text body.
type BodyText string

func (BodyText) isBody() {}

// BodyJSON is an in-memory JSON value, serialized lazily by the writer.
type BodyJSON struct {
	Value any
}

func (BodyJSON) isBody() {}

// BodyStatic is a borrowed static byte slice (the embedded asset bundle).
// Name identifies the asset; the writer emits no Content-Disposition for
// static bodies.
type BodyStatic struct {
	Name string
	Data []byte
}

func (BodyStatic) isBody() {}

// BodyFile is an owned, open file handle streamed directly to the socket.
// Attachment signals whether Content-Disposition: attachment is emitted.
type BodyFile struct {
	File       *os.File
	Name       string
	Size       int64
	Attachment bool
}

func (BodyFile) isBody() {}

// Response is the uniform return type of every route handler.
type Response struct {
	StatusCode  uint16
	ContentType string
	Headers     []Header
	Body        Body
}

// AddHeader appends a user header, preserving insertion order.
func (r *Response) AddHeader(name, value string) {
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

func (r *Response) contentType() string {
	if r.ContentType == "" {
		return "application/json"
	}
	return r.ContentType
}

// writeResponse serializes resp onto w per spec.md §4.6: fixed header
// order, then body. compress gzips in-memory bodies only; file streams
// always bypass compression (never buffered into memory).
func writeResponse(w io.Writer, resp *Response, compress bool) error {
	bw := bufio.NewWriter(w)

	switch body := resp.Body.(type) {
	case BodyFile:
		return writeFileBody(bw, resp, body)
	case nil:
		return writeMemoryBody(bw, resp, nil, false)
	case BodyText:
		return writeMemoryBody(bw, resp, []byte(body), compress)
	case BodyJSON:
		data, err := json.Marshal(body.Value)
		if err != nil {
			return err
		}
		return writeMemoryBody(bw, resp, data, compress)
	case BodyStatic:
		return writeMemoryBody(bw, resp, body.Data, compress)
	default:
		return fmt.Errorf("unsupported response body type %T", resp.Body)
	}
}

func writeMemoryBody(bw *bufio.Writer, resp *Response, data []byte, compress bool) error {
	gzipped := false
	if compress && len(data) > 0 {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return err
		}
		if err := gw.Close(); err != nil {
			return err
		}
		data = buf.Bytes()
		gzipped = true
	}

	if err := writeStatusAndCommonHeaders(bw, resp); err != nil {
		return err
	}
	if gzipped {
		if _, err := bw.WriteString("Content-Encoding: gzip\r\n"); err != nil {
			return err
		}
		if _, err := bw.WriteString("Vary: Accept-Encoding\r\n"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := bw.Write(data); err != nil {
		return err
	}
	return bw.Flush()
}

func writeFileBody(bw *bufio.Writer, resp *Response, body BodyFile) error {
	defer body.File.Close()

	if err := writeStatusAndCommonHeaders(bw, resp); err != nil {
		return err
	}
	if body.Attachment {
		if _, err := fmt.Fprintf(bw, "Content-Disposition: attachment; filename=\"%s\"\r\n", body.Name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "Content-Length: %d\r\n\r\n", body.Size); err != nil {
		return err
	}
	if _, err := io.CopyN(bw, bufio.NewReader(body.File), body.Size); err != nil {
		return err
	}
	return bw.Flush()
}

// writeStatusAndCommonHeaders emits the status line, Content-Type,
// Connection, Server, and user headers, in that fixed order. The pipeline
// serves exactly one request per connection, so Connection is always
// "close" (spec.md §9's documented keep-alive divergence, resolved here).
func writeStatusAndCommonHeaders(bw *bufio.Writer, resp *Response) error {
	if _, err := fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", resp.StatusCode, canonicalReason(resp.StatusCode)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "Content-Type: %s\r\n", resp.contentType()); err != nil {
		return err
	}
	if _, err := bw.WriteString("Connection: close\r\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "Server: %s\r\n", serverProduct); err != nil {
		return err
	}
	for _, h := range resp.Headers {
		if _, err := fmt.Fprintf(bw, "%s: %s\r\n", h.Name, h.Value); err != nil {
			return err
		}
	}
	return nil
}
