package gows

import (
	"encoding/json"
	"fmt"
)

// ParseError signals malformed HTTP input encountered while reading the
// request line or headers off the wire.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

func newParseError(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// ApiError carries a ready-to-send Response plus optional request context
// used only for logging. Handlers return either a *Response or an *ApiError.
type ApiError struct {
	Response *Response
	Method   string
	Path     string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("%d %s %s", e.Response.StatusCode, e.Method, e.Path)
}

// NewAPIErrorHTML builds an ApiError whose body is an HTML error page,
// for navigational failures a browser might render directly.
func NewAPIErrorHTML(code uint16, message string) *ApiError {
	return &ApiError{Response: htmlErrorResponse(code, message)}
}

// NewAPIErrorJSON builds an ApiError whose body is {"message": ...}.
func NewAPIErrorJSON(code uint16, message string) *ApiError {
	body, _ := json.Marshal(map[string]string{"message": message})
	return &ApiError{Response: &Response{
		StatusCode:  code,
		ContentType: "application/json",
		Body:        BodyStatic{Name: "", Data: body},
	}}
}

// apiErrorFromIOError converts a filesystem error into the 404/500 split
// spec.md §7 requires: a missing file is a navigational 404, anything else
// is a 500.
func apiErrorFromIOError(err error, notFound bool) *ApiError {
	if notFound {
		return NewAPIErrorHTML(404, err.Error())
	}
	return NewAPIErrorJSON(500, err.Error())
}

func htmlErrorResponse(code uint16, message string) *Response {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Error</title>
    <style>
    body {
        display: flex;
        justify-content: center;
        align-items: center;
        height: 100vh;
        font-family: Arial, sans-serif;
    }
    .error-container {
        text-align: center;
    }
    .error-container h1 {
        font-size: 3em;
        color: #ff0000;
    }
    .error-container p {
        font-size: 1.5em;
    }
    </style>
</head>
<body>
    <div class="error-container">
        <h1>%d %s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, code, canonicalReason(code), message)

	return &Response{
		StatusCode:  code,
		ContentType: "text/html",
		Body:        BodyText(html),
	}
}

// canonicalReason returns the canonical HTTP reason phrase for code, or a
// fallback string for codes the table doesn't carry.
func canonicalReason(code uint16) string {
	switch code {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 204:
		return "No Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 502:
		return "Bad Gateway"
	case 503:
		return "Service Unavailable"
	default:
		return "Unknown Status Code"
	}
}
