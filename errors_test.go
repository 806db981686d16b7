package gows

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCanonicalReasonKnownAndFallback(t *testing.T) {
	cases := map[uint16]string{
		200: "OK",
		404: "Not Found",
		405: "Method Not Allowed",
		500: "Internal Server Error",
	}
	for code, want := range cases {
		if got := canonicalReason(code); got != want {
			t.Fatalf("canonicalReason(%d) = %q, want %q", code, got, want)
		}
	}
	if got := canonicalReason(418); got != "Unknown Status Code" {
		t.Fatalf("expected fallback reason for an unlisted code, got %q", got)
	}
}

func TestNewAPIErrorJSONBody(t *testing.T) {
	apiErr := NewAPIErrorJSON(500, "boom")
	if apiErr.Response.StatusCode != 500 {
		t.Fatalf("unexpected status code: %d", apiErr.Response.StatusCode)
	}
	static, ok := apiErr.Response.Body.(BodyStatic)
	if !ok {
		t.Fatalf("expected a BodyStatic body, got %T", apiErr.Response.Body)
	}
	var decoded map[string]string
	if err := json.Unmarshal(static.Data, &decoded); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if decoded["message"] != "boom" {
		t.Fatalf("unexpected message: %q", decoded["message"])
	}
}

func TestNewAPIErrorHTMLBody(t *testing.T) {
	apiErr := NewAPIErrorHTML(404, "missing")
	if apiErr.Response.ContentType != "text/html" {
		t.Fatalf("expected text/html, got %q", apiErr.Response.ContentType)
	}
	text, ok := apiErr.Response.Body.(BodyText)
	if !ok {
		t.Fatalf("expected a BodyText body, got %T", apiErr.Response.Body)
	}
	if !strings.Contains(string(text), "missing") {
		t.Fatalf("expected the HTML body to contain the message")
	}
	if !strings.Contains(string(text), "404 Not Found") {
		t.Fatalf("expected the HTML body to contain the status line")
	}
}

func TestParseErrorMessage(t *testing.T) {
	err := newParseError("bad thing: %d", 7)
	if err.Error() != "bad thing: 7" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
