package gows

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMultipartBoundary(t *testing.T) {
	boundary, ok := multipartBoundary(`multipart/form-data; boundary=----WebKitFormBoundaryABC`)
	if !ok || boundary != "----WebKitFormBoundaryABC" {
		t.Fatalf("unexpected boundary: %q ok=%v", boundary, ok)
	}

	if _, ok := multipartBoundary("application/json"); ok {
		t.Fatalf("expected no boundary for a non-multipart content type")
	}

	if _, ok := multipartBoundary("multipart/form-data"); ok {
		t.Fatalf("expected no boundary when the header omits the boundary param")
	}
}

func TestParseFilename(t *testing.T) {
	line := `Content-Disposition: form-data; name="file"; filename="report.pdf"` + "\r\n"
	if got := parseFilename(line); got != "report.pdf" {
		t.Fatalf("unexpected filename: %q", got)
	}

	if got := parseFilename("Content-Disposition: form-data; name=\"file\"\r\n"); got != "" {
		t.Fatalf("expected empty filename when the header carries none, got %q", got)
	}
}

func TestResolveUploadPathRejectsTraversal(t *testing.T) {
	if _, apiErr := resolveUploadPath("uploads", "../../etc/passwd"); apiErr == nil {
		t.Fatalf("expected a traversal attempt to be rejected")
	} else if apiErr.Response.StatusCode != 400 {
		t.Fatalf("expected a 400 for a traversal attempt, got %d", apiErr.Response.StatusCode)
	}
}

func TestResolveUploadPathAcceptsOrdinaryFilename(t *testing.T) {
	path, apiErr := resolveUploadPath("", "ordinary.txt")
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if filepath.Base(path) != "ordinary.txt" {
		t.Fatalf("unexpected resolved path: %q", path)
	}
}

func TestHandleMultipartUploadWritesFileExactly(t *testing.T) {
	boundary := "BOUNDARY"
	openLine := "--" + boundary + "\r\n"
	headerLine := `Content-Disposition: form-data; name="file"; filename="upload.txt"` + "\r\n"
	blankLine := "\r\n"
	fileContent := "hello world"

	headerBytes := len(openLine) + len(headerLine) + len(blankLine)
	contentLength := len(boundary) + headerBytes + 6 + len(fileContent)

	wireBytes := openLine + headerLine + blankLine + fileContent
	reader := bufio.NewReader(strings.NewReader(wireBytes))

	relDir := "gows_test_upload_dir"
	if err := os.Mkdir(relDir, 0o755); err != nil {
		t.Fatalf("failed to create upload dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(relDir) })

	resp, apiErr := handleMultipartUpload(reader, contentLength, boundary, relDir)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr.Error())
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	written, err := os.ReadFile(filepath.Join(relDir, "upload.txt"))
	if err != nil {
		t.Fatalf("expected the uploaded file to exist: %v", err)
	}
	if string(written) != fileContent {
		t.Fatalf("unexpected uploaded content: %q", written)
	}
}
