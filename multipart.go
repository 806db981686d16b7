package gows

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// multipartBoundary extracts the boundary token from a Content-Type header
// value of the form "multipart/form-data; boundary=...".
func multipartBoundary(contentType string) (string, bool) {
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return "", false
	}
	idx := strings.Index(contentType, "boundary=")
	if idx < 0 {
		return "", false
	}
	boundary := strings.Trim(contentType[idx+len("boundary="):], `" `)
	if boundary == "" {
		return "", false
	}
	return boundary, true
}

// handleMultipartUpload implements spec.md §4.5: a single-file
// multipart/form-data receiver that streams the uploaded bytes straight to
// disk under targetDir (resolved relative to the working directory, with a
// canonical-prefix traversal guard).
//
// The byte-count arithmetic below (Content-Length minus boundary/header
// bytes minus the trailing 6) is the brittle simplification spec.md §4.5
// and §9 document; it is kept verbatim rather than generalized into a full
// multipart/form-data parser (§9 explicitly flags this as a known
// limitation, not a bug to silently fix).
func handleMultipartUpload(reader *bufio.Reader, contentLength int, boundary, targetDir string) (*Response, *ApiError) {
	boundaryBytes := len(boundary)

	// The opening boundary line ("--<boundary>\r\n") is part of the
	// header-byte accounting below; read and discard it.
	openLine, err := reader.ReadString('\n')
	if err != nil {
		return nil, NewAPIErrorJSON(400, fmt.Sprintf("failed to read multipart boundary: %v", err))
	}
	headerBytes := len(openLine)

	var filename string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, NewAPIErrorJSON(400, fmt.Sprintf("failed to read multipart headers: %v", err))
		}
		headerBytes += len(line)
		if line == "\r\n" || line == "\n" {
			break
		}
		if strings.HasPrefix(line, "Content-Disposition:") {
			filename = parseFilename(line)
		}
	}

	if filename == "" {
		return nil, NewAPIErrorJSON(400, "multipart part is missing a filename")
	}

	targetPath, apiErr := resolveUploadPath(targetDir, filename)
	if apiErr != nil {
		return nil, apiErr
	}

	// contentLength - boundary_bytes - header_bytes - 6; the trailing 6
	// accounts for the CRLF pairs framing the closing boundary (spec.md §4.5
	// step 3).
	fileBytes := contentLength - boundaryBytes - headerBytes - 6
	if fileBytes < 0 {
		return nil, NewAPIErrorJSON(400, "malformed multipart upload: negative body length")
	}

	out, err := os.Create(targetPath)
	if err != nil {
		return nil, NewAPIErrorJSON(500, fmt.Sprintf("failed to create upload target: %v", err))
	}
	defer out.Close()

	if _, err := io.CopyN(out, reader, int64(fileBytes)); err != nil {
		return nil, NewAPIErrorJSON(500, fmt.Sprintf("failed to stream upload: %v", err))
	}

	return &Response{
		StatusCode:  200,
		ContentType: "text/plain",
		Body:        BodyText(fmt.Sprintf("File %s uploaded successfully.", filename)),
	}, nil
}

// parseFilename extracts the verbatim filename from a
// "Content-Disposition: form-data; name=\"file\"; filename=\"...\"" line.
func parseFilename(line string) string {
	idx := strings.Index(line, "filename=")
	if idx < 0 {
		return ""
	}
	rest := line[idx+len("filename="):]
	rest = strings.TrimLeft(rest, `"`)
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return strings.TrimSpace(rest)
	}
	return rest[:end]
}

// resolveUploadPath joins "./" + targetDir + filename and enforces that the
// result canonicalizes to somewhere under the process's working directory
// (path-traversal guard per spec.md §4.5).
func resolveUploadPath(targetDir, filename string) (string, *ApiError) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", NewAPIErrorJSON(500, fmt.Sprintf("failed to resolve working directory: %v", err))
	}
	root, err := filepath.EvalSymlinks(cwd)
	if err != nil {
		root = cwd
	}

	base := filepath.Join(root, targetDir)
	target := filepath.Join(base, filename)

	rel, err := filepath.Rel(root, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", NewAPIErrorJSON(400, "upload path escapes the working directory")
	}

	return target, nil
}

// parseContentLength reads the Content-Length header for multipart dispatch
// so it can decide the byte budget up front; it accepts the same values as
// readBody's own inline parse.
func parseContentLength(headers map[string]string) (int, bool) {
	v, ok := headers["Content-Length"]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
