package gows

import (
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// RegisterDefaultRoutes wires the route set spec.md §6.2 names onto router:
// the embedded static bundle, a streaming file download, a JSON directory
// listing, and a catch-all serving index.html (or a --index override).
// requireAuth gates the two filesystem-exposing routes (§4.7.1): it should
// be true exactly when the server was configured with Basic-auth
// credentials (`--auth`), so those routes actually enforce the challenge
// spec.md §8 scenario 6 describes instead of always passing authorize=false.
func RegisterDefaultRoutes(router *Router, static *StaticFiles, indexOverride string, requireAuth bool) {
	// spec.md §6.2 writes this route as "/static/{file}?" to mean the file
	// name is optional (falling back to index.html); §3's formal pattern
	// grammar only knows "{name}" and "/*", so the optional segment is
	// expressed as two registrations instead of inventing "?" syntax in
	// compilePattern.
	router.AddRoute("/static", "GET", staticHandler(static), false)
	router.AddRoute("/static/{file}", "GET", staticHandler(static), false)
	router.AddRoute("/api/files", "GET", filesHandler, requireAuth)
	router.AddRoute("/api/directory", "GET", directoryHandler, requireAuth)
	router.AddRoute("/*", "GET", catchAllHandler(static, indexOverride), false)
}

func staticHandler(static *StaticFiles) Handler {
	return func(body []byte, params map[string]string) (*Response, *ApiError) {
		fileName := params["file"]
		if fileName == "" {
			fileName = "index.html"
		}

		data, err := static.Get(fileName)
		if err != nil {
			return nil, NewAPIErrorHTML(404, err.Error())
		}

		resp := &Response{
			StatusCode:  200,
			ContentType: contentTypeForFile(fileName),
			Body:        BodyStatic{Name: fileName, Data: data},
		}
		resp.AddHeader("Cache-Control", "public, max-age=31536000")
		return resp, nil
	}
}

func filesHandler(body []byte, params map[string]string) (*Response, *ApiError) {
	path, ok := params["path"]
	if !ok || path == "" {
		return nil, NewAPIErrorJSON(500, "Missing path parameter")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apiErrorFromIOError(err, os.IsNotExist(err))
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, NewAPIErrorJSON(500, err.Error())
	}

	name := filepath.Base(path)
	return &Response{
		StatusCode:  200,
		ContentType: contentTypeForFile(name),
		Body: BodyFile{
			File:       file,
			Name:       name,
			Size:       info.Size(),
			Attachment: true,
		},
	}, nil
}

func directoryHandler(body []byte, params map[string]string) (*Response, *ApiError) {
	path, ok := params["path"]
	if !ok || path == "" {
		return nil, NewAPIErrorJSON(500, "Missing path parameter")
	}

	listing, err := listDirectory(path)
	if err != nil {
		return nil, apiErrorFromIOError(err, os.IsNotExist(err))
	}

	return &Response{
		StatusCode: 200,
		Body:       BodyJSON{Value: listing},
	}, nil
}

func catchAllHandler(static *StaticFiles, indexOverride string) Handler {
	return func(body []byte, params map[string]string) (*Response, *ApiError) {
		if indexOverride != "" {
			data, err := os.ReadFile(indexOverride)
			if err != nil {
				return nil, NewAPIErrorHTML(404, err.Error())
			}
			return &Response{
				StatusCode:  200,
				ContentType: "text/html",
				Body:        BodyText(string(data)),
			}, nil
		}

		data, err := static.Get("index.html")
		if err != nil {
			return nil, NewAPIErrorHTML(404, err.Error())
		}
		return &Response{
			StatusCode:  200,
			ContentType: "text/html",
			Body:        BodyText(string(data)),
		}, nil
	}
}

// contentTypeForFile resolves a best-effort Content-Type from the file
// extension. No third-party MIME-sniffing library appears anywhere in the
// example pack (the original Rust source used mime_guess, a crate with no
// Go-ecosystem equivalent represented in the corpus), so this falls back to
// the standard library's extension→type table, matching stdlib's own
// net/http.ServeContent convention.
func contentTypeForFile(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		// Strip any "; charset=..." parameter: spec.md's examples expect
		// the bare MIME type (e.g. "text/html").
		if idx := strings.IndexByte(ct, ';'); idx >= 0 {
			ct = ct[:idx]
		}
		return ct
	}
	return "application/octet-stream"
}
