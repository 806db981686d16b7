package gows

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func okHandler(body []byte, params map[string]string) (*Response, *ApiError) {
	return &Response{StatusCode: 200, ContentType: "text/plain", Body: BodyText("ok")}, nil
}

func TestCompilePatternNamedSegmentAndWildcard(t *testing.T) {
	named := compilePattern("/api/files/{name}")
	match := named.FindStringSubmatch("/api/files/report.pdf")
	if match == nil {
		t.Fatalf("expected the named pattern to match")
	}
	params := buildParams(named, match, "")
	if params["name"] != "report.pdf" {
		t.Fatalf("unexpected captured name: %q", params["name"])
	}

	wildcard := compilePattern("/*")
	match = wildcard.FindStringSubmatch("/any/nested/path")
	if match == nil {
		t.Fatalf("expected the wildcard pattern to match everything")
	}
	params = buildParams(wildcard, match, "")
	if params["wildcard"] != "/any/nested/path" {
		t.Fatalf("unexpected wildcard capture: %q", params["wildcard"])
	}
}

func TestBuildParamsQueryOverridesPatternCapture(t *testing.T) {
	pattern := compilePattern("/items/{id}")
	match := pattern.FindStringSubmatch("/items/1")
	params := buildParams(pattern, match, "id=2&extra=3")
	if params["id"] != "2" {
		t.Fatalf("expected query string to override the path capture, got %q", params["id"])
	}
	if params["extra"] != "3" {
		t.Fatalf("expected extra query param to be present, got %q", params["extra"])
	}
}

func TestDispatchReturns404ForUnknownRoute(t *testing.T) {
	router := NewRouter()
	router.AddRoute("/known", "GET", okHandler, false)

	result := router.Dispatch("GET", "/unknown", nil, "127.0.0.1:1234", nil)
	if result.Response.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", result.Response.StatusCode)
	}

	body, ok := result.Response.Body.(BodyJSON)
	if !ok {
		t.Fatalf("expected a BodyJSON 404 body, got %T", result.Response.Body)
	}
	data, err := json.Marshal(body.Value)
	if err != nil {
		t.Fatalf("failed to marshal 404 body: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("404 body is not valid JSON: %v", err)
	}
	if decoded["message"] == "" {
		t.Fatalf("expected a non-empty 404 message")
	}
}

func TestDispatchReturns405OnMethodMismatch(t *testing.T) {
	router := NewRouter()
	router.AddRoute("/known", "GET", okHandler, false)

	result := router.Dispatch("POST", "/known", nil, "127.0.0.1:1234", nil)
	if result.Response.StatusCode != 405 {
		t.Fatalf("expected 405, got %d", result.Response.StatusCode)
	}
}

func TestDispatchOptionsPreflightReturns204WithCORS(t *testing.T) {
	router := NewRouter()
	router.AddRoute("/known", "GET", okHandler, false)
	router.SetCORS(PermissiveCORS())

	result := router.Dispatch("OPTIONS", "/known", nil, "127.0.0.1:1234", nil)
	if result.Response.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", result.Response.StatusCode)
	}

	found := false
	for _, h := range result.Response.Headers {
		if h.Name == "Access-Control-Allow-Origin" && h.Value == "*" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CORS headers on the preflight response")
	}
}

func TestDispatchEnforcesBasicAuth(t *testing.T) {
	router := NewRouter()
	router.AddRoute("/secret", "GET", okHandler, true)
	router.SetCredentials(&Credentials{Username: "admin", Password: "hunter2"})

	// Missing credentials entirely.
	result := router.Dispatch("GET", "/secret", nil, "127.0.0.1:1234", nil)
	if result.Response.StatusCode != 401 {
		t.Fatalf("expected 401 with no Authorization header, got %d", result.Response.StatusCode)
	}

	// Wrong credentials.
	wrongAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:wrong"))
	result = router.Dispatch("GET", "/secret", nil, "127.0.0.1:1234", map[string]string{"Authorization": wrongAuth})
	if result.Response.StatusCode != 401 {
		t.Fatalf("expected 401 with wrong credentials, got %d", result.Response.StatusCode)
	}

	// Correct credentials.
	goodAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:hunter2"))
	result = router.Dispatch("GET", "/secret", nil, "127.0.0.1:1234", map[string]string{"Authorization": goodAuth})
	if result.Response.StatusCode != 200 {
		t.Fatalf("expected 200 with correct credentials, got %d", result.Response.StatusCode)
	}
}

func TestDispatchWithAuthorizeButNoCredentialsConfiguredIs500(t *testing.T) {
	router := NewRouter()
	router.AddRoute("/secret", "GET", okHandler, true)

	result := router.Dispatch("GET", "/secret", nil, "127.0.0.1:1234", nil)
	if result.Response.StatusCode != 500 {
		t.Fatalf("expected 500 when authorize=true but no credentials configured, got %d", result.Response.StatusCode)
	}
}

func TestCheckAuthorizationRejectsMalformedHeader(t *testing.T) {
	creds := &Credentials{Username: "u", Password: "p"}
	cases := []string{
		"",
		"Bearer abc",
		"Basic",
		"Basic not-base64!!",
		"Basic " + base64.StdEncoding.EncodeToString([]byte("no-colon-here")),
	}
	for _, header := range cases {
		if checkAuthorization(header, creds) {
			t.Fatalf("expected header %q to be rejected", header)
		}
	}
}
