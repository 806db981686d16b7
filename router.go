package gows

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// Handler is a route's business logic: given an optional request body and
// the merged params mapping, it returns a Response or an ApiError.
type Handler func(body []byte, params map[string]string) (*Response, *ApiError)

// Route is a compiled path pattern paired with a method, handler, and the
// authorize gate spec.md §3 describes.
type Route struct {
	pattern   *regexp.Regexp
	method    string
	path      string
	handler   Handler
	authorize bool
}

// Credentials is a Basic-auth username/password pair. Both must be
// non-empty, and they are provided together or not at all (spec.md §3).
type Credentials struct {
	Username string
	Password string
}

// CORSPolicy is an ordered list of header name/value pairs appended to
// every non-preflight response and returned alone for OPTIONS preflights.
type CORSPolicy struct {
	Headers []Header
}

// PermissiveCORS returns the `cors` flag's documented policy: a wide-open
// Allow-Origin/Methods/Headers/Credentials set.
func PermissiveCORS() *CORSPolicy {
	return &CORSPolicy{Headers: []Header{
		{Name: "Access-Control-Allow-Origin", Value: "*"},
		{Name: "Access-Control-Allow-Methods", Value: "GET, POST, PUT, DELETE"},
		{Name: "Access-Control-Allow-Headers", Value: "Content-Type, Authorization"},
		{Name: "Access-Control-Allow-Credentials", Value: "true"},
	}}
}

// Router holds the registered route table plus the cross-cutting policies
// (CORS, Basic auth) applied during dispatch. It is built once at startup
// and, once Run is called, is read-only and shared by every worker without
// locking (spec.md §5).
type Router struct {
	routes      []*Route
	cors        *CORSPolicy
	credentials *Credentials
	logger      *Logger
}

// NewRouter builds an empty Router. The logger used for response-line
// logging is installed by NewServer once the server's Logger exists.
func NewRouter() *Router {
	return &Router{}
}

// SetCORS installs the CORS policy appended to responses.
func (r *Router) SetCORS(policy *CORSPolicy) {
	r.cors = policy
}

// SetCredentials installs the Basic-auth credentials checked for routes
// registered with authorize=true.
func (r *Router) SetCredentials(creds *Credentials) {
	r.credentials = creds
}

// AddRoute compiles path per spec.md §3's pattern rules and registers a
// route. Registration order is preserved and defines matching precedence.
func (r *Router) AddRoute(path, method string, handler Handler, authorize bool) {
	pattern := compilePattern(path)
	r.routes = append(r.routes, &Route{
		pattern:   pattern,
		method:    method,
		path:      path,
		handler:   handler,
		authorize: authorize,
	})
}

// compilePattern turns a path template into an anchored regex. "/*"
// captures the whole path under "wildcard"; "{name}" segments become named
// captures restricted to a single path segment.
func compilePattern(path string) *regexp.Regexp {
	if path == "/*" {
		return regexp.MustCompile(`^(?P<wildcard>.*)$`)
	}

	var b strings.Builder
	b.WriteString("^")
	i := 0
	for i < len(path) {
		if path[i] == '{' {
			end := strings.IndexByte(path[i:], '}')
			if end < 0 {
				b.WriteString(regexp.QuoteMeta(path[i:]))
				break
			}
			name := path[i+1 : i+end]
			fmt.Fprintf(&b, "(?P<%s>[^/]+)", name)
			i += end + 1
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(path[i])))
		i++
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// DispatchResult carries everything the pipeline needs to write a response
// and log the outcome.
type DispatchResult struct {
	Response *Response
	Method   string
	Path     string
}

// Dispatch routes one request per spec.md §4.7 and returns the response to
// write. It never returns an error: every failure mode is converted to a
// Response up front so the pipeline can unconditionally write it.
func (r *Router) Dispatch(method, target string, body []byte, peerAddr string, headers map[string]string) *DispatchResult {
	path, query := stripQuery(target)

	if method == "OPTIONS" {
		resp := &Response{StatusCode: 204}
		r.appendCORS(resp)
		r.logResponse(resp, method, path, peerAddr)
		return &DispatchResult{Response: resp, Method: method, Path: path}
	}

	for _, route := range r.routes {
		match := route.pattern.FindStringSubmatch(path)
		if match == nil {
			continue
		}

		if route.method != method {
			resp := htmlErrorResponse(405, fmt.Sprintf("method %s not allowed for path %s", method, path))
			r.appendCORS(resp)
			r.logResponse(resp, method, path, peerAddr)
			return &DispatchResult{Response: resp, Method: method, Path: path}
		}

		params := buildParams(route.pattern, match, query)

		if route.authorize {
			if r.credentials == nil {
				resp := NewAPIErrorJSON(500, "server has no credentials configured").Response
				r.appendCORS(resp)
				r.logResponse(resp, method, path, peerAddr)
				return &DispatchResult{Response: resp, Method: method, Path: path}
			}
			authHeader, hasAuth := headers["Authorization"]
			if !hasAuth || !checkAuthorization(authHeader, r.credentials) {
				challenge := basicAuthChallenge()
				r.appendCORS(challenge)
				r.logResponse(challenge, method, path, peerAddr)
				return &DispatchResult{Response: challenge, Method: method, Path: path}
			}
		}

		resp, apiErr := route.handler(body, params)
		if apiErr != nil {
			resp = apiErr.Response
		}
		r.appendCORS(resp)
		r.logResponse(resp, method, path, peerAddr)
		return &DispatchResult{Response: resp, Method: method, Path: path}
	}

	resp := &Response{
		StatusCode:  404,
		ContentType: "application/json",
		Body:        BodyJSON{Value: map[string]string{"message": fmt.Sprintf("No route found for path %s", path)}},
	}
	r.appendCORS(resp)
	r.logResponse(resp, method, path, peerAddr)
	return &DispatchResult{Response: resp, Method: method, Path: path}
}

// buildParams merges named pattern captures with query-string pairs, query
// values overwriting captures of the same name, per spec.md §3.
func buildParams(pattern *regexp.Regexp, match []string, query string) map[string]string {
	params := make(map[string]string)
	for i, name := range pattern.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		params[name] = match[i]
	}

	if len(query) > 0 {
		for _, pair := range strings.Split(query, "&") {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				continue
			}
			params[kv[0]] = kv[1]
		}
	}

	return params
}

func (r *Router) appendCORS(resp *Response) {
	if r.cors == nil {
		return
	}
	resp.Headers = append(resp.Headers, r.cors.Headers...)
}

func (r *Router) logResponse(resp *Response, method, path, peerAddr string) {
	if r.logger == nil {
		return
	}
	statusColor := color.New(color.FgGreen)
	if resp.StatusCode >= 500 {
		statusColor = color.New(color.FgRed)
	} else if resp.StatusCode >= 400 {
		statusColor = color.New(color.FgYellow)
	}
	r.logger.Info("{} {} {} -> {}",
		Plain(method),
		Plain(path),
		Plain(peerAddr),
		Colored(fmt.Sprintf("%d", resp.StatusCode), statusColor),
	)
}

// basicAuthChallenge builds the 401 response spec.md §4.7.1 requires when
// credentials are missing or malformed.
func basicAuthChallenge() *Response {
	resp := NewAPIErrorJSON(401, "authorization required").Response
	resp.AddHeader("WWW-Authenticate", "Basic")
	return resp
}

// checkAuthorization validates an Authorization header against creds per
// spec.md §4.7.1: exactly two whitespace-separated tokens, first is
// "Basic", second is base64(username:password) split on the first ':'.
// Comparison is constant-time (resolves the Open Question in spec.md §9).
func checkAuthorization(headerValue string, creds *Credentials) bool {
	tokens := strings.Fields(headerValue)
	if len(tokens) != 2 || tokens[0] != "Basic" {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(tokens[1])
	if err != nil {
		return false
	}

	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(parts[0]), []byte(creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(parts[1]), []byte(creds.Password)) == 1
	return userOK && passOK
}
