// Command gows runs the from-scratch HTTP/1.1 + WebSocket server. This is
// deliberately thin: spec.md treats the CLI argument parser as an external
// collaborator, not part of the server's core engineering budget.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"gows"
)

func main() {
	port := pflag.Int("port", 7878, "TCP port to bind")
	threads := pflag.Int("threads", 12, "worker pool size")
	cert := pflag.String("cert", "", "path to a PKCS#12 identity; enables TLS")
	certpass := pflag.String("certpass", "", "PKCS#12 decryption password")
	silent := pflag.Bool("silent", false, "disable the logger")
	cors := pflag.Bool("cors", false, "enable permissive CORS (*)")
	ip := pflag.String("ip", "0.0.0.0", "bind address")
	auth := pflag.String("auth", "", "user:pass Basic-auth credentials")
	compression := pflag.Bool("compression", false, "enable gzip for in-memory bodies")
	index := pflag.String("index", "", "path to a custom index.html")
	pflag.Parse()

	var creds *gows.Credentials
	if *auth != "" {
		parts := strings.SplitN(*auth, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			fmt.Fprintln(os.Stderr, "gows: --auth must be in the form user:pass")
			os.Exit(1)
		}
		creds = &gows.Credentials{Username: parts[0], Password: parts[1]}
	}

	var corsPolicy *gows.CORSPolicy
	if *cors {
		corsPolicy = gows.PermissiveCORS()
	}

	config := &gows.ServerConfig{
		BindAddress: *ip,
		Port:        *port,
		Workers:     *threads,
		CertPath:    *cert,
		CertPass:    *certpass,
		Credentials: creds,
		CORS:        corsPolicy,
		Compression: *compression,
		IndexPath:   *index,
		Silent:      *silent,
	}

	static, err := gows.NewStaticFiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gows: failed to load static assets: %v\n", err)
		os.Exit(1)
	}

	router := gows.NewRouter()
	gows.RegisterDefaultRoutes(router, static, config.IndexPath, creds != nil)

	server, err := gows.NewServer(config, router, static)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gows: %v\n", err)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "gows: %v\n", err)
		os.Exit(1)
	}
}
