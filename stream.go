package gows

import (
	"crypto/tls"
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/pkcs12"
)

// NetStream is a uniform read/write abstraction over a plain TCP
// connection or a TLS-terminated one, built once per server from an
// optional PKCS#12 identity (spec.md §4.2).
type NetStream struct {
	tlsConfig *tls.Config
}

// NewNetStream constructs the stream facade. When certPath is non-empty the
// file is read and decoded as a PKCS#12 identity (decrypted with
// certPass); an unreadable or undecodable identity file is a fatal startup
// error. An empty certPath yields a pass-through (no TLS) stream.
func NewNetStream(certPath, certPass string) (*NetStream, error) {
	if certPath == "" {
		return &NetStream{}, nil
	}

	der, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("netstream: failed to read certificate %q: %w", certPath, err)
	}

	key, cert, err := pkcs12.Decode(der, certPass)
	if err != nil {
		return nil, fmt.Errorf("netstream: failed to decode PKCS#12 identity: %w", err)
	}

	tlsCert := tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}

	return &NetStream{
		tlsConfig: &tls.Config{Certificates: []tls.Certificate{tlsCert}},
	}, nil
}

// Wrap returns a read/write endpoint for conn: the plain socket when TLS is
// not configured, or a TLS session after performing the server-side
// handshake. A handshake failure on one connection must never terminate
// the server; the caller logs it and drops just that connection.
func (n *NetStream) Wrap(conn net.Conn) (net.Conn, error) {
	if n.tlsConfig == nil {
		return conn, nil
	}

	tlsConn := tls.Server(conn, n.tlsConfig)
	if err := tlsConn.Handshake(); err != nil {
		return nil, fmt.Errorf("netstream: TLS handshake failed: %w", err)
	}
	return tlsConn, nil
}

// Enabled reports whether TLS termination is configured.
func (n *NetStream) Enabled() bool {
	return n.tlsConfig != nil
}
