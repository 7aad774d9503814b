// ABOUTME: HTTP transport construction for reaching the backend
// ABOUTME: Supports an optional SSH+SOCKS5 tunnel through a jumpbox and TLS verification override

package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cloudfoundry/socks5-proxy"
)

// NewTransport returns a transport that tunnels through allProxy when set.
// allProxy has the form ssh+socks5://user@host:port?private-key=/path/to/key.
func NewTransport(allProxy string, skipTLSVerify bool) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if skipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	if allProxy == "" {
		return transport, nil
	}

	dial, err := socks5DialContext(allProxy)
	if err != nil {
		return nil, err
	}
	transport.DialContext = dial
	transport.Proxy = nil
	slog.Debug("Using SSH+SOCKS5 tunnel", "proxy", redactProxy(allProxy))
	return transport, nil
}

// socks5DialContext creates a dial function for SSH+SOCKS5 proxy connections.
// The SSH dialer is created lazily on first use and then shared.
func socks5DialContext(allProxy string) (func(ctx context.Context, network, address string) (net.Conn, error), error) {
	proxyURL, err := url.Parse(strings.TrimPrefix(allProxy, "ssh+"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse INSIGHT_ALL_PROXY: %w", err)
	}
	if proxyURL.Host == "" {
		return nil, fmt.Errorf("INSIGHT_ALL_PROXY missing host")
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	keyPath := proxyURL.Query().Get("private-key")
	if keyPath == "" {
		return nil, fmt.Errorf("INSIGHT_ALL_PROXY missing required 'private-key' query param")
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH private key %s: %w", keyPath, err)
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		d := dialer
		mut.RUnlock()

		if d != nil {
			return d(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(key), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}, nil
}

// redactProxy drops the query string, which names a key file path.
func redactProxy(allProxy string) string {
	if i := strings.Index(allProxy, "?"); i >= 0 {
		return allProxy[:i]
	}
	return allProxy
}
