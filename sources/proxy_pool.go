package sources

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/proxy"
)

const directHost = "direct"

// ProxyPool hands out HTTP clients round-robin. Without proxy URLs it holds a
// single direct client.
type ProxyPool struct {
	clients   []*http.Client
	hosts     []string
	index     atomic.Uint64
	mu        sync.Mutex
	successes map[string]int
	failures  map[string]int
}

type ProxyStats struct {
	Successes int
	Failures  int
}

func NewProxyPool(proxyURLs []string, timeout time.Duration) (*ProxyPool, error) {
	pool := &ProxyPool{
		successes: make(map[string]int),
		failures:  make(map[string]int),
	}

	if len(proxyURLs) == 0 {
		pool.clients = []*http.Client{{Timeout: timeout}}
		pool.hosts = []string{directHost}
		return pool, nil
	}

	seen := make(map[string]bool)
	for _, proxyURL := range proxyURLs {
		if seen[proxyURL] {
			if parsed, err := url.Parse(proxyURL); err == nil {
				slog.Warn("duplicate proxy URL, skipping", "host", parsed.Host)
			}
			continue
		}
		seen[proxyURL] = true

		client, host, err := createClient(proxyURL, timeout)
		if err != nil {
			return nil, err
		}
		pool.clients = append(pool.clients, client)
		pool.hosts = append(pool.hosts, host)
	}

	slog.Info("proxy pool created", "count", len(pool.clients), "hosts", pool.hosts)
	return pool, nil
}

// NewSingleClientPool wraps an existing client, mostly for tests.
func NewSingleClientPool(client *http.Client) *ProxyPool {
	return &ProxyPool{
		clients:   []*http.Client{client},
		hosts:     []string{directHost},
		successes: make(map[string]int),
		failures:  make(map[string]int),
	}
}

func createClient(proxyURL string, timeout time.Duration) (*http.Client, string, error) {
	client := &http.Client{Timeout: timeout}

	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return nil, "", err
	}

	switch parsedURL.Scheme {
	case "socks5":
		var auth *proxy.Auth
		if parsedURL.User != nil {
			password, _ := parsedURL.User.Password()
			auth = &proxy.Auth{
				User:     parsedURL.User.Username(),
				Password: password,
			}
		}

		dialer, err := proxy.SOCKS5("tcp", parsedURL.Host, auth, proxy.Direct)
		if err != nil {
			return nil, "", err
		}
		client.Transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			},
		}
	case "http", "https":
		client.Transport = &http.Transport{Proxy: http.ProxyURL(parsedURL)}
	default:
		slog.Warn("unsupported proxy scheme, using direct connection", "scheme", parsedURL.Scheme)
	}

	// Host only, never credentials
	return client, parsedURL.Host, nil
}

func (p *ProxyPool) Next() (*http.Client, string) {
	idx := p.index.Add(1) - 1
	i := int(idx % uint64(len(p.clients)))
	return p.clients[i], p.hosts[i]
}

func (p *ProxyPool) MarkSuccess(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.successes[host]++
}

func (p *ProxyPool) MarkFailure(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[host]++
}

// Stats returns success and failure counts per proxy host
func (p *ProxyPool) Stats() map[string]ProxyStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make(map[string]ProxyStats, len(p.hosts))
	for _, h := range p.hosts {
		stats[h] = ProxyStats{Successes: p.successes[h], Failures: p.failures[h]}
	}
	return stats
}
