package mcpserver

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBlockedIP(t *testing.T) {
	tests := []struct {
		ip      string
		blocked bool
	}{
		{"127.0.0.1", true},      // loopback
		{"10.0.0.1", true},       // private (Class A)
		{"172.16.0.1", true},     // private (Class B)
		{"192.168.1.1", true},    // private (Class C)
		{"169.254.1.1", true},    // link-local
		{"::1", true},            // IPv6 loopback
		{"0.0.0.0", true},        // unspecified IPv4
		{"::", true},             // unspecified IPv6
		{"fe80::1", true},        // IPv6 link-local
		{"fd00::1", true},        // IPv6 ULA (private)
		{"224.0.0.251", true},    // multicast (mDNS)
		{"ff02::1", true},        // IPv6 link-local multicast
		{"8.8.8.8", false},       // public (Google DNS)
		{"1.1.1.1", false},       // public (Cloudflare DNS)
		{"93.184.216.34", false}, // public (example.com)
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			require.NotNil(t, ip, "failed to parse IP: %s", tt.ip)
			assert.Equal(t, tt.blocked, isBlockedIP(ip))
		})
	}
}

func TestNewSafeHTTPClient(t *testing.T) {
	client := newSafeHTTPClient(5 * time.Second)
	require.NotNil(t, client)
	assert.Equal(t, 5*time.Second, client.Timeout)
	assert.NotNil(t, client.CheckRedirect)
	assert.NotNil(t, client.Transport)

	assert.Equal(t, 2*time.Minute, newSafeHTTPClient(2*time.Minute).Timeout)
}

func TestNewSafeHTTPClient_CheckRedirect(t *testing.T) {
	client := newSafeHTTPClient(5 * time.Second)

	t.Run("too many redirects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "https://example.com/schema.json", nil)
		via := make([]*http.Request, maxRedirects)
		err := client.CheckRedirect(req, via)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stopped after 5 redirects")
	})

	t.Run("non-http scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "https://example.com/schema.json", nil)
		req.URL.Scheme = "ftp"
		err := client.CheckRedirect(req, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redirect to ftp scheme blocked")
	})

	t.Run("loopback target", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://127.0.0.1/schema.json", nil)
		err := client.CheckRedirect(req, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redirect blocked")
	})
}

func TestNewSafeHTTPClient_BlocksLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	resp, err := newSafeHTTPClient(5 * time.Second).Get(srv.URL)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked request to private/loopback IP")
}
