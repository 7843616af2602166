package netguard

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/goleak"
)

func TestCheckRedirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		target          string
		hops            int
		allowPrivateIPs bool
		wantErr         string // empty means the hop is permitted
	}{
		{
			name:    "private target blocked",
			target:  "http://10.0.0.1/internal",
			wantErr: "redirect to unsafe URL",
		},
		{
			name:    "loopback target blocked",
			target:  "http://127.0.0.1/admin",
			wantErr: "redirect to unsafe URL",
		},
		{
			name:    "metadata endpoint blocked",
			target:  "http://169.254.169.254/latest/meta-data/",
			wantErr: "redirect to unsafe URL",
		},
		{
			name:            "private target permitted when relaxed",
			target:          "http://10.0.0.1/internal",
			allowPrivateIPs: true,
		},
		{
			name:            "file scheme blocked even when relaxed",
			target:          "file:///etc/passwd",
			allowPrivateIPs: true,
			wantErr:         "redirect to unsafe URL",
		},
		{
			name:   "public target permitted",
			target: "https://api.example.com/v2/resource",
		},
		{
			name:    "chain length capped",
			target:  "https://api.example.com/next",
			hops:    5,
			wantErr: "stopped after 5 redirects",
		},
		{
			name:   "hop below the cap permitted",
			target: "https://api.example.com/next",
			hops:   4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			check := checkRedirect(5, tt.allowPrivateIPs)
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			via := make([]*http.Request, tt.hops)

			err := check(req, via)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("checkRedirect(%q) unexpected error: %v", tt.target, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("checkRedirect(%q) expected error containing %q, got nil", tt.target, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("checkRedirect(%q) error = %v, want substring %q", tt.target, err, tt.wantErr)
			}
		})
	}
}

// The guarded dialer is the last line of the rebinding defense: even an
// address that slipped past the pre-dispatch checks must be re-classified at
// connect time. Every case here is rejected before any socket is opened.
func TestGuardedDialContext_BlocksPrivateAddresses(t *testing.T) {
	t.Parallel()

	addrs := []string{
		"127.0.0.1:80",
		"10.0.0.1:443",
		"192.168.1.10:8080",
		"169.254.169.254:80",
		"[::1]:80",
		"localhost:80",
	}

	for _, addr := range addrs {
		t.Run(addr, func(t *testing.T) {
			t.Parallel()
			conn, err := guardedDialContext(t.Context(), "tcp", addr)
			if conn != nil {
				_ = conn.Close()
				t.Fatalf("guardedDialContext(%q) returned a connection, want rejection", addr)
			}
			if err == nil {
				t.Fatalf("guardedDialContext(%q) expected error, got nil", addr)
			}
			if !strings.Contains(err.Error(), "dial blocked") {
				t.Errorf("guardedDialContext(%q) error = %v, want dial-time block", addr, err)
			}
		})
	}
}

func TestClient_Redirects(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	t.Run("unsafe scheme blocked mid-chain", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "file:///etc/passwd", http.StatusFound)
		}))
		defer srv.Close()

		client, _ := newTestClient(t, Options{})

		_, err := client.Get(t.Context(), srv.URL, AllowPrivateIPs())
		if err == nil {
			t.Fatal("redirect to file: must fail even with AllowPrivateIPs")
		}
		if !strings.Contains(err.Error(), "redirect to unsafe URL") {
			t.Errorf("error = %v, want redirect rejection", err)
		}
	})

	t.Run("chain length capped", func(t *testing.T) {
		var srv *httptest.Server
		hop := 0
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hop++
			http.Redirect(w, r, fmt.Sprintf("%s/hop/%d", srv.URL, hop), http.StatusFound)
		}))
		defer srv.Close()

		client, _ := newTestClient(t, Options{})

		_, err := client.Get(t.Context(), srv.URL, AllowPrivateIPs())
		if err == nil {
			t.Fatal("unbounded redirect chain must fail")
		}
		if !strings.Contains(err.Error(), "stopped after 5 redirects") {
			t.Errorf("error = %v, want redirect cap", err)
		}
	})
}
