package netguard

import (
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		url          string
		allowPrivate bool
		wantErr      bool
		errMsg       string // substring to check in error message
	}{
		// Valid public URLs
		{name: "valid https URL", url: "https://example.com/page"},
		{name: "valid http URL", url: "http://example.com/page"},
		{name: "valid URL with port", url: "https://example.com:8080/api"},
		{name: "public IP literal", url: "http://93.184.216.34/"},

		// Dangerous schemes: blocked even with allowPrivate
		{name: "file scheme", url: "file:///etc/passwd", wantErr: true, errMsg: "never a valid outbound target"},
		{name: "file scheme with allowPrivate", url: "file:///etc/passwd", allowPrivate: true, wantErr: true, errMsg: "never a valid outbound target"},
		{name: "data scheme", url: "data:text/html,<script>", wantErr: true, errMsg: "never a valid outbound target"},
		{name: "data scheme with allowPrivate", url: "data:text/html,x", allowPrivate: true, wantErr: true, errMsg: "never a valid outbound target"},
		{name: "javascript scheme", url: "javascript:alert(1)", wantErr: true, errMsg: "never a valid outbound target"},
		{name: "javascript uppercase", url: "JAVASCRIPT:alert(1)", wantErr: true, errMsg: "never a valid outbound target"},

		// Other disallowed schemes
		{name: "ftp scheme", url: "ftp://example.com/file", wantErr: true, errMsg: "disallowed scheme"},
		{name: "gopher scheme", url: "gopher://example.com/", wantErr: true, errMsg: "disallowed scheme"},

		// Malformed input
		{name: "empty URL", url: "", wantErr: true, errMsg: "empty URL"},
		{name: "whitespace URL", url: "   ", wantErr: true, errMsg: "empty URL"},
		{name: "malformed URL", url: "http://[::1", wantErr: true, errMsg: "unparsable"},
		{name: "scheme only", url: "http://", wantErr: true, errMsg: "no hostname"},

		// Private IP literals
		{name: "loopback", url: "http://127.0.0.1/admin", wantErr: true, errMsg: "loopback"},
		{name: "loopback allowed", url: "http://127.0.0.1/admin", allowPrivate: true},
		{name: "loopback with port", url: "http://127.0.0.1:3000/api", wantErr: true, errMsg: "loopback"},
		{name: "private 10.x", url: "http://10.0.0.1/internal", wantErr: true, errMsg: "private"},
		{name: "private 192.168.x", url: "http://192.168.1.1/router", wantErr: true, errMsg: "private"},
		{name: "private allowed", url: "http://192.168.1.1/router", allowPrivate: true},
		{name: "AWS metadata", url: "http://169.254.169.254/latest/meta-data/", wantErr: true, errMsg: "cloud-metadata"},
		{name: "IPv6 loopback", url: "http://[::1]/admin", wantErr: true, errMsg: "loopback"},
		{name: "mapped IPv4 loopback", url: "http://[::ffff:127.0.0.1]/", wantErr: true, errMsg: "loopback"},
		{name: "unspecified", url: "http://0.0.0.0/", wantErr: true, errMsg: "unspecified"},

		// Internal-looking domains (classifier escalation)
		{name: "localhost", url: "http://localhost/admin", wantErr: true, errMsg: "loopback hostname"},
		{name: "localhost allowed", url: "http://localhost:8080/admin", allowPrivate: true},
		{name: "GCP metadata hostname", url: "http://metadata.google.internal/computeMetadata/v1/", wantErr: true, errMsg: "metadata"},
		{name: "internal suffix", url: "https://vault.corp/secrets", wantErr: true, errMsg: "internal"},
		{name: "cluster-local service", url: "http://payments.svc/api", wantErr: true, errMsg: "internal"},
		{name: "single-label host", url: "http://consul/ui", wantErr: true},
		{name: "internal suffix allowed", url: "https://vault.corp/secrets", allowPrivate: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateURL(tt.url, tt.allowPrivate)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateURL(%q, %v) expected error, got nil", tt.url, tt.allowPrivate)
				}
				if CodeOf(err) != CodeSSRFViolation {
					t.Errorf("ValidateURL(%q) code = %q, want %q", tt.url, CodeOf(err), CodeSSRFViolation)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateURL(%q) error = %q, want error containing %q", tt.url, err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("ValidateURL(%q, %v) unexpected error: %v", tt.url, tt.allowPrivate, err)
			}
		})
	}
}

func TestValidateURL_ErrorNamesHost(t *testing.T) {
	t.Parallel()

	err := ValidateURL("http://10.0.0.1/internal", false)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "10.0.0.1") {
		t.Errorf("error %q should name the offending host", err.Error())
	}
}
