package netguard

import (
	"strings"
	"testing"
)

func TestSanitizeHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		wantErr bool
		errMsg  string
	}{
		{name: "nil headers", headers: nil},
		{name: "empty headers", headers: map[string]string{}},
		{
			name:    "plain headers pass",
			headers: map[string]string{"Accept": "application/json", "X-Request-Source": "meshctl"},
		},
		{
			name:    "underscore and digits in name",
			headers: map[string]string{"X_Custom_2": "ok"},
		},
		{
			name:    "CRLF injection in value",
			headers: map[string]string{"X-Test": "value\r\nX-Injected: pwned"},
			wantErr: true,
			errMsg:  "CR/LF",
		},
		{
			name:    "bare LF in value",
			headers: map[string]string{"X-Test": "line1\nline2"},
			wantErr: true,
			errMsg:  "CR/LF",
		},
		{
			name:    "bare CR in value",
			headers: map[string]string{"X-Test": "line1\rline2"},
			wantErr: true,
			errMsg:  "CR/LF",
		},
		{
			name:    "space in name",
			headers: map[string]string{"X Test": "v"},
			wantErr: true,
			errMsg:  "invalid header name",
		},
		{
			name:    "colon in name",
			headers: map[string]string{"X-Test:": "v"},
			wantErr: true,
			errMsg:  "invalid header name",
		},
		{
			name:    "empty name",
			headers: map[string]string{"": "v"},
			wantErr: true,
			errMsg:  "invalid header name",
		},
		{
			name:    "newline in name",
			headers: map[string]string{"X-Test\n": "v"},
			wantErr: true,
			errMsg:  "invalid header name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sanitized, err := SanitizeHeaders(tt.headers)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if CodeOf(err) != CodeHeaderValidationFailed {
					t.Errorf("code = %q, want %q", CodeOf(err), CodeHeaderValidationFailed)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want error containing %q", err.Error(), tt.errMsg)
				}
				if sanitized != nil {
					t.Error("rejection must not return a partial sanitized map")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sanitized) != len(tt.headers) {
				t.Errorf("sanitized has %d entries, want %d", len(sanitized), len(tt.headers))
			}
		})
	}
}

func TestSanitizeHeaders_LogOnly(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", maxHeaderLogLength+100)
	sanitized, err := SanitizeHeaders(map[string]string{
		"X-Long":  long,
		"X-Token": "token=supersecretvalue",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The sanitized copy is capped and masked; the original map is the one
	// that gets transmitted and must be untouched.
	if len(sanitized["X-Long"]) > maxHeaderLogLength+3 {
		t.Errorf("sanitized copy not capped: %d bytes", len(sanitized["X-Long"]))
	}
	if strings.Contains(sanitized["X-Token"], "supersecretvalue") {
		t.Error("sanitized copy must mask credential values")
	}
}
