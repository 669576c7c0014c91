package logging

import (
	"strings"
	"testing"
)

// TestRedactSensitiveData tests redaction of credential patterns in strings.
func TestRedactSensitiveData(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantRedact bool
	}{
		{
			name:       "fal api key pair",
			input:      "using 12345678-abcd-4ef0-9876-0123456789ab:0123456789abcdef0123456789abcdef",
			wantRedact: true,
		},
		{
			name:       "authorization key header",
			input:      "Authorization: Key 12345678abcd4ef098760123456789ab",
			wantRedact: true,
		},
		{
			name:       "bearer token",
			input:      "got header bearer abcdefghij1234567890xyz",
			wantRedact: true,
		},
		{
			name:       "long hex secret",
			input:      "secret is deadbeefdeadbeefdeadbeefdeadbeef",
			wantRedact: true,
		},
		{
			name:       "token assignment",
			input:      "token=abcdef123456789",
			wantRedact: true,
		},
		{
			name:       "plain message",
			input:      "generated view at 45 degrees",
			wantRedact: false,
		},
		{
			name:       "empty string",
			input:      "",
			wantRedact: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RedactSensitiveData(tt.input)

			if tt.wantRedact {
				if !strings.Contains(result, RedactedPlaceholder) {
					t.Errorf("expected redaction in %q, got %q", tt.input, result)
				}
			} else {
				if result != tt.input {
					t.Errorf("expected %q unchanged, got %q", tt.input, result)
				}
			}
		})
	}
}

// TestIsSensitiveField tests field name classification.
func TestIsSensitiveField(t *testing.T) {
	tests := []struct {
		fieldName string
		want      bool
	}{
		{"FAL_KEY", true},
		{"fal_key", true},
		{"api_key", true},
		{"authorization", true},
		{"password", true},
		{"angle", false},
		{"image_url", false},
		{"seed", false},
	}

	for _, tt := range tests {
		t.Run(tt.fieldName, func(t *testing.T) {
			if got := IsSensitiveField(tt.fieldName); got != tt.want {
				t.Errorf("IsSensitiveField(%q) = %v, want %v", tt.fieldName, got, tt.want)
			}
		})
	}
}

// TestRedactField tests that sensitive field names hide the value entirely.
func TestRedactField(t *testing.T) {
	if got := RedactField("FAL_KEY", "any-value-at-all"); got != RedactedPlaceholder {
		t.Errorf("expected placeholder for FAL_KEY value, got %q", got)
	}

	if got := RedactField("angle", "45"); got != "45" {
		t.Errorf("expected benign value unchanged, got %q", got)
	}
}

// TestContainsSensitiveData tests the detection helper.
func TestContainsSensitiveData(t *testing.T) {
	if !ContainsSensitiveData("key 12345678-abcd-4ef0-9876-0123456789ab:0123456789abcdef01234567") {
		t.Error("expected FAL key pair to be detected")
	}
	if ContainsSensitiveData("72 views at 5 degree increments") {
		t.Error("expected plain message to pass through")
	}
}
