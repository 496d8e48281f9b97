package validation

import (
	"errors"
	"testing"
)

func TestValidateURL(t *testing.T) {
	cases := []struct {
		name         string
		url          string
		requireHTTPS bool
		wantErr      bool
	}{
		{"empty passes", "", true, false},
		{"https passes", "https://driftwood.example", true, false},
		{"http rejected when https required", "http://driftwood.example", true, true},
		{"http localhost allowed", "http://localhost:8080", true, false},
		{"http loopback allowed", "http://127.0.0.1:8080", true, false},
		{"http fine otherwise", "http://driftwood.example", false, false},
		{"missing scheme", "driftwood.example/path", false, true},
		{"missing host", "https://", false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateURL(tc.url, "base_url", tc.requireHTTPS)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tc.url, err, tc.wantErr)
			}
			if err != nil {
				var uerr URLError
				if !errors.As(err, &uerr) {
					t.Errorf("error is %T, want URLError", err)
				}
			}
		})
	}
}
