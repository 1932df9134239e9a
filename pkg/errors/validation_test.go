package errors

import (
	"math"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "3f2504e0-4f89-11d3-9a0c-0305e82c3301", false},
		{"short", "abc", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"slash", "a/b", true},
		{"traversal", "..", true},
		{"backslash", `a\b`, true},
		{"control char", "a\x01b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"play store", 1080, 1920, false},
		{"ipad", 2048, 2732, false},
		{"zero width", 0, 100, true},
		{"negative height", 100, -1, true},
		{"too large", MaxDimension + 1, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensions(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDimensions(%d, %d) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSize) {
				t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeInvalidSize)
			}
		})
	}
}

func TestValidateQuality(t *testing.T) {
	for _, q := range []float64{0, 0.5, 0.92, 1} {
		if err := ValidateQuality(q); err != nil {
			t.Errorf("ValidateQuality(%v) = %v, want nil", q, err)
		}
	}
	for _, q := range []float64{-0.1, 1.01, math.NaN()} {
		if err := ValidateQuality(q); err == nil {
			t.Errorf("ValidateQuality(%v) = nil, want error", q)
		}
	}
}

func TestValidateBaseName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"indexed", "screenshot-1", false},
		{"variant", "screenshot-left-1700000000000", false},
		{"empty", "", true},
		{"slash", "a/b", true},
		{"hidden", ".env", true},
		{"dotdot", "..", true},
		{"null", "a\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBaseName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
