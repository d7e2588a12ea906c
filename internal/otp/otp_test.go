package otp

import (
	"strconv"
	"testing"
)

func TestGenerate_SixDigitsInRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code is not numeric: %q", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code out of range: %d", n)
		}
	}
}

func TestGenerate_EntropyHint(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 2 {
		t.Logf("warning: 50 generated codes are all identical; extremely unlikely")
	}
}
