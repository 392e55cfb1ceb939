package ticketcode

import (
	"strconv"
	"strings"
	"testing"
)

func TestGenerateShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := Generate(2025)
		if !Valid(code) {
			t.Fatalf("generated code %q does not match pattern", code)
		}
		if !strings.HasPrefix(code, "FM-2025-") {
			t.Fatalf("generated code %q missing year segment", code)
		}
		suffix, err := strconv.Atoi(code[len("FM-2025-"):])
		if err != nil {
			t.Fatalf("suffix of %q is not numeric: %v", code, err)
		}
		if suffix < 1000 || suffix > 9999 {
			t.Fatalf("suffix %d outside 1000..9999", suffix)
		}
	}
}

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"FM-2025-0001":  true,
		"FM-2025-9999":  true,
		"FM-25-0001":    false,
		"fm-2025-0001":  false,
		"FM-2025-001":   false,
		"FM-2025-00011": false,
		"FM-2025-":      false,
		"":              false,
		" FM-2025-0001": false,
	}
	for code, want := range cases {
		if got := Valid(code); got != want {
			t.Errorf("Valid(%q) = %v, want %v", code, got, want)
		}
	}
}
