package numutil

import (
	"math"
	"testing"
)

func TestParseFloatMarkers(t *testing.T) {
	for _, raw := range []string{"", "nan", "NaN", "inf", "Inf", "-inf", "null", "NULL", "none", "None", "  "} {
		if v, ok := ParseFloat(raw); ok || v != 0 {
			t.Errorf("ParseFloat(%q) = (%v, %v), want (0, false)", raw, v, ok)
		}
	}
}

func TestParseFloatNumbers(t *testing.T) {
	cases := map[string]float64{
		"12.5":   12.5,
		" 3.75 ": 3.75,
		"-0.5":   -0.5,
		"0":      0,
	}
	for raw, want := range cases {
		v, ok := ParseFloat(raw)
		if !ok || v != want {
			t.Errorf("ParseFloat(%q) = (%v, %v), want (%v, true)", raw, v, ok, want)
		}
	}
}

func TestParseFloatGarbage(t *testing.T) {
	for _, raw := range []string{"abc", "1.2.3", "12,5"} {
		if v, ok := ParseFloat(raw); ok || v != 0 {
			t.Errorf("ParseFloat(%q) = (%v, %v), want (0, false)", raw, v, ok)
		}
	}
}

func TestRound2HalfUp(t *testing.T) {
	cases := map[float64]float64{
		1.125:  1.13, // exact binary half rounds up, not to even
		1.375:  1.38,
		1.004:  1.0,
		1.006:  1.01,
		19.999: 20.0,
		0:      0,
		-1.125: -1.13, // negative halves mirror positive ones
		-1.375: -1.38,
		-1.004: -1.0,
		-1.006: -1.01,
	}
	for in, want := range cases {
		if got := Round2(in); math.Abs(got-want) > 1e-9 {
			t.Errorf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestSafeFloatNonFinite(t *testing.T) {
	if SafeFloat(math.NaN()) != nil {
		t.Error("NaN should sanitize to nil")
	}
	if SafeFloat(math.Inf(1)) != nil {
		t.Error("+Inf should sanitize to nil")
	}
	if SafeFloat(math.Inf(-1)) != nil {
		t.Error("-Inf should sanitize to nil")
	}
	if v := SafeFloat(1.234); v == nil || *v != 1.23 {
		t.Errorf("SafeFloat(1.234) = %v, want 1.23", v)
	}
}
