package coerce

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPercent_WithAndWithoutSuffix(t *testing.T) {
	t.Parallel()

	inputs := []float64{0, 1, 12.5, 50, 66.67, 99.99, 100}
	for _, want := range inputs {
		plain := fmt.Sprintf("%g", want)
		for _, raw := range []string{plain, plain + "%"} {
			got := Percent(raw, -1)
			if got != want {
				t.Fatalf("Percent(%q) = %v, want %v", raw, got, want)
			}
		}
	}
}

func TestPercent_OutOfRangeFallsBack(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"100.01%", "-3%", "250", "abc%", "NaN"} {
		if got := Percent(raw, 7); got != 7 {
			t.Fatalf("Percent(%q) = %v, want default", raw, got)
		}
	}
	if got := Percent("1,000%", 0); got != 0 {
		t.Fatalf("Percent with separator above range = %v", got)
	}
}

func TestMissingValuesUseDefaults(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "-", "  ", " - "} {
		if got := Int(raw, 9); got != 9 {
			t.Fatalf("Int(%q) = %d", raw, got)
		}
		if got := Float(raw, 1.5); got != 1.5 {
			t.Fatalf("Float(%q) = %v", raw, got)
		}
		if got := Percent(raw, 3); got != 3 {
			t.Fatalf("Percent(%q) = %v", raw, got)
		}
		if _, ok := Duration(raw); ok {
			t.Fatalf("Duration(%q) should be missing", raw)
		}
		if _, err := ParseInt(raw); !errors.Is(err, ErrMissing) {
			t.Fatalf("ParseInt(%q) error = %v, want ErrMissing", raw, err)
		}
	}
	if _, ok := Date(""); ok {
		t.Fatalf("Date(\"\") should be missing")
	}
}

func TestInt(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"120":     120,
		"1,234":   1234,
		"4.9":     4,
		"-12":     -12,
		" 7 ":     7,
		"garbage": 0,
		"1e400":   0,
		"Inf":     0,
	}
	for raw, want := range cases {
		if got := Int(raw, 0); got != want {
			t.Fatalf("Int(%q) = %d, want %d", raw, got, want)
		}
	}
}

func TestFloat(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"4.5":      4.5,
		"1,234.25": 1234.25,
		"-0.5":     -0.5,
		"x":        2,
	}
	for raw, want := range cases {
		if got := Float(raw, 2); got != want {
			t.Fatalf("Float(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want time.Duration
		ok   bool
	}{
		{raw: "32:48", want: 32*time.Minute + 48*time.Second, ok: true},
		{raw: "1:05:10", want: time.Hour + 5*time.Minute + 10*time.Second, ok: true},
		{raw: "00:00", want: 0, ok: true},
		{raw: "abc"},
		{raw: "1:2:3:4"},
		{raw: "-1:30"},
		{raw: "12"},
		{raw: "12:xx"},
	}
	for _, tc := range cases {
		got, ok := Duration(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Duration(%q) = (%v,%v), want (%v,%v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDate(t *testing.T) {
	t.Parallel()

	got, ok := Date("2024-06-01")
	if !ok || !got.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("Date parse = (%v,%v)", got, ok)
	}
	for _, raw := range []string{"2024/06/01", "01-06-2024", "2024-13-01", "-"} {
		if _, ok := Date(raw); ok {
			t.Fatalf("Date(%q) should fail", raw)
		}
	}
}

func TestApply(t *testing.T) {
	t.Parallel()

	if v, err := Apply(Percent, "66.67%"); err != nil || v != 66.67 {
		t.Fatalf("Apply percent = (%v,%v)", v, err)
	}
	if v, err := Apply(Int, "-"); !errors.Is(err, ErrMissing) || v != 0 {
		t.Fatalf("Apply int missing = (%v,%v)", v, err)
	}
	if v, _ := Apply(Duration, "abc"); v != nil {
		t.Fatalf("Apply duration fallback = %v, want nil", v)
	}
	if v, _ := Apply(Text, "  T1 "); v != "T1" {
		t.Fatalf("Apply text = %v", v)
	}
}
