package ingest

import (
	"strings"
	"testing"
)

func TestParseValueNumbers(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"123.4", 123.4},
		{"123,4", 123.4},
		{" 42 ", 42},
		{"0", 0},
		{"0,0", 0},
	}
	for _, tc := range cases {
		value, ok, err := ParseValue(FieldErzeugungKWh, "Dach_kWh", tc.raw)
		if err != nil {
			t.Errorf("ParseValue(%q): %v", tc.raw, err)
			continue
		}
		if !ok {
			t.Errorf("ParseValue(%q) absent, want %v", tc.raw, tc.want)
			continue
		}
		if value.Num != tc.want {
			t.Errorf("ParseValue(%q) = %v, want %v", tc.raw, value.Num, tc.want)
		}
	}
}

func TestParseValueBlankIsAbsent(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t"} {
		_, ok, err := ParseValue(FieldErzeugungKWh, "Dach_kWh", raw)
		if err != nil {
			t.Fatalf("blank cell must not error: %v", err)
		}
		if ok {
			t.Fatalf("blank cell %q must be absent, not zero", raw)
		}
	}
}

func TestParseValueRejectsGarbage(t *testing.T) {
	_, _, err := ParseValue(FieldErzeugungKWh, "Dach_kWh", "abc")
	if err == nil {
		t.Fatal("expected error for non-numeric cell")
	}
	if !strings.Contains(err.Error(), `"abc"`) || !strings.Contains(err.Error(), `"Dach_kWh"`) {
		t.Fatalf("error must name value and column: %v", err)
	}
}

func TestParseValueRejectsNonFiniteNumbers(t *testing.T) {
	// strconv.ParseFloat accepts these spellings, but they would poison
	// every downstream sum and comparison.
	for _, raw := range []string{"NaN", "nan", "Inf", "-Inf", "+Inf", "Infinity"} {
		_, _, err := ParseValue(FieldErzeugungKWh, "Dach_kWh", raw)
		if err == nil {
			t.Errorf("ParseValue(%q) accepted, want error", raw)
			continue
		}
		if !strings.Contains(err.Error(), "ungültiger Wert") {
			t.Errorf("ParseValue(%q) error = %v", raw, err)
		}
	}
}

func TestParseValueRejectsNegativeMeasurements(t *testing.T) {
	_, _, err := ParseValue(FieldErzeugungKWh, "Dach_kWh", "-5")
	if err == nil {
		t.Fatal("expected error for negative measurement")
	}
	if !strings.Contains(err.Error(), "negativer Wert") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestParseValueTruncatesLadevorgaenge(t *testing.T) {
	value, ok, err := ParseValue(FieldLadevorgaenge, "Wallbox_Ladevorgaenge", "12,7")
	if err != nil || !ok {
		t.Fatalf("parse: ok=%v err=%v", ok, err)
	}
	if value.Num != 12 {
		t.Fatalf("ladevorgaenge = %v, want truncated 12", value.Num)
	}
}

func TestParseValueTextField(t *testing.T) {
	value, ok, err := ParseValue(FieldSonderkostenNotiz, "Dach_Sonderkosten_Notiz", "  Wechselrichter getauscht  ")
	if err != nil || !ok {
		t.Fatalf("parse: ok=%v err=%v", ok, err)
	}
	if !value.IsText || value.Text != "Wechselrichter getauscht" {
		t.Fatalf("text value = %+v", value)
	}
}

func TestValidPeriod(t *testing.T) {
	valid := [][2]int{{2000, 1}, {2100, 12}, {2026, 6}}
	for _, p := range valid {
		if !ValidPeriod(p[0], p[1]) {
			t.Errorf("ValidPeriod(%d, %d) = false", p[0], p[1])
		}
	}
	invalid := [][2]int{{1999, 12}, {2101, 1}, {2026, 0}, {2026, 13}, {0, 0}}
	for _, p := range invalid {
		if ValidPeriod(p[0], p[1]) {
			t.Errorf("ValidPeriod(%d, %d) = true", p[0], p[1])
		}
	}
}
