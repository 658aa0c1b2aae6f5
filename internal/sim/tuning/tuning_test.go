package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsFillZeroValues(t *testing.T) {
	p := Default()
	if p.TickRateHz != 60 {
		t.Errorf("TickRateHz = %d, want 60", p.TickRateHz)
	}
	if p.SlowTickPeriod != 100 {
		t.Errorf("SlowTickPeriod = %d, want 100", p.SlowTickPeriod)
	}
	if p.GridSmoothingAlpha != 0.1 {
		t.Errorf("GridSmoothingAlpha = %v, want 0.1", p.GridSmoothingAlpha)
	}
	if p.MaxRealCitizensFloor != 10000 || p.MaxRealCitizensCeil != 200000 {
		t.Errorf("citizen cap bounds = [%d, %d]", p.MaxRealCitizensFloor, p.MaxRealCitizensCeil)
	}
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	body := "tick_rate_hz: 30\nslow_tick_period: 50\ntax_residential: 0.05\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.TickRateHz != 30 {
		t.Errorf("TickRateHz = %d, want 30", p.TickRateHz)
	}
	if p.SlowTickPeriod != 50 {
		t.Errorf("SlowTickPeriod = %d, want 50", p.SlowTickPeriod)
	}
	if p.TaxResidential != 0.05 {
		t.Errorf("TaxResidential = %v, want 0.05", p.TaxResidential)
	}
	// Untouched fields come from defaults.
	if p.TaxCommercial != 0.10 {
		t.Errorf("TaxCommercial = %v, want default 0.10", p.TaxCommercial)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "unknown key", body: "tick_rate_hz: 30\nslowtick_period: 50\n"},
		{name: "wrong type", body: "tick_rate_hz: fast\n"},
		{name: "tax above one", body: "tax_residential: 9\n"},
		{name: "zero tick rate", body: "tick_rate_hz: 0\n"},
	}
	for _, tc := range cases {
		dir := t.TempDir()
		path := filepath.Join(dir, "params.yaml")
		if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: load accepted %q", tc.name, tc.body)
		}
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	if err := os.WriteFile(path, []byte("tick_rate_hz: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
