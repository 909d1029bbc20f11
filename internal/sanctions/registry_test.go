package sanctions

import (
	"testing"

	"chainguard/internal/domain"
)

func TestLoad_EmbeddedDataset(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Size() == 0 {
		t.Fatal("expected non-empty registry")
	}
	if r.skipped != 0 {
		t.Errorf("expected no skipped rows in shipped dataset, got %d", r.skipped)
	}
}

func TestLookup_ExactMatchCaseInsensitive(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Tornado Cash Router, stored lowercase in the dataset.
	hit := r.Lookup("0x910CBD523D972eb0a6f4cAe4618aD62622b39DbF")
	if hit == nil {
		t.Fatal("expected sanctions hit for Tornado Cash Router")
	}
	if hit.Type != domain.TypeMixer {
		t.Errorf("expected mixer type, got %s", hit.Type)
	}
	if hit.Severity != domain.RiskCritical {
		t.Errorf("expected critical severity, got %s", hit.Severity)
	}
	if hit.Source != "OFAC" {
		t.Errorf("expected OFAC source, got %s", hit.Source)
	}
}

func TestLookup_NoPartialMatch(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := r.Lookup("0x910cbd523d972eb0a6f4cae4618ad62622b39dbe"); got != nil {
		t.Errorf("near-miss address must not match, got %+v", got)
	}
	if got := r.Lookup("0x910cbd"); got != nil {
		t.Errorf("prefix must not match, got %+v", got)
	}
	if got := r.Lookup("garbage"); got != nil {
		t.Errorf("invalid address must not match, got %+v", got)
	}
}

func TestLoadFrom_SkipsMalformedRows(t *testing.T) {
	data := []byte(`[
		{"address": "0x910cbd523d972eb0a6f4cae4618ad62622b39dbf", "name": "A", "type": "mixer", "source": "OFAC", "severity": "critical"},
		{"address": "0xc8fe1c81e927540fcc99ebb3c880a840082293da, tr2ntb64cqmx6tqfwisoc6o7barfwhhpiw", "name": "B", "type": "terrorism", "source": "NBCTF", "severity": "critical"},
		{"address": "not-an-address", "name": "C", "type": "scam", "source": "X", "severity": "high"}
	]`)

	r, err := loadFrom(data)
	if err != nil {
		t.Fatalf("loadFrom failed: %v", err)
	}
	if r.Size() != 1 {
		t.Errorf("expected 1 valid entry, got %d", r.Size())
	}
	if r.skipped != 2 {
		t.Errorf("expected 2 skipped rows, got %d", r.skipped)
	}
}

func TestStatsAndFilters(t *testing.T) {
	r, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	stats := r.Stats()
	if stats.Total != r.Size() {
		t.Errorf("stats total %d != size %d", stats.Total, r.Size())
	}
	if stats.ByType["mixer"] == 0 {
		t.Error("expected mixer entries in dataset")
	}

	mixers := r.ByType(domain.TypeMixer)
	if len(mixers) != stats.ByType["mixer"] {
		t.Errorf("ByType mixer count %d != stats %d", len(mixers), stats.ByType["mixer"])
	}

	ofac := r.BySource("ofac")
	if len(ofac) == 0 {
		t.Error("expected OFAC entries via case-insensitive source filter")
	}

	tornado := r.Search("tornado")
	if len(tornado) == 0 {
		t.Error("expected search hits for 'tornado'")
	}
}
