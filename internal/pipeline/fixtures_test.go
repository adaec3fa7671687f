package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/apl-diff/internal/common"
)

func writeFixtures(t *testing.T, diff string) common.FixturesConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := common.FixturesConfig{Dir: dir, OldFile: "APL13-014.pdf", NewFile: "APL25-008.pdf", Diff: "Diff_13-014_25-008.json"}
	for name, body := range map[string]string{
		cfg.OldFile: "%PDF-1.4 old",
		cfg.NewFile: "%PDF-1.4 new",
		cfg.Diff:    diff,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func TestFixtureLoader_Load(t *testing.T) {
	cfg := writeFixtures(t, twoItemDiff)
	fx, err := NewFixtureLoader(cfg, nil).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fx.Old.Name != "APL13-014.pdf" || string(fx.New.Data) != "%PDF-1.4 new" || len(fx.DiffJSON) == 0 {
		t.Fatalf("unexpected fixtures: %+v", fx)
	}
}

func TestFixtureLoader_NormalizesExampleKeys(t *testing.T) {
	cfg := writeFixtures(t, `{"Title": "t", "Categories": {"Additions": [], "Updates": [], "Redactions": []}}`)
	if _, err := NewFixtureLoader(cfg, nil).Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestFixtureLoader_Missing(t *testing.T) {
	cfg := writeFixtures(t, twoItemDiff)
	if err := os.Remove(filepath.Join(cfg.Dir, cfg.NewFile)); err != nil {
		t.Fatal(err)
	}
	_, err := NewFixtureLoader(cfg, nil).Load()
	if common.CodeOf(err) != common.CodeFixtureMissing {
		t.Fatalf("code = %s (%v)", common.CodeOf(err), err)
	}
	if common.HTTPStatus(err) != 500 {
		t.Fatalf("missing fixtures must map to 500")
	}
}

func TestFixtureLoader_InvalidDiff(t *testing.T) {
	cfg := writeFixtures(t, `{"title": "t"}`)
	if _, err := NewFixtureLoader(cfg, nil).Load(); common.CodeOf(err) != common.CodeFixtureMissing {
		t.Fatalf("expected FIXTURE_MISSING, got %v", err)
	}
}
