package reference

import (
	"testing"

	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

func TestParse(t *testing.T) {
	p := NewParser("REF")

	tests := []struct {
		name     string
		filename string
		want     entity.ReferenceID
		ok       bool
	}{
		{"old fixture", "REF13-014.pdf", entity.ReferenceID{ID: "13-014", Period: "2013", CitationKey: "REF13"}, true},
		{"new fixture", "REF25-008.pdf", entity.ReferenceID{ID: "25-008", Period: "2025", CitationKey: "REF25"}, true},
		{"lower case", "ref25-008.pdf", entity.ReferenceID{ID: "25-008", Period: "2025", CitationKey: "REF25"}, true},
		{"embedded with path", "/tmp/uploads/Final REF21-004 (rev).pdf", entity.ReferenceID{ID: "21-004", Period: "2021", CitationKey: "REF21"}, true},
		{"last century", "REF99-001.pdf", entity.ReferenceID{ID: "99-001", Period: "1999", CitationKey: "REF99"}, true},
		{"leading zero", "REF08-123.pdf", entity.ReferenceID{ID: "08-123", Period: "2008", CitationKey: "REF08"}, true},
		{"threshold is 21st century", "REF50-100.pdf", entity.ReferenceID{ID: "50-100", Period: "2050", CitationKey: "REF50"}, true},
		{"just over threshold", "REF51-100.pdf", entity.ReferenceID{ID: "51-100", Period: "1951", CitationKey: "REF51"}, true},
		{"wrong prefix", "APL25-008.pdf", entity.ReferenceID{}, false},
		{"short number", "REF25-08.pdf", entity.ReferenceID{}, false},
		{"no match", "notes.pdf", entity.ReferenceID{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Parse(tt.filename)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok=%v, want %v", tt.filename, ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q)=%+v, want %+v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	for _, name := range []string{"APL13-014.pdf", "APL25-008.pdf", "apl99-999.PDF"} {
		a, okA := Parse(name)
		b, okB := Parse(name)
		if !okA || !okB {
			t.Fatalf("Parse(%q) failed", name)
		}
		if a != b {
			t.Fatalf("Parse(%q) not deterministic: %+v vs %+v", name, a, b)
		}
	}
}

func TestParse_CenturyRule(t *testing.T) {
	if got, _ := Parse("APL99-001.pdf"); got.Period[:2] != "19" {
		t.Fatalf("period=%q, want 19xx", got.Period)
	}
	if got, _ := Parse("APL08-001.pdf"); got.Period[:2] != "20" {
		t.Fatalf("period=%q, want 20xx", got.Period)
	}
}

func TestNewParser_DefaultPrefix(t *testing.T) {
	p := NewParser("  ")
	if p.Prefix() != "APL" {
		t.Fatalf("prefix=%q, want APL", p.Prefix())
	}
	got, ok := p.Parse("APL25-008.pdf")
	if !ok || got.CitationKey != "APL25" {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}
