package export

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

func sampleReport() *entity.ScoredReport {
	return &entity.ScoredReport{
		Title:      "APL 13-014 vs APL 25-008",
		Summary:    "Reporting duties were expanded.",
		Conclusion: "Plans must update their policies.",
		Bullets: []entity.ScoredBullet{
			{
				BulletTitle:   "Quarterly reporting",
				BulletContent: "Plans now report grievances quarterly.",
				Score:         9,
				RevisionType:  constants.Addition,
				Citations:     entity.Citations{"APL13": nil, "APL25": {Page: 3, Line: 7}},
			},
			{
				BulletTitle:   "Retired form",
				BulletContent: "The paper form was removed.",
				Score:         4,
				RevisionType:  constants.Redaction,
				Citations:     entity.Citations{"APL13": {Page: 2, Line: 14}, "APL25": nil},
			},
		},
	}
}

func TestReportXLSX(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	data, err := svc.ReportXLSX("task-1", sampleReport())
	if err != nil {
		t.Fatalf("ReportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(bulletsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Rank" || rows[0][5] != "Citations" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "Quarterly reporting" || rows[1][3] != "9" || rows[1][4] != "addition" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[1][5] != "APL25 p3 l7" {
		t.Fatalf("citations = %q", rows[1][5])
	}
	if rows[2][0] != "2" || rows[2][5] != "APL13 p2 l14" {
		t.Fatalf("unexpected second row %v", rows[2])
	}

	title, err := f.GetCellValue(summarySheet, "B1")
	if err != nil || title != "APL 13-014 vs APL 25-008" {
		t.Fatalf("summary title = %q (%v)", title, err)
	}
}

func TestReportXLSX_NilReport(t *testing.T) {
	if _, err := NewService(nil).ReportXLSX("t", nil); err == nil {
		t.Fatal("expected error for nil report")
	}
}

func TestFormatCitations(t *testing.T) {
	c := entity.Citations{"APL25": {Page: 1, Line: 2}, "APL13": {Page: 0, Line: 0}}
	if got := FormatCitations(c); got != "APL13 p0 l0; APL25 p1 l2" {
		t.Fatalf("FormatCitations = %q", got)
	}
	if got := FormatCitations(nil); got != "" {
		t.Fatalf("nil citations = %q", got)
	}
}
