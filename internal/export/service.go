// Package export renders a completed comparison as an XLSX workbook.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

const (
	bulletsSheet = "Changes"
	summarySheet = "Summary"
)

var headers = []string{
	"Rank",
	"Title",
	"Change",
	"Score",
	"Revision Type",
	"Citations",
}

// Service produces XLSX bytes for a ScoredReport.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ReportXLSX returns a workbook with one row per bullet, in the report's order,
// and a summary sheet with the title, summary and conclusion.
func (s *Service) ReportXLSX(taskID string, report *entity.ScoredReport) ([]byte, error) {
	if report == nil {
		return nil, errors.New("export: nil report")
	}
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_failed", "task_id", taskID, "error", err)
		}
	}()

	// excelize starts with "Sheet1"; rename it rather than leave an empty tab.
	if err := f.SetSheetName("Sheet1", bulletsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	if idx, _ := f.GetSheetIndex(bulletsSheet); idx >= 0 {
		f.SetActiveSheet(idx)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bulletsSheet, cell, h)
	}

	for i, b := range report.Bullets {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(bulletsSheet, cell, v)
		}
		write(1, i+1)
		write(2, b.BulletTitle)
		write(3, b.BulletContent)
		write(4, b.Score)
		write(5, string(b.RevisionType))
		write(6, FormatCitations(b.Citations))
	}

	_ = f.SetColWidth(bulletsSheet, "A", "A", 6)  // rank
	_ = f.SetColWidth(bulletsSheet, "B", "B", 36) // title
	_ = f.SetColWidth(bulletsSheet, "C", "C", 80) // content
	_ = f.SetColWidth(bulletsSheet, "D", "D", 8)  // score
	_ = f.SetColWidth(bulletsSheet, "E", "E", 14) // type
	_ = f.SetColWidth(bulletsSheet, "F", "F", 30) // citations

	summary := [][2]string{
		{"Title", report.Title},
		{"Summary", report.Summary},
		{"Conclusion", report.Conclusion},
		{"Task", taskID},
	}
	for i, kv := range summary {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), kv[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), kv[1])
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 14)
	_ = f.SetColWidth(summarySheet, "B", "B", 100)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"task_id", taskID,
		"bullets", len(report.Bullets),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// FormatCitations renders cited keys as "APL13 p2 l14; APL25 p3 l7", sorted by key.
func FormatCitations(c entity.Citations) string {
	keys := c.CitedKeys()
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		loc := c[k]
		parts = append(parts, fmt.Sprintf("%s p%d l%d", k, loc.Page, loc.Line))
	}
	return strings.Join(parts, "; ")
}
