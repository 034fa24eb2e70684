package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/trackwise/expense-voice/internal/domain/entity"
)

const (
	expensesSheet  = "Expenses"
	summarySheet   = "By Category"
	expenseDateFmt = "2006-01-02"
)

// ReportWriter renders an expense history as an Excel workbook with a
// detail sheet and a per-category totals sheet.
type ReportWriter struct {
	logger *zap.Logger
}

// NewReportWriter creates a report writer.
func NewReportWriter(logger *zap.Logger) *ReportWriter {
	return &ReportWriter{logger: logger}
}

// Write streams the workbook for the given expenses and summaries to w.
func (rw *ReportWriter) Write(w io.Writer, expenses []*entity.Expense, summaries []entity.CategorySummary) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", expensesSheet)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	rw.writeExpenses(f, expenses)
	rw.writeSummaries(f, summaries)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	rw.logger.Info("Expense report written",
		zap.Int("expenses", len(expenses)),
		zap.Int("categories", len(summaries)))
	return nil
}

func (rw *ReportWriter) writeExpenses(f *excelize.File, expenses []*entity.Expense) {
	headers := []string{"Date", "Category", "Description", "Amount"}
	for i, header := range headers {
		rw.setCell(f, expensesSheet, cellRef(i, 1), header)
	}

	for row, expense := range expenses {
		rw.setCell(f, expensesSheet, cellRef(0, row+2), expense.Date.Format(expenseDateFmt))
		rw.setCell(f, expensesSheet, cellRef(1, row+2), expense.Category)
		rw.setCell(f, expensesSheet, cellRef(2, row+2), expense.Description)
		rw.setCell(f, expensesSheet, cellRef(3, row+2), expense.Amount.String())
	}
}

func (rw *ReportWriter) writeSummaries(f *excelize.File, summaries []entity.CategorySummary) {
	headers := []string{"Category", "Total", "Count"}
	for i, header := range headers {
		rw.setCell(f, summarySheet, cellRef(i, 1), header)
	}

	for row, summary := range summaries {
		rw.setCell(f, summarySheet, cellRef(0, row+2), summary.Category)
		rw.setCell(f, summarySheet, cellRef(1, row+2), summary.Total.String())
		rw.setCell(f, summarySheet, cellRef(2, row+2), fmt.Sprintf("%d", summary.Count))
	}
}

func (rw *ReportWriter) setCell(f *excelize.File, sheet, cell, value string) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		rw.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// cellRef builds an A1-style reference from a zero-based column and a
// one-based row.
func cellRef(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
