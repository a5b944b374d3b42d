package service

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const statementSheet = "Revenue"

// WriteStatement renders a landlord's revenue streams as an xlsx workbook with a totals row.
func WriteStatement(w io.Writer, landlordID uint, streams []StreamSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", statementSheet); err != nil {
		return err
	}

	headers := []string{"Stream", "Payment", "Unit type", "Fee", "Settled", "Outstanding", "Status", "Created", "Paid"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(statementSheet, cell, h)
	}

	fee, settled, outstanding := decimal.Zero, decimal.Zero, decimal.Zero
	for i, s := range streams {
		row := i + 2
		f.SetCellValue(statementSheet, fmt.Sprintf("A%d", row), s.ID)
		f.SetCellValue(statementSheet, fmt.Sprintf("B%d", row), s.PaymentID)
		f.SetCellValue(statementSheet, fmt.Sprintf("C%d", row), s.UnitType)
		f.SetCellValue(statementSheet, fmt.Sprintf("D%d", row), s.FeeAmount.InexactFloat64())
		f.SetCellValue(statementSheet, fmt.Sprintf("E%d", row), s.Settled.InexactFloat64())
		f.SetCellValue(statementSheet, fmt.Sprintf("F%d", row), s.Outstanding.InexactFloat64())
		f.SetCellValue(statementSheet, fmt.Sprintf("G%d", row), s.Status)
		f.SetCellValue(statementSheet, fmt.Sprintf("H%d", row), s.CreatedAt.Format("2006-01-02"))
		if s.PaidAt != nil {
			f.SetCellValue(statementSheet, fmt.Sprintf("I%d", row), s.PaidAt.Format("2006-01-02"))
		}
		fee = fee.Add(s.FeeAmount)
		settled = settled.Add(s.Settled)
		outstanding = outstanding.Add(s.Outstanding)
	}

	total := len(streams) + 2
	f.SetCellValue(statementSheet, fmt.Sprintf("A%d", total), fmt.Sprintf("Total (landlord %d)", landlordID))
	f.SetCellValue(statementSheet, fmt.Sprintf("D%d", total), fee.InexactFloat64())
	f.SetCellValue(statementSheet, fmt.Sprintf("E%d", total), settled.InexactFloat64())
	f.SetCellValue(statementSheet, fmt.Sprintf("F%d", total), outstanding.InexactFloat64())

	return f.Write(w)
}
