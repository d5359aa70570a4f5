package reports

import (
	"fmt"

	"github.com/danverhoeven/adledger-backend/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	entriesSheet = "Entries"
	bucketsSheet = "Buckets"
	summarySheet = "Summary"

	exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportDateFormat  = "2006-01-02"
)

// buildWorkbook renders derived entries, buckets and totals into an xlsx
// workbook with one sheet per shape.
func buildWorkbook(rng DateRange, derived []DerivedEntry, buckets []Bucket, totals SummaryTotals) (*ExportFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeEntriesSheet(f, derived); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "render entries sheet")
	}
	if err := writeBucketsSheet(f, buckets); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "render buckets sheet")
	}
	if err := writeSummarySheet(f, rng, totals); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "render summary sheet")
	}

	// excelize seeds every workbook with "Sheet1"; drop it once real sheets exist.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "drop default sheet")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "serialize workbook")
	}

	filename := fmt.Sprintf("adledger-report-%s-to-%s.xlsx",
		rng.Start.Format(exportDateFormat), rng.End.Format(exportDateFormat))
	return &ExportFile{
		Filename:    filename,
		ContentType: exportContentType,
		Data:        buf.Bytes(),
	}, nil
}

func writeEntriesSheet(f *excelize.File, derived []DerivedEntry) error {
	if _, err := f.NewSheet(entriesSheet); err != nil {
		return err
	}
	header := []any{"Date", "Spend", "Revenue", "Profit", "ROI %", "Status", "Currency", "Notes"}
	if err := f.SetSheetRow(entriesSheet, "A1", &header); err != nil {
		return err
	}
	for i, d := range derived {
		row := []any{
			ToCalendarDate(d.Entry.EntryDate).Format(exportDateFormat),
			d.Entry.Spend.InexactFloat64(),
			d.Revenue.InexactFloat64(),
			d.Profit.InexactFloat64(),
			roiCell(d.ROIPct),
			d.Entry.Status.String(),
			d.Entry.Currency,
			d.Entry.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(entriesSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeBucketsSheet(f *excelize.File, buckets []Bucket) error {
	if _, err := f.NewSheet(bucketsSheet); err != nil {
		return err
	}
	header := []any{"Period", "Spend", "Earnings", "Profit", "ROI %", "Entries"}
	if err := f.SetSheetRow(bucketsSheet, "A1", &header); err != nil {
		return err
	}
	for i, b := range buckets {
		row := []any{
			b.Key,
			b.Spend.InexactFloat64(),
			b.Earnings.InexactFloat64(),
			b.Profit.InexactFloat64(),
			b.ROI,
			b.Count,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(bucketsSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, rng DateRange, totals SummaryTotals) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	rows := [][]any{
		{"From", rng.Start.Format(exportDateFormat)},
		{"To", rng.End.Format(exportDateFormat)},
		{"Entries", totals.Count},
		{"Spend", totals.Spend.InexactFloat64()},
		{"Earnings", totals.Earnings.InexactFloat64()},
		{"Profit", totals.Profit.InexactFloat64()},
		{"Avg ROI %", roiCell(totals.AvgROI)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func roiCell(roi *float64) any {
	if roi == nil {
		return ""
	}
	return *roi
}
