package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Transkrip"

// XLSXRenderer renders a single-sheet spreadsheet with excelize.
type XLSXRenderer struct{}

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSXRenderer) Extension() string { return "xlsx" }

// Render writes the transcript as XLSX.
func (XLSXRenderer) Render(w io.Writer, t Transcript) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, row := range sheetRows(t) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(xlsxSheet, "C", "C", 40); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// sheetRows lays the transcript out row by row.
func sheetRows(t Transcript) [][]any {
	rows := [][]any{
		{t.InstitutionName},
		{"NIM", t.Student.NIM},
		{"Nama", t.Student.Name},
		{"Program Studi", t.Student.StudyProgram},
		{},
		{"Semester", "Kode", "Mata Kuliah", "SKS", "Nilai", "SKS x Nilai", "Huruf"},
	}
	for _, block := range t.Blocks() {
		for _, l := range block.Lines {
			rows = append(rows, []any{block.Semester, l.Code, l.Name, l.Weight, l.Score, l.Points, l.Letter})
		}
		rows = append(rows, []any{block.Semester, "", "IP Semester", block.TotalWeight, block.GPA})
	}
	rows = append(rows,
		[]any{},
		[]any{"Total SKS", t.Summary.TotalWeight},
		[]any{"IPK", t.Summary.CumulativeGPA},
	)
	return rows
}
