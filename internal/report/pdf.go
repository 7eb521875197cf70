package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/signintech/gopdf"
)

const (
	pdfMargin    = 40.0
	pdfRowHeight = 16.0
	pdfPageLimit = 790.0
	pdfFont      = "body"
)

// pdfColumns are the x offsets of the course table.
var pdfColumns = []float64{40, 100, 330, 380, 440, 510}

// PDFRenderer renders an A4 transcript with gopdf.
type PDFRenderer struct {
	FontPath string
}

func (PDFRenderer) ContentType() string { return "application/pdf" }
func (PDFRenderer) Extension() string   { return "pdf" }

// Render writes the transcript as PDF.
func (r PDFRenderer) Render(w io.Writer, t Transcript) error {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFont(pdfFont, r.FontPath); err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	p := &pdfPage{pdf: pdf}
	p.newPage()

	if err := p.text(pdfMargin, 14, t.InstitutionName); err != nil {
		return err
	}
	p.y += 6
	if err := p.text(pdfMargin, 12, "KARTU HASIL STUDI / TRANSKRIP NILAI"); err != nil {
		return err
	}
	p.y += 4

	identity := [][2]string{
		{"NIM", t.Student.NIM},
		{"Nama", t.Student.Name},
		{"Program Studi", t.Student.StudyProgram},
		{"Tanggal Cetak", t.GeneratedAt.Format("02-01-2006")},
	}
	for _, row := range identity {
		if err := p.row(10, []string{row[0], ": " + row[1]}, []float64{pdfMargin, 140}); err != nil {
			return err
		}
	}
	p.y += pdfRowHeight / 2

	header := []string{"Kode", "Mata Kuliah", "SKS", "Nilai", "SKS x Nilai", "Huruf"}
	for _, block := range t.Blocks() {
		if err := p.text(pdfMargin, 11, "Semester "+strconv.Itoa(block.Semester)); err != nil {
			return err
		}
		if err := p.row(10, header, pdfColumns); err != nil {
			return err
		}
		p.rule()
		for _, l := range block.Lines {
			cells := []string{l.Code, truncate(l.Name, 40), num(l.Weight), num(l.Score), num(l.Points), l.Letter}
			if err := p.row(10, cells, pdfColumns); err != nil {
				return err
			}
		}
		p.rule()
		summary := fmt.Sprintf("Jumlah SKS: %s    IP Semester: %.2f", num(block.TotalWeight), block.GPA)
		if err := p.text(pdfMargin, 10, summary); err != nil {
			return err
		}
		p.y += pdfRowHeight / 2
	}

	total := fmt.Sprintf("Total SKS: %s    IPK: %.2f", num(t.Summary.TotalWeight), t.Summary.CumulativeGPA)
	if err := p.text(pdfMargin, 12, total); err != nil {
		return err
	}

	if _, err := pdf.WriteTo(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// pdfPage tracks the cursor and breaks pages when the table runs long.
type pdfPage struct {
	pdf *gopdf.GoPdf
	y   float64
}

func (p *pdfPage) newPage() {
	p.pdf.AddPage()
	p.y = pdfMargin
}

func (p *pdfPage) ensureRoom() {
	if p.y+pdfRowHeight > pdfPageLimit {
		p.newPage()
	}
}

func (p *pdfPage) text(x float64, size int, s string) error {
	return p.row(size, []string{s}, []float64{x})
}

func (p *pdfPage) row(size int, cells []string, xs []float64) error {
	p.ensureRoom()
	if err := p.pdf.SetFont(pdfFont, "", size); err != nil {
		return fmt.Errorf("set font: %w", err)
	}
	for i, cell := range cells {
		p.pdf.SetXY(xs[i], p.y)
		if err := p.pdf.Cell(nil, cell); err != nil {
			return fmt.Errorf("write cell: %w", err)
		}
	}
	p.y += pdfRowHeight
	return nil
}

func (p *pdfPage) rule() {
	p.pdf.Line(pdfMargin, p.y-2, 555, p.y-2)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// num prints whole numbers without decimals and others with two.
func num(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
