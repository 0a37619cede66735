package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Resume is the flattened portfolio content rendered into the PDF export.
type Resume struct {
	Name      string
	Tagline   string
	Contact   []string
	Skills    []ResumeSkill
	Education []ResumeEducation
}

// ResumeSkill is one skill line grouped under a category.
type ResumeSkill struct {
	Category string
	Name     string
	Level    string
}

// ResumeEducation is one education entry.
type ResumeEducation struct {
	Institution string
	Degree      string
	Field       string
	Period      string
	Description string
}

// ResumeExporter renders a portfolio résumé as a PDF document.
type ResumeExporter struct{}

// NewResumeExporter constructs a résumé exporter.
func NewResumeExporter() *ResumeExporter {
	return &ResumeExporter{}
}

// Render produces the PDF bytes for the given résumé.
func (e *ResumeExporter) Render(r Resume) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, r.Name, "", 1, "C", false, 0, "")
	if r.Tagline != "" {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 7, r.Tagline, "", 1, "C", false, 0, "")
	}
	if len(r.Contact) > 0 {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, strings.Join(r.Contact, "  |  "), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	if len(r.Skills) > 0 {
		e.sectionTitle(pdf, "Skills")
		pdf.SetFont("Arial", "", 10)
		for _, s := range r.Skills {
			line := fmt.Sprintf("%s - %s (%s)", s.Category, s.Name, s.Level)
			pdf.CellFormat(0, 6, line, "", 1, "", false, 0, "")
		}
		pdf.Ln(3)
	}

	if len(r.Education) > 0 {
		e.sectionTitle(pdf, "Education")
		for _, ed := range r.Education {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(0, 6, fmt.Sprintf("%s - %s, %s", ed.Institution, ed.Degree, ed.Field), "", 1, "", false, 0, "")
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(0, 5, ed.Period, "", 1, "", false, 0, "")
			if ed.Description != "" {
				pdf.SetFont("Arial", "", 9)
				pdf.MultiCell(0, 5, ed.Description, "", "", false)
			}
			pdf.Ln(2)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render resume pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *ResumeExporter) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, strings.ToUpper(title), "B", 1, "", false, 0, "")
	pdf.Ln(2)
}
