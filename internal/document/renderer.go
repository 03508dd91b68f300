// Package document lays out the composed letter text, sanitizes
// unsupported glyphs, renders the co-signatory table when a roster
// exists, and produces the final paginated PDF artifact.
package document

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/abinmathew/leave-letter-assistant/internal/catalog"
	"github.com/abinmathew/leave-letter-assistant/internal/letter"
	"github.com/abinmathew/leave-letter-assistant/internal/wizard"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// Layout constants, in millimeters.
const (
	bodyLineHeight = 7
	tableRowHeight = 16
	nameColWidth   = 70
	yearColWidth   = 50
	sigColWidth    = 60
	sigImageWidth  = 45
	sigImageHeight = 12
	sigCellPadX    = 7
	sigCellPadY    = 2
)

// rosterTableTitle heads the co-signatory table.
const rosterTableTitle = "Student Details"

// Renderer assembles the final document bytes.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer builds a renderer.
func NewRenderer(logger *zap.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render produces the PDF artifact for the composed letter and returns
// its bytes together with the suggested filename.
func (rd *Renderer) Render(l letter.Letter, r *wizard.LeaveRequest) ([]byte, string, error) {
	body := Sanitize(l.Body)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	// The marker splits the body around the signature position. Without
	// a marker the signature simply follows the body.
	before, after, _ := strings.Cut(body, catalog.SignatureMarker)

	pdf.MultiCell(0, bodyLineHeight, before, "", "L", false)

	var tempFiles []string
	if !r.HasRoster() {
		if raw, ok := r.Signatures[r.Get(wizard.FieldUser)]; ok {
			path, err := rd.placeSignature(pdf, raw, pdf.GetX(), pdf.GetY())
			if err != nil {
				return nil, "", err
			}
			tempFiles = append(tempFiles, path)
			pdf.SetY(pdf.GetY() + sigImageHeight + 2)
		}
		if strings.TrimSpace(after) != "" {
			pdf.MultiCell(0, bodyLineHeight, after, "", "L", false)
		}
	} else {
		if strings.TrimSpace(after) != "" {
			pdf.MultiCell(0, bodyLineHeight, after, "", "L", false)
		}
		paths, err := rd.renderRosterTable(pdf, r)
		if err != nil {
			return nil, "", err
		}
		tempFiles = append(tempFiles, paths...)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write PDF: %w", err)
	}

	// Temp signature files are removed on the success path only.
	for _, path := range tempFiles {
		if err := os.Remove(path); err != nil {
			rd.logger.Warn("Failed to remove signature temp file",
				zap.String("path", path),
				zap.Error(err))
		}
	}

	filename := r.SuggestedFilename()
	rd.logger.Info("Document rendered",
		zap.String("filename", filename),
		zap.Int("bytes", buf.Len()),
		zap.Int("roster_rows", len(r.Roster)))

	return buf.Bytes(), filename, nil
}

// renderRosterTable appends the signature table: row 1 is the primary
// submitter, subsequent rows are roster entries in input order. Rows
// without a supplied image leave the signature cell blank.
func (rd *Renderer) renderRosterTable(pdf *gofpdf.Fpdf, r *wizard.LeaveRequest) ([]string, error) {
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, rosterTableTitle, "", 1, "L", false, 0, "")

	pdf.CellFormat(nameColWidth, 8, "Name", "1", 0, "C", false, 0, "")
	pdf.CellFormat(yearColWidth, 8, "Year of Study", "1", 0, "C", false, 0, "")
	pdf.CellFormat(sigColWidth, 8, "Signature", "1", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)

	rows := append([]wizard.RosterEntry{{
		Name:        r.Get(wizard.FieldUser),
		YearOfStudy: r.Get(wizard.FieldYearOfStudy),
	}}, r.Roster...)

	var tempFiles []string
	for _, row := range rows {
		x, y := pdf.GetX(), pdf.GetY()
		pdf.CellFormat(nameColWidth, tableRowHeight, Sanitize(row.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(yearColWidth, tableRowHeight, Sanitize(row.YearOfStudy), "1", 0, "C", false, 0, "")
		pdf.CellFormat(sigColWidth, tableRowHeight, "", "1", 1, "C", false, 0, "")

		if raw, ok := r.Signatures[row.Name]; ok {
			sigX := x + nameColWidth + yearColWidth + sigCellPadX
			sigY := y + sigCellPadY
			path, err := rd.placeSignature(pdf, raw, sigX, sigY)
			if err != nil {
				return nil, err
			}
			tempFiles = append(tempFiles, path)
		}
	}
	return tempFiles, nil
}

// placeSignature materializes the uploaded image as a temp PNG and
// overlays it at the given position. Returns the temp path for cleanup.
func (rd *Renderer) placeSignature(pdf *gofpdf.Fpdf, raw []byte, x, y float64) (string, error) {
	path, err := materializeSignature(raw)
	if err != nil {
		return "", err
	}
	pdf.ImageOptions(path, x, y, sigImageWidth, sigImageHeight, false,
		gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	if pdf.Err() {
		return "", fmt.Errorf("failed to embed signature image: %v", pdf.Error())
	}
	return path, nil
}
