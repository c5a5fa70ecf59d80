// Package importer turns uploaded count spreadsheets into draft lines.
// Import runs in two stages: the file is parsed into a preview the operator
// inspects, and only an explicit confirmation merges the lines into the
// active draft.
package importer

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"inventario/internal/core/apperror"
	"inventario/internal/core/types"
	"inventario/internal/domain/catalog"
	"inventario/internal/domain/count"
)

// Default column positions for the standard count template:
// A = description, B = product code, N = counted quantity.
const (
	defaultNameCol = 0
	defaultCodeCol = 1
	defaultQtyCol  = 13
)

// Header tokens that relocate a column when the template was rearranged.
var (
	codeTokens = []string{"codigo", "código", "cod"}
	qtyTokens  = []string{"cantidad", "cant", "conteo"}
	nameTokens = []string{"descripcion", "descripción", "producto", "nombre"}
)

// Preview is the parsed but not yet merged outcome of an upload.
type Preview struct {
	Lines    []count.Line `json:"lines"`
	Total    int          `json:"total"`
	Skipped  int          `json:"skipped"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Parse reads the first sheet of an xlsx upload and extracts count lines.
// Rows without a product code are skipped; unreadable quantities import as
// zero so the operator can fix them in the preview instead of losing the
// row. Products known to the master list pick up their description and
// default unit.
func Parse(data []byte, products map[string]catalog.Product) (Preview, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Preview{}, apperror.NewParse("El archivo no es un Excel válido").WithCause(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Preview{}, apperror.NewParse("El archivo no tiene hojas")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Preview{}, apperror.NewParse("No se pudo leer la hoja de conteo").WithCause(err)
	}
	if len(rows) == 0 {
		return Preview{}, apperror.NewParse("La hoja de conteo está vacía")
	}

	codeCol, qtyCol, nameCol, headerRows := resolveColumns(rows[0])

	preview := Preview{Lines: make([]count.Line, 0, len(rows))}
	seen := make(map[string]int)

	for i := headerRows; i < len(rows); i++ {
		row := rows[i]

		code := catalog.NormalizeCode(cell(row, codeCol))
		if code == "" {
			preview.Skipped++
			continue
		}

		qty, err := types.ParseQuantity(cell(row, qtyCol))
		if err != nil {
			preview.Warnings = append(preview.Warnings,
				"fila "+rowName(i)+": cantidad ilegible para "+code+", se importó 0")
			qty = 0
		}
		if qty.IsNegative() {
			preview.Warnings = append(preview.Warnings,
				"fila "+rowName(i)+": cantidad negativa para "+code+", se importó 0")
			qty = 0
		}

		line := count.Line{
			Codigo:      code,
			Descripcion: strings.TrimSpace(cell(row, nameCol)),
			Unidad:      catalog.UnitUnidad,
			Cantidad:    qty,
			Imported:    true,
		}
		if p, ok := products[code]; ok {
			line.DetalleID = p.DetalleID
			if line.Descripcion == "" {
				line.Descripcion = p.Descripcion
			}
			line.Unidad = catalog.NormalizeUnit(p.Unidad)
		}

		// Repeated codes keep the last occurrence.
		if at, dup := seen[code]; dup {
			preview.Lines[at] = line
			continue
		}
		seen[code] = len(preview.Lines)
		preview.Lines = append(preview.Lines, line)
	}

	preview.Total = len(preview.Lines)
	if preview.Total == 0 {
		return Preview{}, apperror.NewParse("No se encontraron productos en el archivo")
	}
	return preview, nil
}

// resolveColumns picks the code, quantity and name columns. The positional
// template layout is the default; when the first row carries recognizable
// headers, those positions win and the row is consumed as a header.
func resolveColumns(header []string) (codeCol, qtyCol, nameCol, headerRows int) {
	codeCol, qtyCol, nameCol = defaultCodeCol, defaultQtyCol, defaultNameCol

	for i, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		if h == "" {
			continue
		}
		switch {
		case matchesToken(h, codeTokens):
			codeCol = i
			headerRows = 1
		case matchesToken(h, qtyTokens):
			qtyCol = i
			headerRows = 1
		case matchesToken(h, nameTokens):
			nameCol = i
			headerRows = 1
		}
	}
	return codeCol, qtyCol, nameCol, headerRows
}

func matchesToken(h string, tokens []string) bool {
	for _, t := range tokens {
		if h == t || strings.HasPrefix(h, t+" ") || strings.HasPrefix(h, t+"_") {
			return true
		}
	}
	return false
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func rowName(i int) string {
	// Spreadsheet rows are 1-based.
	return strconv.Itoa(i + 1)
}
