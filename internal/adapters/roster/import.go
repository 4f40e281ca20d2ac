package roster

import (
	"fmt"
	"io"

	"verlof/internal/adapters/spreadsheet"
	"verlof/internal/domain/employee"
)

var (
	numberHeaders = []string{"personeelsnummer", "personeelsnr", "nummer", "number", "employee number"}
	nameHeaders   = []string{"naam", "name", "medewerker", "employee"}
	emailHeaders  = []string{"email", "e-mail", "e-mailadres", "emailadres"}
)

// ImportResult summarises a spreadsheet import.
type ImportResult struct {
	Employees []employee.Employee
	Skipped   int // data rows without number or name
}

// ReadSpreadsheet extracts employees from the first sheet of an .xlsx or .xls file.
// The first row holding both a number and a name header is the header row; the email
// column is optional.
func ReadSpreadsheet(r io.Reader, filename string) (ImportResult, error) {
	rows, err := spreadsheet.ReadRows(r, filename)
	if err != nil {
		return ImportResult{}, err
	}

	headerRow, numberIdx, nameIdx, emailIdx := -1, -1, -1, -1
	for i, row := range rows {
		numberIdx = findColumn(row, numberHeaders)
		nameIdx = findColumn(row, nameHeaders)
		if numberIdx >= 0 && nameIdx >= 0 {
			headerRow = i
			emailIdx = findColumn(row, emailHeaders)
			break
		}
	}
	if headerRow < 0 {
		return ImportResult{}, fmt.Errorf("no header row with personeelsnummer and naam columns")
	}

	var res ImportResult
	seen := map[string]bool{}
	for _, row := range rows[headerRow+1:] {
		number := spreadsheet.Cell(row, numberIdx)
		name := spreadsheet.Cell(row, nameIdx)
		if number == "" && name == "" {
			continue
		}
		if number == "" || name == "" || seen[number] {
			res.Skipped++
			continue
		}
		seen[number] = true
		res.Employees = append(res.Employees, employee.Employee{
			Number: number,
			Name:   name,
			Email:  spreadsheet.Cell(row, emailIdx),
		})
	}
	if len(res.Employees) == 0 {
		return res, employee.ErrEmptyRoster
	}
	return res, nil
}

func findColumn(row []string, names []string) int {
	for i, cell := range row {
		h := spreadsheet.NormalizeHeader(cell)
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}
