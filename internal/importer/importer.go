// Package importer parses candidate spreadsheets (CSV and Excel) into
// validated records. Database writes stay with the caller so the parse
// step can be unit-tested and reported row by row.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Record is one importable candidate row. Line is the 1-based
// spreadsheet line for error messages, counting the header.
type Record struct {
	Name     string
	Email    string
	Phone    string
	LinkedIn string
	Line     int
}

// Result is the outcome of parsing one file. Rows that failed
// validation are reported in Errors and excluded from Records.
type Result struct {
	Records []Record
	Errors  []string
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// SupportedExtension reports whether the filename has an importable
// extension.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

// Parse reads the spreadsheet and validates every row. The format is
// chosen by file extension. Required columns are "nome" (or "name")
// and "email", matched case-insensitively; "telefone"/"phone" and
// "linkedin" are optional.
func Parse(filename string, data []byte) (*Result, error) {
	if !SupportedExtension(filename) {
		return nil, fmt.Errorf("unsupported file format %q, use .csv, .xlsx or .xls", filepath.Ext(filename))
	}

	var rows [][]string
	var err error
	if strings.ToLower(filepath.Ext(filename)) == ".csv" {
		rows, err = readCSV(data)
	} else {
		rows, err = readExcel(data)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows[1:] {
		line := i + 2
		record, rowErr := buildRecord(row, columns, line)
		if rowErr != nil {
			result.Errors = append(result.Errors, rowErr.Error())
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result, nil
}

// readCSV tolerates a UTF-8 BOM and ragged rows; spreadsheets exported
// by hand rarely have a uniform column count.
func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

type columnMap struct {
	name     int
	email    int
	phone    int
	linkedin int
}

// mapColumns resolves header names to column indexes. Headers are
// trimmed and lowercased first, matching how recruiters actually name
// them.
func mapColumns(header []string) (columnMap, error) {
	columns := columnMap{name: -1, email: -1, phone: -1, linkedin: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "nome", "name":
			columns.name = i
		case "email", "e-mail":
			columns.email = i
		case "telefone", "phone", "celular":
			columns.phone = i
		case "linkedin":
			columns.linkedin = i
		}
	}

	var missing []string
	if columns.name == -1 {
		missing = append(missing, "nome")
	}
	if columns.email == -1 {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return columns, fmt.Errorf("required columns missing: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func buildRecord(row []string, columns columnMap, line int) (Record, error) {
	record := Record{
		Name:     cell(row, columns.name),
		Email:    cell(row, columns.email),
		Phone:    cell(row, columns.phone),
		LinkedIn: cell(row, columns.linkedin),
		Line:     line,
	}

	if record.Name == "" || record.Email == "" {
		return Record{}, fmt.Errorf("line %d: name or email empty", line)
	}
	if !emailPattern.MatchString(record.Email) {
		return Record{}, fmt.Errorf("line %d: invalid email (%s)", line, record.Email)
	}
	return record, nil
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
