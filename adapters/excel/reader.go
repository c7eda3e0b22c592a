// Package excel reads tabular datasets from Excel and CSV files and turns
// them into column samples for the statistics generator.
package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"datavet/ports"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"

	// WeightColumn, when set, names the column holding per-example
	// weights. It is consumed as weights, not emitted as a feature.
	WeightColumn string
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadColumns reads the file into one column sample per header. Empty
// cells become missing values.
func (r *DataReader) ReadColumns() ([]ports.ColumnSample, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}
	return r.buildColumns(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// buildColumns pivots raw string rows into column samples, splitting the
// weight column out when one is configured.
func (r *DataReader) buildColumns(rows [][]string) ([]ports.ColumnSample, error) {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	weightIdx := -1
	if r.WeightColumn != "" {
		for i, h := range headers {
			if h == r.WeightColumn {
				weightIdx = i
				break
			}
		}
		if weightIdx < 0 {
			return nil, fmt.Errorf("weight column %q not found in headers", r.WeightColumn)
		}
	}

	numRows := len(rows) - 1
	columns := make([]ports.ColumnSample, 0, len(headers))
	for i, h := range headers {
		if i == weightIdx {
			continue
		}
		if h == "" {
			return nil, fmt.Errorf("column %d has an empty header", i)
		}
		columns = append(columns, ports.ColumnSample{
			Name:   h,
			Values: make([]interface{}, numRows),
		})
	}

	var weights []float64
	if weightIdx >= 0 {
		weights = make([]float64, numRows)
	}

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		colOut := 0
		for i := range headers {
			var cell string
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			if i == weightIdx {
				w, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("row %d: weight %q is not numeric", rowIdx+1, cell)
				}
				weights[rowIdx-1] = w
				continue
			}
			if cell != "" {
				columns[colOut].Values[rowIdx-1] = cell
			}
			colOut++
		}
	}

	if weights != nil {
		for i := range columns {
			columns[i].Weights = weights
		}
	}
	return columns, nil
}
