// Package dataset loads student records from CSV and exports strategy
// outcomes back to CSV.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/abhisek/counsel/internal/features"
	"github.com/abhisek/counsel/internal/ranking"
	"github.com/abhisek/counsel/internal/table"
	"github.com/gocarina/gocsv"
)

// StudentRecord is one row of the student CSV: identity, the 30 UCI
// student-performance features, and the final grade. Numeric cells are
// kept as text so a blank cell is an error rather than a zero.
type StudentRecord struct {
	StudentID  string `csv:"StudentID"`
	FirstName  string `csv:"FirstName"`
	FamilyName string `csv:"FamilyName"`

	School     string `csv:"school"`
	Sex        string `csv:"sex"`
	Age        string `csv:"age"`
	Address    string `csv:"address"`
	Famsize    string `csv:"famsize"`
	Pstatus    string `csv:"Pstatus"`
	Medu       string `csv:"Medu"`
	Fedu       string `csv:"Fedu"`
	Mjob       string `csv:"Mjob"`
	Fjob       string `csv:"Fjob"`
	Reason     string `csv:"reason"`
	Guardian   string `csv:"guardian"`
	Traveltime string `csv:"traveltime"`
	Studytime  string `csv:"studytime"`
	Failures   string `csv:"failures"`
	Schoolsup  string `csv:"schoolsup"`
	Famsup     string `csv:"famsup"`
	Paid       string `csv:"paid"`
	Activities string `csv:"activities"`
	Nursery    string `csv:"nursery"`
	Higher     string `csv:"higher"`
	Internet   string `csv:"internet"`
	Romantic   string `csv:"romantic"`
	Famrel     string `csv:"famrel"`
	Freetime   string `csv:"freetime"`
	Goout      string `csv:"goout"`
	Dalc       string `csv:"Dalc"`
	Walc       string `csv:"Walc"`
	Health     string `csv:"health"`
	Absences   string `csv:"absences"`

	FinalGrade string `csv:"FinalGrade"`
}

// FeatureColumns lists the feature table columns in file order.
var FeatureColumns = []string{
	"school", "sex", "age", "address", "famsize", "Pstatus", "Medu", "Fedu",
	"Mjob", "Fjob", "reason", "guardian", "traveltime", "studytime",
	"failures", "schoolsup", "famsup", "paid", "activities", "nursery",
	"higher", "internet", "romantic", "famrel", "freetime", "goout", "Dalc",
	"Walc", "health", "absences",
}

// RequiredColumns lists every header a student file must carry.
func RequiredColumns() []string {
	cols := append([]string{"StudentID"}, FeatureColumns...)
	return append(cols, "FinalGrade")
}

// CellError reports a cell that cannot be read as the column's type.
type CellError struct {
	Row    int // 1-based data row
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("row %d, column %s: blank cell", e.Row, e.Column)
	}
	return fmt.Sprintf("row %d, column %s: %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// ErrBlankCell is wrapped by a CellError for an empty numeric cell.
var ErrBlankCell = errors.New("blank cell")

func parseNumber(row int, column, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &CellError{Row: row, Column: column, Err: ErrBlankCell}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &CellError{Row: row, Column: column, Value: raw, Err: err}
	}
	return f, nil
}

func (r *StudentRecord) fields() []string {
	return []string{
		r.School, r.Sex, r.Age, r.Address, r.Famsize,
		r.Pstatus, r.Medu, r.Fedu, r.Mjob, r.Fjob,
		r.Reason, r.Guardian, r.Traveltime, r.Studytime,
		r.Failures, r.Schoolsup, r.Famsup, r.Paid,
		r.Activities, r.Nursery, r.Higher, r.Internet,
		r.Romantic, r.Famrel, r.Freetime, r.Goout, r.Dalc,
		r.Walc, r.Health, r.Absences,
	}
}

// values converts row (1-based) to feature cells, typed by the feature
// registry.
func (r *StudentRecord) values(row int, reg features.Registry) ([]table.Value, error) {
	raw := r.fields()
	out := make([]table.Value, len(raw))
	for j, cell := range raw {
		col := FeatureColumns[j]
		if kind, _ := reg.KindOf(col); kind != features.KindNumeric {
			out[j] = table.Str(cell)
			continue
		}
		f, err := parseNumber(row, col, cell)
		if err != nil {
			return nil, err
		}
		out[j] = table.Num(f)
	}
	return out, nil
}

// Dataset is a loaded student file split into features, grades and names.
type Dataset struct {
	X       *table.Table
	Y       *table.Series
	Names   map[string]ranking.Name
	Records []*StudentRecord
}

// Load reads a student CSV file.
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	if err := checkHeader(raw); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	records := []*StudentRecord{}
	if err := gocsv.UnmarshalBytes(raw, &records); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	ds, err := FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// checkHeader fails with a *table.MissingColumnsError when the file lacks
// any required column. Unmatched columns would otherwise load as blanks.
func checkHeader(raw []byte) error {
	header, err := csv.NewReader(bytes.NewReader(raw)).Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = true
	}
	var missing []string
	for _, col := range RequiredColumns() {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &table.MissingColumnsError{Columns: missing}
	}
	return nil
}

// FromRecords builds a dataset from parsed records.
func FromRecords(records []*StudentRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset has no students")
	}
	reg := features.Metadata()
	ids := make([]string, len(records))
	grades := make([]float64, len(records))
	names := make(map[string]ranking.Name, len(records))
	rows := make([][]table.Value, len(records))
	for i, r := range records {
		if r.StudentID == "" {
			return nil, fmt.Errorf("dataset row %d has no StudentID", i+1)
		}
		ids[i] = r.StudentID
		names[r.StudentID] = ranking.Name{First: r.FirstName, Family: r.FamilyName}

		grade, err := parseNumber(i+1, "FinalGrade", r.FinalGrade)
		if err != nil {
			return nil, err
		}
		grades[i] = grade
		if rows[i], err = r.values(i+1, reg); err != nil {
			return nil, err
		}
	}

	x, err := table.New(ids)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	cols := make([][]table.Value, len(FeatureColumns))
	for j := range cols {
		cols[j] = make([]table.Value, len(records))
	}
	for i, row := range rows {
		for j, v := range row {
			cols[j][i] = v
		}
	}
	for j, name := range FeatureColumns {
		if err := x.SetColumn(name, cols[j]); err != nil {
			return nil, err
		}
	}

	y, err := table.NewSeries(ids, grades)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	return &Dataset{X: x, Y: y, Names: names, Records: records}, nil
}

// ExportRow is one row of an outcome export.
type ExportRow struct {
	StudentID       string  `csv:"StudentID"`
	FirstName       string  `csv:"FirstName"`
	FamilyName      string  `csv:"FamilyName"`
	Complexity      float64 `csv:"Complexity"`
	FinalGrade      float64 `csv:"FinalGrade"`
	ExpectedGrade   float64 `csv:"ExpectedGrade"`
	PerformanceGain float64 `csv:"PerformanceGain"`
}

// Export writes outcomes as CSV in the given order.
func Export(w io.Writer, outcomes []ranking.Outcome) error {
	rows := make([]*ExportRow, len(outcomes))
	for i, o := range outcomes {
		rows[i] = &ExportRow{
			StudentID:       o.StudentID,
			FirstName:       o.Name.First,
			FamilyName:      o.Name.Family,
			Complexity:      o.Complexity,
			FinalGrade:      o.FinalGrade,
			ExpectedGrade:   o.ExpectedGrade,
			PerformanceGain: o.PerformanceGain,
		}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("export outcomes: %w", err)
	}
	return nil
}

// ExportFile writes outcomes to path, replacing any existing file.
func ExportFile(path string, outcomes []ranking.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := Export(f, outcomes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
