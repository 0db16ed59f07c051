package cli

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/chemidr/internal/domain/chemical"
	"github.com/turtacn/chemidr/pkg/errors"
)

// Columns appended to every resolved row.
var resolvedColumns = []string{"pubchem_id", "pubchem_name", "foodb_id", "inchikey", "composite_id"}

// nameTable is an input CSV with one column selected as the chemical name.
type nameTable struct {
	header []string
	rows   [][]string
	col    int
}

// readNameTable reads a headed CSV and locates column. Rows shorter than
// the header are padded so every row survives to the output.
func readNameTable(r io.Reader, column string) (*nameTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.InvalidParam("input CSV is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to read CSV header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &nameTable{header: header, col: -1}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			t.col = i
			break
		}
	}
	if t.col < 0 {
		return nil, errors.InvalidParam("column not found in CSV header").WithDetail(column)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to read CSV row")
		}
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// Names returns the selected column in row order.
func (t *nameTable) Names() []string {
	names := make([]string, len(t.rows))
	for i, row := range t.rows {
		names[i] = row[t.col]
	}
	return names
}

// writeResolvedTable writes the input rows with the identifier columns
// appended. results must be aligned with the rows.
func writeResolvedTable(w io.Writer, t *nameTable, results []chemical.ResolvedIdentifier) error {
	if len(results) != len(t.rows) {
		return errors.New(errors.ErrCodeInternal, "result count does not match input rows")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string(nil), t.header...), resolvedColumns...)); err != nil {
		return err
	}
	for i, row := range t.rows {
		out := append(append([]string(nil), row...), identifierCells(results[i])...)
		if err := cw.Write(out); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// identifierCells renders absent values as empty cells.
func identifierCells(r chemical.ResolvedIdentifier) []string {
	return []string{
		intCell(r.PubChemID),
		r.PubChemName.OrElse(""),
		intCell(r.FooDBID),
		r.InChIKey.OrElse(""),
		intCell(r.CompositeID),
	}
}

func intCell(o chemical.Optional[int64]) string {
	if v, ok := o.Get(); ok {
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// resolvedRows renders results as a table.
type resolvedRows []chemical.ResolvedIdentifier

func (r resolvedRows) TableHeaders() []string {
	return []string{"QUERY", "PUBCHEM_ID", "PUBCHEM_NAME", "FOODB_ID", "INCHIKEY", "COMPOSITE_ID"}
}

func (r resolvedRows) TableRows() [][]string {
	rows := make([][]string, len(r))
	for i, res := range r {
		rows[i] = append([]string{res.Query}, identifierCells(res)...)
	}
	return rows
}

//Personal.AI order the ending
