// Package export serializes analysis reports to CSV and studies to portable
// JSON or YAML documents.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phrazzld/cardsort-api/internal/domain/analysis"
)

// RowLabelHeader is the first header cell of every tabular export.
const RowLabelHeader = "Card"

// File names used when all tables are written at once.
const (
	SimilarityFile      = "similarity.csv"
	CooccurrenceFile    = "cooccurrence.csv"
	JointAppearanceFile = "joint_appearance.csv"
	ProjectionFile      = "projection.csv"
)

// WriteSimilarityCSV writes the similarity matrix with four decimals per
// value. Rows and columns follow the analysis-set order.
func WriteSimilarityCSV(w io.Writer, r *analysis.Report) error {
	return writeMatrix(w, r, func(i, j int) string {
		return strconv.FormatFloat(r.Similarity.At(i, j), 'f', 4, 64)
	})
}

// WriteCooccurrenceCSV writes the same-bucket counts.
func WriteCooccurrenceCSV(w io.Writer, r *analysis.Report) error {
	return writeMatrix(w, r, func(i, j int) string {
		return strconv.Itoa(r.Cooccurrence.At(i, j))
	})
}

// WriteJointAppearanceCSV writes the joint-appearance counts.
func WriteJointAppearanceCSV(w io.Writer, r *analysis.Report) error {
	return writeMatrix(w, r, func(i, j int) string {
		return strconv.Itoa(r.JointAppearance.At(i, j))
	})
}

// WriteProjectionCSV writes one row per card with its coordinates on each
// projection axis, in shortest round-trip decimal form.
func WriteProjectionCSV(w io.Writer, r *analysis.Report) error {
	dims := len(r.Projection.Eigenvalues)
	header := make([]string, 0, dims+1)
	header = append(header, RowLabelHeader)
	for d := 1; d <= dims; d++ {
		header = append(header, "PC"+strconv.Itoa(d))
	}

	rows := [][]string{header}
	for i := range r.CardIDs {
		row := make([]string, 0, dims+1)
		row = append(row, r.Labels[i])
		for d := 0; d < dims; d++ {
			row = append(row, strconv.FormatFloat(r.Projection.Coords[i][d], 'g', -1, 64))
		}
		rows = append(rows, row)
	}
	return writeRows(w, rows)
}

// WriteAll writes every table through open, which returns the destination
// for a file name. Destinations implementing io.Closer are closed.
func WriteAll(r *analysis.Report, open func(name string) (io.Writer, error)) error {
	tables := []struct {
		name  string
		write func(io.Writer, *analysis.Report) error
	}{
		{SimilarityFile, WriteSimilarityCSV},
		{CooccurrenceFile, WriteCooccurrenceCSV},
		{JointAppearanceFile, WriteJointAppearanceCSV},
		{ProjectionFile, WriteProjectionCSV},
	}

	for _, table := range tables {
		w, err := open(table.name)
		if err != nil {
			return fmt.Errorf("opening %s: %w", table.name, err)
		}
		err = table.write(w, r)
		if c, ok := w.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", table.name, err)
		}
	}
	return nil
}

func writeMatrix(w io.Writer, r *analysis.Report, cell func(i, j int) string) error {
	n := len(r.CardIDs)
	header := make([]string, 0, n+1)
	header = append(header, RowLabelHeader)
	header = append(header, r.Labels...)

	rows := make([][]string, 0, n+1)
	rows = append(rows, header)
	for i := 0; i < n; i++ {
		row := make([]string, 0, n+1)
		row = append(row, r.Labels[i])
		for j := 0; j < n; j++ {
			row = append(row, cell(i, j))
		}
		rows = append(rows, row)
	}
	return writeRows(w, rows)
}

// writeRows quotes fields containing a comma, a double quote or a line break,
// doubling embedded quotes. Lines end with \n.
func writeRows(w io.Writer, rows [][]string) error {
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		for i, field := range row {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(quoteField(field))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func quoteField(field string) string {
	if !strings.ContainsAny(field, ",\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
