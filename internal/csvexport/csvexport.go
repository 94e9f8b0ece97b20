// Package csvexport emits the two matrix CSVs of spec.md §6: a scores
// matrix (integer edge weight, empty cell when zero) and a symbols matrix
// (the "|"-separated names contributing to that edge). Both share a header
// row of file paths and a leading column of file paths, row/column order
// matching graph.Graph.Files()'s stable lexicographic order so repeated
// runs over the same snapshot are byte-identical (spec.md §8 Determinism).
package csvexport

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"relgraph/internal/graph"
)

// WriteScores writes scores.csv to w: cell (row, col) is the integer
// score of edge row -> col, empty when zero or absent.
func WriteScores(w io.Writer, g *graph.Graph) error {
	files := g.Files()
	cw := csv.NewWriter(w)

	header := make([]string, len(files)+1)
	header[0] = ""
	copy(header[1:], files)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range files {
		record := make([]string, len(files)+1)
		record[0] = row
		for j, col := range files {
			if row == col {
				continue
			}
			if e, ok := g.Edge(row, col); ok && e.Score != 0 {
				record[j+1] = strconv.Itoa(e.Score)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSymbols writes symbols.csv to w: cell (row, col) is the
// "|"-separated list of symbol names contributing to edge row -> col.
func WriteSymbols(w io.Writer, g *graph.Graph) error {
	files := g.Files()
	cw := csv.NewWriter(w)

	header := make([]string, len(files)+1)
	header[0] = ""
	copy(header[1:], files)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range files {
		record := make([]string, len(files)+1)
		record[0] = row
		for j, col := range files {
			if row == col {
				continue
			}
			if e, ok := g.Edge(row, col); ok && len(e.RelatedSymbols) > 0 {
				record[j+1] = strings.Join(e.RelatedSymbols, "|")
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
