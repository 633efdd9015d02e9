package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func WriteCSV(w io.Writer, g Grid) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(g.Records()); err != nil {
		return err
	}
	return cw.Error()
}

// WriteCSVFile creates path and writes g to it.
func WriteCSVFile(path string, g Grid) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(fh, g); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
