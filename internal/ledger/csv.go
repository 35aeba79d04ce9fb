package ledger

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		rows = []Row{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write ledger csv: %w", err)
	}
	return nil
}

func WriteCSVFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes everything recorded so far.
func (r *Recorder) WriteCSV(w io.Writer) error {
	return WriteCSV(w, r.Rows())
}
