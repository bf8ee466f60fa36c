package recorder

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"SignalDesk/internal/model"
)

const dateLayout = "2006-01-02"

// CSVRecorder overwrites a single CSV file with the full table on every Save.
type CSVRecorder struct {
	path string
	mu   sync.Mutex
}

// NewCSVRecorder returns a recorder writing to path. The file is not touched
// until the first Save.
func NewCSVRecorder(path string) *CSVRecorder {
	return &CSVRecorder{path: path}
}

func (r *CSVRecorder) Path() string { return r.path }

// Save truncates the file and writes the header plus one line per row.
func (r *CSVRecorder) Save(table *model.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range table.Rows {
		if err := w.Write(encodeRow(row)); err != nil {
			f.Close()
			return fmt.Errorf("write csv row %s: %w", row.Time.Format(dateLayout), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	log.Printf("[INFO] wrote %d rows to %s", table.Len(), r.path)
	return nil
}

func encodeRow(row model.IndicatorRow) []string {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		row.Time.Format(dateLayout),
		num(row.Open), num(row.High), num(row.Low), num(row.Close), num(row.Volume),
		num(row.MA20), num(row.RSI), num(row.BBHigh), num(row.BBLow),
	}
}

// Load reads a snapshot written by Save back into a table.
func Load(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read csv: missing header")
	}
	if len(records[0]) != len(Header) {
		return nil, fmt.Errorf("read csv: expected %d columns, got %d", len(Header), len(records[0]))
	}

	table := &model.Table{Rows: make([]model.IndicatorRow, 0, len(records)-1)}
	for i, rec := range records[1:] {
		row, err := decodeRow(rec)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", i+2, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func decodeRow(rec []string) (model.IndicatorRow, error) {
	var row model.IndicatorRow
	t, err := time.Parse(dateLayout, rec[0])
	if err != nil {
		return row, err
	}
	row.Time = t
	dst := []*float64{&row.Open, &row.High, &row.Low, &row.Close, &row.Volume, &row.MA20, &row.RSI, &row.BBHigh, &row.BBLow}
	for j, p := range dst {
		v, err := strconv.ParseFloat(rec[j+1], 64)
		if err != nil {
			return row, fmt.Errorf("column %s: %w", Header[j+1], err)
		}
		*p = v
	}
	return row, nil
}
