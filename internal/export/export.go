// ABOUTME: Tabular export to spreadsheet-friendly CSV and saving of downloaded reports
// ABOUTME: CSV carries a UTF-8 byte order mark so spreadsheet tools detect the encoding

package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BOM is the UTF-8 byte order mark prefixed to CSV output
const BOM = "\uFEFF"

// ErrNoData is returned when there are no rows to export
var ErrNoData = errors.New("no data to export")

// Row is one record keyed by field name
type Row map[string]interface{}

// Formatter converts a cell value before it is written
type Formatter func(value interface{}, row Row) interface{}

// Column selects a field and gives it a header label
type Column struct {
	Key       string
	Label     string
	Formatter Formatter
}

// Options controls SaveCSV and SaveBlob
type Options struct {
	Columns []Column
	// NoTimestamp disables the _YYYY-MM-DDTHH-MM-SS file name suffix
	NoTimestamp bool
	// Now overrides the clock used for the suffix
	Now func() time.Time
}

// CSV renders rows as CSV text. Without columns every key of the first row
// becomes a column, in sorted order.
func CSV(rows []Row, columns []Column) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	if len(columns) == 0 {
		columns = columnsFrom(rows[0])
	}

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Label
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(headers, ","))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			value := row[col.Key]
			if col.Formatter != nil {
				value = col.Formatter(value, row)
			}
			cells[i] = quote(cell(value))
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	return []byte(BOM + strings.Join(lines, "\n")), nil
}

// SaveCSV writes rows as <dir>/<name>[_timestamp].csv and returns the path
func SaveCSV(dir, name string, rows []Row, opts Options) (string, error) {
	data, err := CSV(rows, opts.Columns)
	if err != nil {
		return "", err
	}
	return write(dir, FileName(name, ".csv", opts), data)
}

// SaveBlob writes a downloaded file. When name already has an extension it
// is kept, otherwise ext is appended.
func SaveBlob(dir, name, ext string, data []byte, opts Options) (string, error) {
	if e := filepath.Ext(name); e != "" {
		name, ext = strings.TrimSuffix(name, e), e
	}
	return write(dir, FileName(name, ext, opts), data)
}

// FileName builds name[_YYYY-MM-DDTHH-MM-SS]ext. The timestamp is UTC.
func FileName(name, ext string, opts Options) string {
	if opts.NoTimestamp {
		return name + ext
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	return name + "_" + now().UTC().Format("2006-01-02T15-04-05") + ext
}

func write(dir, name string, data []byte) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	slog.Debug("Exported file", "path", path, "bytes", len(data))
	return path, nil
}

func columnsFrom(row Row) []Column {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	columns := make([]Column, len(keys))
	for i, k := range keys {
		columns[i] = Column{Key: k, Label: k}
	}
	return columns
}

func cell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// quote wraps fields containing a comma, newline or quote, doubling quotes
func quote(s string) string {
	if !strings.ContainsAny(s, ",\n\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
