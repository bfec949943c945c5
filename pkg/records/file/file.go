package file

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/records"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Format is the on-disk layout of a records file
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported records file extension %q, expected .json or .csv", filepath.Ext(path))
	}
}

// FileRecordSource reads records from a JSON array of {"id","balance"}
// objects or from CSV rows of id,balance with an optional header row.
type FileRecordSource struct {
	path   string
	format Format
	logger *zap.Logger
}

var _ records.IRecordSource = (*FileRecordSource)(nil)

func NewFileRecordSource(path string, logger *zap.Logger) (*FileRecordSource, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return &FileRecordSource{path: path, format: format, logger: logger}, nil
}

func (f *FileRecordSource) LoadRecords(ctx context.Context) ([]reserves.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open records file %s", f.path)
	}
	defer func() { _ = fh.Close() }()

	var recs []reserves.Record
	switch f.format {
	case FormatJSON:
		recs, err = ReadJSON(fh)
	case FormatCSV:
		recs, err = ReadCSV(fh)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read records file %s", f.path)
	}

	f.logger.Sugar().Infow("Loaded records from file", "path", f.path, "format", f.format, "count", len(recs))
	return recs, nil
}

func (f *FileRecordSource) Close() error {
	return nil
}

// jsonRecord mirrors reserves.Record with both fields required
type jsonRecord struct {
	ID      *uint64 `json:"id"`
	Balance *uint64 `json:"balance"`
}

// ReadJSON decodes a single JSON array of records. Every record must carry
// both id and balance, and nothing may follow the array.
func ReadJSON(r io.Reader) ([]reserves.Record, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var raw []jsonRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "invalid JSON records")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid JSON records: unexpected data after records array")
	}

	recs := make([]reserves.Record, 0, len(raw))
	for i, rec := range raw {
		if rec.ID == nil {
			return nil, errors.Errorf("record %d: missing id", i)
		}
		if rec.Balance == nil {
			return nil, errors.Errorf("record %d: missing balance", i)
		}
		recs = append(recs, reserves.Record{ID: *rec.ID, Balance: *rec.Balance})
	}
	return recs, nil
}

// isCSVHeader reports whether row is the id,balance header
func isCSVHeader(row []string) bool {
	return strings.EqualFold(strings.TrimSpace(row[0]), "id") &&
		strings.EqualFold(strings.TrimSpace(row[1]), "balance")
}

// ReadCSV decodes id,balance rows. The first row may be an id,balance header.
func ReadCSV(r io.Reader) ([]reserves.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	recs := []reserves.Record{}
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "invalid CSV records")
		}
		if line == 1 && isCSVHeader(row) {
			continue
		}

		id, err := strconv.ParseUint(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: invalid account id %q", line, row[0])
		}
		balance, err := strconv.ParseUint(strings.TrimSpace(row[1]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: invalid balance %q", line, row[1])
		}
		recs = append(recs, reserves.Record{ID: id, Balance: balance})
	}
	return recs, nil
}

// WriteJSON encodes records as an indented JSON array.
func WriteJSON(w io.Writer, recs []reserves.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// WriteCSV encodes records as id,balance rows with a header.
func WriteCSV(w io.Writer, recs []reserves.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "balance"}); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{strconv.FormatUint(r.ID, 10), strconv.FormatUint(r.Balance, 10)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
