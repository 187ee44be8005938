package ingest

// reader.go reads the tabular ingestion source: a CSV file with ten
// positional columns (identifier, zone, price, category, area,
// description, owner, phone, days since posted, posted timestamp).
//
// Reading the file is the only operation that can fail as a batch;
// once records are in memory every row normalizes independently and a
// bad field degrades in place.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/imm-a8ub/backoffice/internal/listing"
)

// ColumnCount is the fixed number of source columns.
const ColumnCount = 10

// Positional column indexes in the source file.
const (
	colID = iota
	colZone
	colPrice
	colCategory
	colArea
	colDescription
	colProprietor
	colPhone
	colDaysSincePosted
	colPostedAt
)

// Row is one raw source record before normalization.
type Row struct {
	ID              string
	Zone            string
	Price           string
	Category        string
	Area            string
	Description     string
	Proprietor      string
	Phone           string
	DaysSincePosted string
	PostedAt        string
}

// ReadFile loads and parses the ingestion source. The returned error
// covers only the file I/O boundary; malformed rows inside a readable
// file are padded or truncated, never fatal.
func ReadFile(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes CSV bytes into raw rows. A UTF-8 BOM is skipped and
// invalid byte sequences are replaced so one bad export cannot take
// down the batch.
func Parse(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte("?"))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // pad/truncate instead of erroring

	var rows []Row
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv line %d: %w", line, err)
		}

		if line == 1 && isHeader(record) {
			continue
		}

		rows = append(rows, toRow(record))
	}
	return rows, nil
}

// isHeader reports whether the first record is a column header row.
func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "id")
}

// toRow maps a positional record onto a Row, padding short records.
func toRow(record []string) Row {
	padded := make([]string, ColumnCount)
	for i := range padded {
		if i < len(record) {
			padded[i] = strings.TrimSpace(record[i])
		}
	}
	return Row{
		ID:              padded[colID],
		Zone:            padded[colZone],
		Price:           padded[colPrice],
		Category:        padded[colCategory],
		Area:            padded[colArea],
		Description:     padded[colDescription],
		Proprietor:      padded[colProprietor],
		Phone:           padded[colPhone],
		DaysSincePosted: padded[colDaysSincePosted],
		PostedAt:        padded[colPostedAt],
	}
}

// Normalize converts a raw row into a typed listing. Unparseable
// fields degrade to their unknown values; a row without an identifier
// gets a generated one so it can still move through the workflow.
func Normalize(row Row) listing.Listing {
	id := row.ID
	if id == "" {
		id = uuid.New().String()
		slog.Warn("ingest: row missing identifier, generated one",
			"id", id,
			"zone", row.Zone,
		)
	}

	price := CleanPrice(row.Price)
	if !price.Valid && row.Price != "" {
		slog.Debug("ingest: price degraded to unknown", "id", id, "raw", row.Price)
	}

	area := CleanArea(row.Area)
	if !area.Valid && row.Area != "" {
		slog.Debug("ingest: area degraded to unknown", "id", id, "raw", row.Area)
	}

	return listing.Listing{
		ID:               id,
		Zone:             row.Zone,
		Price:            price,
		Area:             area,
		Category:         row.Category,
		Description:      row.Description,
		ShortDescription: ShortDescription(row.Description, row.Category),
		Proprietor:       row.Proprietor,
		Phone:            row.Phone,
		DaysSincePosted:  row.DaysSincePosted,
		PostedAt:         row.PostedAt,
	}
}

// NormalizeAll maps Normalize over a batch, preserving order.
func NormalizeAll(rows []Row) []listing.Listing {
	out := make([]listing.Listing, len(rows))
	for i, row := range rows {
		out[i] = Normalize(row)
	}
	return out
}
