package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/octobees/leadscout/internal/entity"
)

// CSVValidationError indicates that an uploaded CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// LoadFile reads fragments from a .json or .csv file.
func LoadFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fragments file: %w", err)
	}
	defer f.Close()

	var fragments []entity.Fragment
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		fragments, err = ReadCSV(f)
	default:
		fragments, err = ReadJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewStatic(fragments), nil
}

// ReadJSON decodes either a fragment array or an object keyed by source
// ({"google_maps": [...], "yelp": [...]}).
func ReadJSON(r io.Reader) ([]entity.Fragment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read fragments: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var list []entity.Fragment
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode fragments: %w", err)
		}
		return list, nil
	}

	var bySource map[string][]entity.Fragment
	if err := json.Unmarshal(data, &bySource); err != nil {
		return nil, fmt.Errorf("decode fragments: %w", err)
	}
	keys := make([]entity.Source, 0, len(bySource))
	raw := make(map[entity.Source]string, len(bySource))
	for k := range bySource {
		src, err := entity.ParseSource(k)
		if err != nil {
			return nil, err
		}
		keys = append(keys, src)
		raw[src] = k
	}

	var out []entity.Fragment
	for _, src := range entity.SortSources(keys) {
		for _, f := range bySource[raw[src]] {
			if f.Source == "" {
				f.Source = src
			}
			out = append(out, f)
		}
	}
	return out, nil
}

var (
	requiredCSVHeaders = []string{"name"}
	csvAliases         = map[string]string{
		"company":      "name",
		"business":     "name",
		"reviews":      "review_count",
		"reviewcount":  "review_count",
		"url":          "website",
		"phone_number": "phone",
	}
)

// ReadCSV parses fragments from a CSV with a "name" column and optional phone, email,
// address, website, rating, review_count and source columns. Rows without a name are
// skipped; malformed numbers or unknown sources fail with CSVValidationError.
func ReadCSV(r io.Reader) ([]entity.Fragment, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, CSVValidationError{Message: "csv file is empty"}
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index, err := buildHeaderIndex(header)
	if err != nil {
		return nil, err
	}
	col := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		fragments []entity.Fragment
		rowNum    = 1
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rowNum++

		name := col(row, "name")
		if name == "" {
			continue
		}

		rating, err := parseOptionalFloat(col(row, "rating"))
		if err != nil {
			return nil, CSVValidationError{Message: fmt.Sprintf("invalid rating value on row %d", rowNum)}
		}
		reviews, err := parseOptionalInt(col(row, "review_count"))
		if err != nil {
			return nil, CSVValidationError{Message: fmt.Sprintf("invalid reviews value on row %d", rowNum)}
		}

		var src entity.Source
		if raw := col(row, "source"); raw != "" {
			if src, err = entity.ParseSource(raw); err != nil {
				return nil, CSVValidationError{Message: fmt.Sprintf("unknown source %q on row %d", raw, rowNum)}
			}
		}

		fragments = append(fragments, entity.Fragment{
			Name:        name,
			Phone:       normalizeString(col(row, "phone")),
			Email:       normalizeString(col(row, "email")),
			Address:     normalizeString(col(row, "address")),
			Website:     normalizeString(col(row, "website")),
			Rating:      rating,
			ReviewCount: reviews,
			Source:      src,
		})
	}
	return fragments, nil
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		if alias, ok := csvAliases[key]; ok {
			key = alias
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

func parseOptionalFloat(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseOptionalInt(value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(strings.ReplaceAll(value, ",", ""))
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func normalizeString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
