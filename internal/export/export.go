package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/octobees/leadscout/internal/entity"
)

// Snapshot file names inside the output directory.
const (
	JSONFile = "latest.json"
	CSVFile  = "latest.csv"
	XLSXFile = "latest.xlsx"
)

// CSVHeader is the fixed column order of the CSV and spreadsheet snapshots.
var CSVHeader = []string{
	"name", "phone", "email", "address", "website",
	"website_status", "website_reason", "mobile_responsive",
	"rating", "review_count", "source", "score", "hotness",
}

// Document is the JSON snapshot layout.
type Document struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Leads       []entity.Lead `json:"leads"`
}

// Paths lists the files written by WriteSnapshot.
type Paths struct {
	JSON string `json:"json"`
	CSV  string `json:"csv"`
	XLSX string `json:"xlsx"`
}

// WriteSnapshot overwrites the JSON, CSV and XLSX snapshots in dir.
func WriteSnapshot(dir string, leads []entity.Lead, generatedAt time.Time) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}
	paths := Paths{
		JSON: filepath.Join(dir, JSONFile),
		CSV:  filepath.Join(dir, CSVFile),
		XLSX: filepath.Join(dir, XLSXFile),
	}
	if err := WriteJSON(paths.JSON, leads, generatedAt); err != nil {
		return Paths{}, err
	}
	if err := WriteCSV(paths.CSV, leads); err != nil {
		return Paths{}, err
	}
	if err := WriteXLSX(paths.XLSX, leads); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

// WriteJSON writes {generatedAt, leads} to path.
func WriteJSON(path string, leads []entity.Lead, generatedAt time.Time) error {
	if leads == nil {
		leads = []entity.Lead{}
	}
	data, err := json.MarshalIndent(Document{GeneratedAt: generatedAt.UTC(), Leads: leads}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json snapshot: %w", err)
	}
	return writeAtomic(path, data)
}

// WriteCSV writes the header row followed by one row per lead.
func WriteCSV(path string, leads []entity.Lead) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, lead := range leads {
		if err := w.Write(Row(lead)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return writeAtomic(path, buf.Bytes())
}

// Row renders a lead in CSVHeader order. Missing values are empty strings.
func Row(lead entity.Lead) []string {
	mobile := ""
	if lead.Verdict.MobileResponsive != nil {
		mobile = strconv.FormatBool(*lead.Verdict.MobileResponsive)
	}
	rating := ""
	if lead.Rating != nil {
		rating = strconv.FormatFloat(*lead.Rating, 'f', -1, 64)
	}
	reviews := ""
	if lead.ReviewCount != nil {
		reviews = strconv.Itoa(*lead.ReviewCount)
	}
	return []string{
		lead.Name,
		deref(lead.Phone),
		deref(lead.Email),
		deref(lead.Address),
		deref(lead.Website),
		string(lead.Verdict.Status),
		lead.Verdict.Reason,
		mobile,
		rating,
		reviews,
		lead.Source.Label(),
		strconv.Itoa(lead.Score),
		string(lead.Hotness),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// writeAtomic replaces path with data so readers never see a partial snapshot.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
