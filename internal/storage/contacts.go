package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"lead-assistant/internal/contact"
)

// csvHeader is written once, when the tabular file is first created.
var csvHeader = []string{
	"Timestamp", "First Name", "Last Name", "Phone", "Email",
	"Username", "User ID", "Source", "Additional Info",
}

const csvTimeLayout = "2006-01-02 15:04:05"

// ContactStore appends captured leads to a JSON array file and a CSV file.
// A single mutex serializes writers across both sinks.
type ContactStore struct {
	jsonPath string
	csvPath  string
	log      *zap.Logger
	now      func() time.Time

	mu sync.Mutex
}

func NewContactStore(jsonPath, csvPath string, log *zap.Logger) (*ContactStore, error) {
	for _, p := range []string{jsonPath, csvPath} {
		if err := ensureDir(p); err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactStore{jsonPath: jsonPath, csvPath: csvPath, log: log, now: time.Now}, nil
}

func (s *ContactStore) JSONPath() string { return s.jsonPath }

// Save persists rec and reports success. Failures are logged, never returned.
func (s *ContactStore) Save(rec contact.Record) bool {
	stored, err := s.Append(rec)
	if err != nil {
		s.log.Error("contact save failed",
			zap.Int64("user_id", rec.UserID),
			zap.String("source", string(rec.Source)),
			zap.Error(err))
		return false
	}
	s.log.Info("contact saved",
		zap.Int64("user_id", stored.UserID),
		zap.String("source", string(stored.Source)))
	return true
}

// Append stamps the record and writes it to both sinks. Both sinks are
// always attempted; their errors are joined.
func (s *ContactStore) Append(rec contact.Record) (contact.Record, error) {
	rec.Timestamp = s.now()
	if rec.Source == "" {
		rec.Source = contact.SourceManual
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jsonErr := s.appendJSONUnlocked(rec)
	csvErr := s.appendCSVUnlocked(rec)
	if err := errors.Join(jsonErr, csvErr); err != nil {
		return rec, err
	}
	return rec, nil
}

// Count returns the number of stored records, 0 when the file is absent or corrupt.
func (s *ContactStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loadUnlocked())
}

// LoadAll returns every stored record; missing or corrupt files read as empty.
func (s *ContactStore) LoadAll() []contact.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUnlocked()
}

func (s *ContactStore) loadUnlocked() []contact.Record {
	data, err := os.ReadFile(s.jsonPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("contacts file unreadable", zap.String("path", s.jsonPath), zap.Error(err))
		}
		return []contact.Record{}
	}
	var recs []contact.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		s.log.Warn("contacts file corrupt, treating as empty", zap.String("path", s.jsonPath), zap.Error(err))
		return []contact.Record{}
	}
	if recs == nil {
		recs = []contact.Record{}
	}
	return recs
}

func (s *ContactStore) appendJSONUnlocked(rec contact.Record) error {
	recs := append(s.loadUnlocked(), rec)
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode contacts: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.jsonPath), filepath.Base(s.jsonPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp contacts file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write contacts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close contacts: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.jsonPath); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace contacts: %w", err)
	}
	return nil
}

func (s *ContactStore) appendCSVUnlocked(rec contact.Record) error {
	_, statErr := os.Stat(s.csvPath)
	fresh := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(s.csvPath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err := w.Write(csvRow(rec)); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func csvRow(rec contact.Record) []string {
	return []string{
		rec.Timestamp.Format(csvTimeLayout),
		rec.FirstName,
		rec.LastName,
		rec.PhoneNumber,
		rec.Email,
		rec.Username,
		strconv.FormatInt(rec.UserID, 10),
		string(rec.Source),
		rec.AdditionalInfo,
	}
}

// WriteCSV renders records with the same header and row layout as the CSV sink.
func WriteCSV(out io.Writer, recs []contact.Record) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		if err := w.Write(csvRow(r)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
