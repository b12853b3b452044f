// Package clientfile reads and writes client record files in JSON or YAML
// form. Loading is tolerant: invalid records are collected into an error
// report instead of aborting the whole file.
package clientfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avdonin/contracts-lite/internal/model"
	"github.com/avdonin/contracts-lite/internal/validate"
)

type Record struct {
	ID                   *int64 `json:"id,omitempty" yaml:"id,omitempty"`
	validate.ClientInput `yaml:",inline"`
}

type RecordError struct {
	Index   int    `json:"index" yaml:"index"`
	ID      *int64 `json:"id,omitempty" yaml:"id,omitempty"`
	Type    string `json:"error_type" yaml:"error_type"`
	Message string `json:"message" yaml:"message"`
}

type ErrorReport struct {
	Source string        `json:"source" yaml:"source"`
	Errors []RecordError `json:"errors" yaml:"errors"`
}

type codec interface {
	decode(data []byte, v interface{}) error
	encode(v interface{}) ([]byte, error)
}

type Store struct {
	path  string
	codec codec
}

// Open picks the codec from the file extension (.json, .yaml, .yml).
func Open(path string) (*Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return &Store{path: path, codec: jsonCodec{}}, nil
	case ".yaml", ".yml":
		return &Store{path: path, codec: yamlCodec{}}, nil
	default:
		return nil, fmt.Errorf("unsupported client file extension %q", filepath.Ext(path))
	}
}

func (s *Store) Path() string { return s.path }

// Load reads the whole file. Records failing validation end up in the second
// return value; only a broken file as a whole is an error.
func (s *Store) Load() ([]model.Client, []RecordError, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil, err
	}

	var records []Record
	if err := s.codec.decode(data, &records); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", filepath.Base(s.path), err)
	}

	var clients []model.Client
	var recordErrors []RecordError
	for i, record := range records {
		client, err := validate.Client(record.ClientInput)
		if err != nil {
			recordErrors = append(recordErrors, RecordError{
				Index:   i + 1,
				ID:      record.ID,
				Type:    "ValidationError",
				Message: err.Error(),
			})
			continue
		}
		if record.ID != nil {
			client.ID = *record.ID
		}
		clients = append(clients, client)
	}
	return clients, recordErrors, nil
}

// WriteClean writes the valid records to a sibling file with a _clean suffix
// and returns its path.
func (s *Store) WriteClean(clients []model.Client) (string, error) {
	records := make([]Record, 0, len(clients))
	for _, client := range clients {
		records = append(records, toRecord(client))
	}
	out := s.derivePath("_clean")
	data, err := s.codec.encode(records)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// WriteErrorReport writes the per-record errors next to the source file with
// an _errors suffix and returns its path.
func (s *Store) WriteErrorReport(errs []RecordError) (string, error) {
	report := ErrorReport{
		Source: filepath.Base(s.path),
		Errors: errs,
	}
	out := s.derivePath("_errors")
	data, err := s.codec.encode(report)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func (s *Store) derivePath(suffix string) string {
	ext := filepath.Ext(s.path)
	root := strings.TrimSuffix(s.path, ext)
	return root + suffix + ext
}

func toRecord(client model.Client) Record {
	record := Record{
		ClientInput: validate.ClientInput{
			LastName:       client.LastName,
			FirstName:      client.FirstName,
			MiddleName:     client.MiddleName,
			PassportSeries: client.PassportSeries,
			PassportNumber: client.PassportNumber,
			BirthDate:      validate.FormatBirthDate(client.BirthDate),
			Phone:          client.Phone,
			Email:          client.Email,
			Address:        client.Address,
		},
	}
	if client.ID > 0 {
		id := client.ID
		record.ID = &id
	}
	return record
}
