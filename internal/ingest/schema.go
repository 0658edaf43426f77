package ingest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"roster-crm/models"
)

//go:embed schema.yaml
var defaultSchemaYAML []byte

// Schema describes the workbook template: which sheets play which role and
// which header labels carry which student field.
type Schema struct {
	Version  string         `yaml:"version"`
	Sheets   SheetRules     `yaml:"sheets"`
	Roster   RosterLayout   `yaml:"roster"`
	Schedule ScheduleLayout `yaml:"schedule"`

	gradeSheet *regexp.Regexp
	exact      map[string]string
	loose      map[string]string
}

type SheetRules struct {
	GradeRosterPattern string   `yaml:"gradeRosterPattern"`
	KindySheet         string   `yaml:"kindySheet"`
	DaySchedule        []string `yaml:"daySchedule"`
}

type RosterLayout struct {
	Header      []string        `yaml:"header"`
	KindyHeader []string        `yaml:"kindyHeader"`
	Columns     []ColumnMapping `yaml:"columns"`
}

type ColumnMapping struct {
	Header string `yaml:"header"`
	Field  string `yaml:"field"`
}

type ScheduleLayout struct {
	ClassRow   string `yaml:"classRow"`
	TimeRow    string `yaml:"timeRow"`
	TeacherRow string `yaml:"teacherRow"`
}

// IssueKind classifies a header that did not match the schema literally.
type IssueKind string

const (
	IssueHeaderDrift   IssueKind = "header_drift"
	IssueUnknownColumn IssueKind = "unknown_column"
)

// SchemaIssue records a roster header cell that deviates from the schema.
type SchemaIssue struct {
	Sheet  string    `json:"sheet"`
	Column int       `json:"column"`
	Header string    `json:"header"`
	Kind   IssueKind `json:"kind"`
	Field  string    `json:"field,omitempty"`
}

// DefaultSchema returns the embedded template schema.
func DefaultSchema() *Schema {
	s, err := ParseSchema(defaultSchemaYAML)
	if err != nil {
		panic(fmt.Sprintf("ingest: embedded schema is invalid: %v", err))
	}
	return s
}

// ParseSchema decodes and validates a YAML schema.
func ParseSchema(data []byte) (*Schema, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("schema: payload is empty")
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSchema reads a schema file. An empty path yields the default schema.
func LoadSchema(path string) (*Schema, error) {
	if path == "" {
		return DefaultSchema(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", path, err)
	}
	return s, nil
}

func (s *Schema) compile() error {
	if s.Version == "" {
		return errors.New("schema: version is required")
	}
	if len(s.Roster.Header) != 2 || len(s.Roster.KindyHeader) != 2 {
		return errors.New("schema: roster headers must be pairs of labels")
	}
	if s.Schedule.ClassRow == "" || s.Schedule.TimeRow == "" || s.Schedule.TeacherRow == "" {
		return errors.New("schema: schedule row labels are required")
	}
	if s.Sheets.GradeRosterPattern == "" {
		return errors.New("schema: grade roster pattern is required")
	}
	re, err := regexp.Compile(s.Sheets.GradeRosterPattern)
	if err != nil {
		return fmt.Errorf("schema: grade roster pattern: %w", err)
	}
	s.gradeSheet = re

	known := make(map[string]bool, len(models.StudentFields))
	for _, f := range models.StudentFields {
		known[f] = true
	}
	s.exact = make(map[string]string, len(s.Roster.Columns))
	s.loose = make(map[string]string, len(s.Roster.Columns))
	for _, col := range s.Roster.Columns {
		if !known[col.Field] {
			return fmt.Errorf("schema: column %q maps to unknown field %q", col.Header, col.Field)
		}
		s.exact[col.Header] = col.Field
		s.loose[normalizeHeader(col.Header)] = col.Field
	}
	return nil
}

// matchColumn resolves a header cell to a student field. drift is true when
// only the whitespace/case-normalized form matched.
func (s *Schema) matchColumn(header string) (field string, drift, ok bool) {
	if f, found := s.exact[header]; found {
		return f, false, true
	}
	if f, found := s.loose[normalizeHeader(header)]; found {
		return f, true, true
	}
	return "", false, false
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

type columnBinding struct {
	index int
	field string
}

// bindColumns maps a roster header row onto student fields. The first two
// cells (class, name) are structural and never bound.
func (s *Schema) bindColumns(sheet string, header []string) ([]columnBinding, []SchemaIssue) {
	var (
		bindings []columnBinding
		issues   []SchemaIssue
	)
	for i := 2; i < len(header); i++ {
		h := header[i]
		if strings.TrimSpace(h) == "" {
			continue
		}
		field, drift, ok := s.matchColumn(h)
		switch {
		case !ok:
			issues = append(issues, SchemaIssue{Sheet: sheet, Column: i, Header: h, Kind: IssueUnknownColumn})
		case drift:
			issues = append(issues, SchemaIssue{Sheet: sheet, Column: i, Header: h, Kind: IssueHeaderDrift, Field: field})
			bindings = append(bindings, columnBinding{index: i, field: field})
		default:
			bindings = append(bindings, columnBinding{index: i, field: field})
		}
	}
	return bindings, issues
}
