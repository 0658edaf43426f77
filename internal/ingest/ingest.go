// Package ingest turns roster workbooks into a cross-referenced model of
// classes and students.
//
// Sheets are classified by name and header shape, processed in a fixed
// order (grade rosters, kindergarten roster, day schedules) and merged into
// one builder. Rows, columns and sheets that do not fit the expected layout
// are skipped and recorded in the Report; only a workbook that cannot be
// decoded at all fails the run.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"roster-crm/internal/aggregate"
	"roster-crm/internal/workbook"
	"roster-crm/models"
)

// ErrStructuralDecode marks a workbook that could not be read as a whole.
var ErrStructuralDecode = errors.New("ingest: workbook could not be decoded")

// IngestionError is the only error an ingestion run returns for bad input.
type IngestionError struct {
	Sheet string
	Err   error
}

func (e *IngestionError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("ingestion failed on sheet %q: %v", e.Sheet, e.Err)
	}
	return fmt.Sprintf("ingestion failed: %v", e.Err)
}

func (e *IngestionError) Unwrap() []error { return []error{ErrStructuralDecode, e.Err} }

// GridProvider exposes a decoded workbook. *workbook.Workbook implements it.
type GridProvider interface {
	SheetNames() []string
	Rows(name string) ([][]string, error)
}

// Result is a finished ingestion: the model, its derived views and the
// trace of what was accepted or skipped.
type Result struct {
	Database models.Database
	View     aggregate.View
	Report   Report
}

// Ingester runs ingestion passes against a schema.
type Ingester struct {
	schema   *Schema
	logger   *slog.Logger
	newRunID func() string
}

type Option func(*Ingester)

func WithSchema(s *Schema) Option {
	return func(in *Ingester) {
		if s != nil {
			in.schema = s
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(in *Ingester) {
		if l != nil {
			in.logger = l
		}
	}
}

// New creates an Ingester using the embedded schema unless overridden.
func New(opts ...Option) *Ingester {
	in := &Ingester{
		schema:   DefaultSchema(),
		logger:   slog.Default(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Schema returns the schema in use.
func (in *Ingester) Schema() *Schema { return in.schema }

// IngestBytes decodes an xlsx file and ingests it.
func (in *Ingester) IngestBytes(ctx context.Context, data []byte) (*Result, error) {
	wb, err := workbook.ReadBytes(data)
	if err != nil {
		in.logger.Error("Failed to decode workbook", "error", err, "bytes", len(data))
		return nil, &IngestionError{Err: err}
	}
	return in.Ingest(ctx, wb)
}

// Ingest runs every pass over the provider's sheets and returns the built
// model. Nothing is shared with the caller until the run has completed.
func (in *Ingester) Ingest(ctx context.Context, p GridProvider) (*Result, error) {
	runID := in.newRunID()
	log := in.logger.With("run_id", runID)

	jobs, ignored := in.schema.Plan(p.SheetNames())
	report := Report{RunID: runID, Ignored: ignored}
	b := newBuilder()

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep := SheetReport{Sheet: job.Sheet, Pass: job.Role}
		rows, err := p.Rows(job.Sheet)
		if err != nil {
			rep.Outcome = fatal(err)
			log.Error("Failed to read sheet", "sheet", job.Sheet, "error", err)
			return nil, &IngestionError{Sheet: job.Sheet, Err: err}
		}

		switch job.Role {
		case RoleGradeRoster:
			in.rosterPass(b, job.Sheet, rows, false, &rep)
		case RoleKindyRoster:
			in.rosterPass(b, job.Sheet, rows, true, &rep)
		case RoleDaySchedule:
			in.schedulePass(b, job.Sheet, rows, job.Sheet == in.schema.Sheets.KindySheet, &rep)
		}

		if rep.Outcome.Status == Skipped {
			log.Debug("Sheet skipped", "sheet", job.Sheet, "pass", job.Role, "reason", rep.Outcome.Reason)
		} else {
			log.Debug("Sheet processed", "sheet", job.Sheet, "pass", job.Role,
				"accepted", rep.Accepted, "skipped", len(rep.Skips()))
		}
		report.Sheets = append(report.Sheets, rep)
	}

	db := b.build()
	if problems := db.CheckLinks(); len(problems) > 0 {
		return nil, &IngestionError{Err: fmt.Errorf("inconsistent links: %s", strings.Join(problems, "; "))}
	}

	view := aggregate.Compute(db)
	log.Info("Workbook ingested",
		"classes", view.Stats.TotalClasses,
		"students", view.Stats.TotalStudents,
		"sheets", len(report.Sheets),
		"ignored_sheets", len(ignored))
	return &Result{Database: db, View: view, Report: report}, nil
}
