// Package service owns the live roster: it swaps in freshly ingested
// databases whole, keeps the comment overlay across re-ingestion and
// persists snapshots.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"roster-crm/internal/aggregate"
	"roster-crm/internal/demo"
	"roster-crm/internal/ingest"
	"roster-crm/internal/store"
	"roster-crm/models"
)

// Source tells where the live database came from.
type Source string

const (
	SourceEmpty    Source = "empty"
	SourceWorkbook Source = "workbook"
	SourceDemo     Source = "demo"
	SourceSnapshot Source = "snapshot"
)

// DemoWarning is shown whenever the demonstration dataset is live.
const DemoWarning = "Demo mode: Using sample data"

var (
	ErrEmptyComment    = errors.New("comment text is empty")
	ErrUnknownKind     = errors.New("unknown comment kind")
	ErrInvalidSnapshot = errors.New("snapshot must contain classes and students")
)

// State is one immutable generation of the roster. Readers may keep a State
// for as long as they like; updates publish a new one.
type State struct {
	Database models.Database
	View     aggregate.View
	Report   *ingest.Report
	Source   Source
	Warning  string
	LoadedAt time.Time
}

// Ingester is the ingestion entry point the registry drives.
type Ingester interface {
	IngestBytes(ctx context.Context, data []byte) (*ingest.Result, error)
}

// SnapshotSaver persists the whole database as a blob.
type SnapshotSaver interface {
	Save(ctx context.Context, db models.Database) error
	Load(ctx context.Context) (models.Database, error)
	LoadComments(ctx context.Context) (models.Comments, error)
}

// Mirror receives a copy of every published database (e.g. Postgres).
type Mirror interface {
	SaveDatabase(ctx context.Context, db models.Database) error
}

// MirrorLoader is implemented by mirrors that can rebuild the database they
// hold.
type MirrorLoader interface {
	LoadDatabase(ctx context.Context) (models.Database, error)
}

// RunRecorder is implemented by mirrors that also keep ingestion reports.
type RunRecorder interface {
	SaveRun(ctx context.Context, report ingest.Report) error
}

// Registry serialises writers and publishes States atomically.
type Registry struct {
	ingester  Ingester
	snapshots SnapshotSaver
	mirror    Mirror
	logger    *slog.Logger
	now       func() time.Time

	writeMu sync.Mutex
	mu      sync.RWMutex
	state   *State
}

type Option func(*Registry)

func WithSnapshots(s SnapshotSaver) Option { return func(r *Registry) { r.snapshots = s } }
func WithMirror(m Mirror) Option           { return func(r *Registry) { r.mirror = m } }
func WithLogger(l *slog.Logger) Option     { return func(r *Registry) { r.logger = l } }
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry starts with an empty roster.
func NewRegistry(in Ingester, opts ...Option) *Registry {
	r := &Registry{
		ingester: in,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	db := models.NewDatabase()
	r.state = &State{Database: db, View: aggregate.Compute(db), Source: SourceEmpty, LoadedAt: r.now()}
	return r
}

// Current returns the live state.
func (r *Registry) Current() *State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Registry) publish(s *State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Registry) newState(db models.Database, src Source) *State {
	return &State{Database: db, View: aggregate.Compute(db), Source: src, LoadedAt: r.now()}
}

// Upload reads a workbook and replaces the roster with its contents. Reading
// the stream is the only blocking step before ingestion. When the workbook
// cannot be ingested the demonstration dataset is published instead and the
// returned State carries a warning; the error is only non-nil when ctx ends
// or the stream itself fails.
func (r *Registry) Upload(ctx context.Context, src io.Reader) (*State, error) {
	data, err := readAll(ctx, src)
	if err != nil {
		return nil, err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	comments := r.Current().Database.Comments

	res, err := r.ingester.IngestBytes(ctx, data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Warn("Workbook ingestion failed, loading demonstration data", "error", err)
		st := r.demoState(comments)
		st.Warning = fmt.Sprintf("%s (%v)", DemoWarning, err)
		r.publish(st)
		r.persist(ctx, st.Database)
		return st, nil
	}

	db := res.Database.WithComments(comments)
	st := &State{
		Database: db,
		View:     res.View,
		Report:   &res.Report,
		Source:   SourceWorkbook,
		LoadedAt: r.now(),
	}
	r.publish(st)
	r.persist(ctx, db)
	if rec, ok := r.mirror.(RunRecorder); ok {
		if err := rec.SaveRun(ctx, res.Report); err != nil {
			r.logger.Error("Failed to record ingestion run", "run_id", res.Report.RunID, "error", err)
		}
	}
	return st, nil
}

func (r *Registry) demoState(keep models.Comments) *State {
	db := demo.Generate(r.now())
	for id, text := range keep.Classes {
		db.Comments.Classes[id] = text
	}
	for id, text := range keep.Students {
		db.Comments.Students[id] = text
	}
	st := r.newState(db, SourceDemo)
	st.Warning = DemoWarning
	return st
}

// LoadDemo publishes the demonstration dataset, keeping existing comments.
func (r *Registry) LoadDemo(ctx context.Context) *State {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	st := r.demoState(r.Current().Database.Comments)
	r.publish(st)
	r.persist(ctx, st.Database)
	return st
}

// Replace installs an imported snapshot as-is, bypassing ingestion.
func (r *Registry) Replace(ctx context.Context, db models.Database) (*State, error) {
	if db.Classes == nil || db.Students == nil {
		return nil, ErrInvalidSnapshot
	}
	db = db.Clone()
	db.Normalize()
	if problems := db.CheckLinks(); len(problems) > 0 {
		r.logger.Warn("Imported snapshot has broken links", "count", len(problems), "first", problems[0])
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	st := r.newState(db, SourceSnapshot)
	r.publish(st)
	r.persist(ctx, db)
	return st, nil
}

// Export returns a copy of the live database, comments included.
func (r *Registry) Export() models.Database {
	return r.Current().Database.Clone()
}

// ApplyComment appends a timestamped line to the comment of a class or
// student and returns the full new text.
func (r *Registry) ApplyComment(ctx context.Context, kind models.CommentKind, id, text string) (string, error) {
	if kind != models.CommentClass && kind != models.CommentStudent {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if isBlank(text) {
		return "", ErrEmptyComment
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	cur := r.Current()
	comments := cur.Database.Comments.Clone()
	line := r.now().Format(demo.CommentTimeLayout) + ": " + text
	target := comments.Classes
	if kind == models.CommentStudent {
		target = comments.Students
	}
	if existing := target[id]; existing != "" {
		target[id] = existing + "\n\n" + line
	} else {
		target[id] = line
	}

	db := cur.Database.WithComments(comments)
	next := *cur
	next.Database = db
	r.publish(&next)
	r.persist(ctx, db)
	return target[id], nil
}

// Restore loads the last saved snapshot. The Redis blob wins; without one the
// mirror is read back. A snapshot holding only comments brings up the
// demonstration dataset with those comments applied.
func (r *Registry) Restore(ctx context.Context) (*State, error) {
	loader, _ := r.mirror.(MirrorLoader)
	if r.snapshots == nil && loader == nil {
		return r.Current(), nil
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.snapshots != nil {
		db, err := r.snapshots.Load(ctx)
		if err == nil && len(db.Classes) > 0 {
			st := r.newState(db, SourceSnapshot)
			r.publish(st)
			r.logger.Info("Roster restored from snapshot", "classes", len(db.Classes), "students", len(db.Students))
			return st, nil
		}
		if err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("restore snapshot: %w", err)
		}
	}

	if loader != nil {
		db, err := loader.LoadDatabase(ctx)
		if err == nil && len(db.Classes) > 0 {
			st := r.newState(db, SourceSnapshot)
			r.publish(st)
			r.logger.Info("Roster restored from database mirror", "classes", len(db.Classes), "students", len(db.Students))
			return st, nil
		}
		if err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("restore mirror: %w", err)
		}
	}

	if r.snapshots == nil {
		return r.Current(), nil
	}
	comments, err := r.snapshots.LoadComments(ctx)
	if err == nil {
		st := r.demoState(models.NewComments())
		st.Database = st.Database.WithComments(comments)
		r.publish(st)
		r.logger.Info("Only comments found in snapshot, loaded demonstration data")
		return st, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("restore comments: %w", err)
	}
	return r.Current(), nil
}

func (r *Registry) persist(ctx context.Context, db models.Database) {
	if r.snapshots != nil {
		if err := r.snapshots.Save(ctx, db); err != nil {
			r.logger.Error("Failed to persist roster snapshot", "error", err)
		}
	}
	if r.mirror != nil {
		if err := r.mirror.SaveDatabase(ctx, db); err != nil {
			r.logger.Error("Failed to mirror roster", "error", err)
		}
	}
}

func readAll(ctx context.Context, src io.Reader) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
