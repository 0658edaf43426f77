package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roster-crm/internal/ingest"
	"roster-crm/models"
)

const batchSize = 200

// Repository mirrors the roster into Postgres tables.
type Repository struct {
	DB *gorm.DB
}

// NewRepository wraps a gorm connection; nil disables the repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Enabled() bool { return r != nil && r.DB != nil }

// Migrate creates or updates the roster tables.
func (r *Repository) Migrate() error {
	if !r.Enabled() {
		return nil
	}
	return r.DB.AutoMigrate(
		&models.ClassRecord{},
		&models.StudentRecord{},
		&models.Enrollment{},
		&models.CommentRecord{},
		&models.IngestionRunRecord{},
	)
}

// SaveDatabase replaces all class, student and enrollment rows in one
// transaction. Comments are upserted and never deleted.
func (r *Repository) SaveDatabase(ctx context.Context, db models.Database) error {
	if !r.Enabled() {
		return nil
	}
	rows := ToRecords(db)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []interface{}{&models.Enrollment{}, &models.ClassRecord{}, &models.StudentRecord{}} {
			if err := wipe.Delete(model).Error; err != nil {
				return err
			}
		}
		if len(rows.Classes) > 0 {
			if err := tx.CreateInBatches(rows.Classes, batchSize).Error; err != nil {
				return err
			}
		}
		if len(rows.Students) > 0 {
			if err := tx.CreateInBatches(rows.Students, batchSize).Error; err != nil {
				return err
			}
		}
		if len(rows.Enrollments) > 0 {
			if err := tx.CreateInBatches(rows.Enrollments, batchSize).Error; err != nil {
				return err
			}
		}
		if len(rows.Comments) > 0 {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "kind"}, {Name: "entity_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"text", "updated_at"}),
			}).CreateInBatches(rows.Comments, batchSize).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: save database: %w", err)
	}
	slog.Info("Roster mirrored to Postgres", "classes", len(rows.Classes), "students", len(rows.Students))
	return nil
}

// LoadDatabase reads the mirrored roster back.
func (r *Repository) LoadDatabase(ctx context.Context) (models.Database, error) {
	if !r.Enabled() {
		return models.Database{}, ErrNotFound
	}
	var rows Records
	tx := r.DB.WithContext(ctx)
	if err := tx.Find(&rows.Classes).Error; err != nil {
		return models.Database{}, fmt.Errorf("store: load classes: %w", err)
	}
	if err := tx.Find(&rows.Students).Error; err != nil {
		return models.Database{}, fmt.Errorf("store: load students: %w", err)
	}
	if err := tx.Find(&rows.Enrollments).Error; err != nil {
		return models.Database{}, fmt.Errorf("store: load enrollments: %w", err)
	}
	if err := tx.Find(&rows.Comments).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Database{}, fmt.Errorf("store: load comments: %w", err)
	}
	if len(rows.Classes) == 0 && len(rows.Students) == 0 {
		return models.Database{}, ErrNotFound
	}
	return FromRecords(rows), nil
}

// SaveRun stores the report of one ingestion run.
func (r *Repository) SaveRun(ctx context.Context, report ingest.Report) error {
	if !r.Enabled() {
		return nil
	}
	rec, err := RunRecord(report)
	if err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("store: save run %s: %w", report.RunID, err)
	}
	return nil
}

// RecentRuns returns the latest ingestion runs, newest first.
func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]models.IngestionRunRecord, error) {
	if !r.Enabled() {
		return nil, ErrNotFound
	}
	var runs []models.IngestionRunRecord
	err := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("store: load runs: %w", err)
	}
	return runs, nil
}

// RunRecord summarises a report into its table row.
func RunRecord(report ingest.Report) (models.IngestionRunRecord, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return models.IngestionRunRecord{}, fmt.Errorf("store: encode report: %w", err)
	}
	accepted, skippedRows, skippedSheets := report.Counts()
	return models.IngestionRunRecord{
		RunID:         report.RunID,
		Sheets:        len(report.Sheets),
		Accepted:      accepted,
		SkippedRows:   skippedRows,
		SkippedSheets: skippedSheets,
		SchemaIssues:  len(report.SchemaIssues()),
		Report:        datatypes.JSON(data),
	}, nil
}

// Records is the relational form of a database.
type Records struct {
	Classes     []models.ClassRecord
	Students    []models.StudentRecord
	Enrollments []models.Enrollment
	Comments    []models.CommentRecord
}

// ToRecords flattens db into table rows, ordered by id.
func ToRecords(db models.Database) Records {
	var out Records
	for _, id := range sortedKeys(db.Classes) {
		c := db.Classes[id]
		out.Classes = append(out.Classes, models.ClassRecord{
			ID:             c.ID,
			Name:           c.Name,
			Grade:          c.Grade,
			LevelCode:      c.LevelCode,
			Level:          c.Level,
			LevelName:      c.LevelName,
			FullLevelName:  c.FullLevelName,
			AdditionalInfo: c.AdditionalInfo,
			Schedule:       c.Schedule,
			Teachers:       c.Teachers,
		})
	}

	type pair struct{ class, student string }
	links := map[pair]*models.Enrollment{}
	var order []pair
	enroll := func(cid, sid string) *models.Enrollment {
		k := pair{cid, sid}
		if e, ok := links[k]; ok {
			return e
		}
		e := &models.Enrollment{ClassID: cid, StudentID: sid, ClassPosition: -1, StudentPosition: -1}
		links[k] = e
		order = append(order, k)
		return e
	}

	for _, id := range sortedKeys(db.Students) {
		s := db.Students[id]
		out.Students = append(out.Students, models.StudentRecord{
			ID:            s.ID,
			EnglishName:   s.EnglishName,
			KoreanName:    s.KoreanName,
			Grade:         s.Grade,
			Notes:         s.Notes,
			Consent:       s.Consent,
			Hold:          s.Hold,
			Feedback1:     s.Feedback1,
			Feedback2:     s.Feedback2,
			PhoneNumber:   s.PhoneNumber,
			Email:         s.Email,
			StartDate:     s.StartDate,
			OtherDetails:  s.OtherDetails,
			Consultations: s.Consultations,
		})
		for pos, cid := range s.Classes {
			enroll(cid, s.ID).StudentPosition = pos
		}
	}
	for _, id := range sortedKeys(db.Classes) {
		for pos, sid := range db.Classes[id].Students {
			enroll(id, sid).ClassPosition = pos
		}
	}
	for _, k := range order {
		out.Enrollments = append(out.Enrollments, *links[k])
	}

	for _, id := range sortedKeys(db.Comments.Classes) {
		out.Comments = append(out.Comments, models.CommentRecord{Kind: string(models.CommentClass), EntityID: id, Text: db.Comments.Classes[id]})
	}
	for _, id := range sortedKeys(db.Comments.Students) {
		out.Comments = append(out.Comments, models.CommentRecord{Kind: string(models.CommentStudent), EntityID: id, Text: db.Comments.Students[id]})
	}
	return out
}

// FromRecords rebuilds a database. Enrollments are applied to both sides,
// ordered by their recorded positions; links to missing rows are dropped.
func FromRecords(rows Records) models.Database {
	db := models.NewDatabase()
	for _, r := range rows.Classes {
		db.Classes[r.ID] = models.Class{
			ID:             r.ID,
			Name:           r.Name,
			Grade:          r.Grade,
			LevelCode:      r.LevelCode,
			Level:          r.Level,
			LevelName:      r.LevelName,
			FullLevelName:  r.FullLevelName,
			AdditionalInfo: r.AdditionalInfo,
			Schedule:       r.Schedule,
			Teachers:       r.Teachers,
			Students:       []string{},
		}
	}
	for _, r := range rows.Students {
		db.Students[r.ID] = models.Student{
			ID:            r.ID,
			EnglishName:   r.EnglishName,
			KoreanName:    r.KoreanName,
			Grade:         r.Grade,
			Classes:       []string{},
			Notes:         r.Notes,
			Consent:       r.Consent,
			Hold:          r.Hold,
			Feedback1:     r.Feedback1,
			Feedback2:     r.Feedback2,
			PhoneNumber:   r.PhoneNumber,
			Email:         r.Email,
			StartDate:     r.StartDate,
			OtherDetails:  r.OtherDetails,
			Consultations: r.Consultations,
		}
	}

	enrollments := make([]models.Enrollment, 0, len(rows.Enrollments))
	for _, e := range rows.Enrollments {
		_, okC := db.Classes[e.ClassID]
		_, okS := db.Students[e.StudentID]
		if okC && okS {
			enrollments = append(enrollments, e)
		}
	}

	sort.SliceStable(enrollments, func(i, j int) bool {
		return position(enrollments[i].StudentPosition) < position(enrollments[j].StudentPosition)
	})
	for _, e := range enrollments {
		s := db.Students[e.StudentID]
		s.Classes = append(s.Classes, e.ClassID)
		db.Students[e.StudentID] = s
	}
	sort.SliceStable(enrollments, func(i, j int) bool {
		return position(enrollments[i].ClassPosition) < position(enrollments[j].ClassPosition)
	})
	for _, e := range enrollments {
		c := db.Classes[e.ClassID]
		c.Students = append(c.Students, e.StudentID)
		db.Classes[e.ClassID] = c
	}

	for _, r := range rows.Comments {
		switch models.CommentKind(r.Kind) {
		case models.CommentClass:
			db.Comments.Classes[r.EntityID] = r.Text
		case models.CommentStudent:
			db.Comments.Students[r.EntityID] = r.Text
		}
	}
	return db
}

// position sorts unknown (-1) positions after recorded ones.
func position(p int) int {
	if p < 0 {
		return int(^uint(0) >> 1)
	}
	return p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
