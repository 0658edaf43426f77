// roster-crm/models/records.go

package models

import (
	"time"

	"gorm.io/datatypes"
)

// ClassRecord is the 'roster_classes' table.
type ClassRecord struct {
	ID             string `gorm:"primaryKey;size:255"`
	Name           string `gorm:"size:255"`
	Grade          string `gorm:"size:20;index"`
	LevelCode      string `gorm:"size:5"`
	Level          string `gorm:"size:20"`
	LevelName      string `gorm:"size:50"`
	FullLevelName  string `gorm:"size:100"`
	AdditionalInfo string
	Schedule       string
	Teachers       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (ClassRecord) TableName() string { return "roster_classes" }

// StudentRecord is the 'roster_students' table.
type StudentRecord struct {
	ID            string `gorm:"primaryKey;size:255"`
	EnglishName   string `gorm:"size:255;index"`
	KoreanName    string `gorm:"size:255"`
	Grade         string `gorm:"size:20;index"`
	Notes         string `gorm:"size:20"`
	Consent       string
	Hold          string
	Feedback1     string
	Feedback2     string
	PhoneNumber   string `gorm:"size:100"`
	Email         string `gorm:"size:255"`
	StartDate     string `gorm:"size:100"`
	OtherDetails  string
	Consultations string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (StudentRecord) TableName() string { return "roster_students" }

// Enrollment links a student to a class. Position keeps the order in which
// the link was observed on each side.
type Enrollment struct {
	ClassID         string `gorm:"primaryKey;size:255"`
	StudentID       string `gorm:"primaryKey;size:255"`
	ClassPosition   int
	StudentPosition int
}

func (Enrollment) TableName() string { return "roster_enrollments" }

// CommentRecord stores one comment overlay entry.
type CommentRecord struct {
	Kind      string `gorm:"primaryKey;size:20"`
	EntityID  string `gorm:"primaryKey;size:255"`
	Text      string
	UpdatedAt time.Time
}

func (CommentRecord) TableName() string { return "roster_comments" }

// IngestionRunRecord keeps the trace of one workbook upload.
type IngestionRunRecord struct {
	RunID         string         `gorm:"primaryKey;size:36" json:"runId"`
	Sheets        int            `json:"sheets"`
	Accepted      int            `json:"accepted"`
	SkippedRows   int            `json:"skippedRows"`
	SkippedSheets int            `json:"skippedSheets"`
	SchemaIssues  int            `json:"schemaIssues"`
	Report        datatypes.JSON `json:"report"`
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
}

func (IngestionRunRecord) TableName() string { return "roster_ingestion_runs" }
