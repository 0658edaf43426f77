package workbook

import (
	"bytes"
	"strconv"
	"strings"

	"roster-crm/internal/aggregate"
	"roster-crm/models"
)

// Export sheet names.
const (
	ExportSummarySheet  = "Summary"
	ExportClassesSheet  = "Classes"
	ExportStudentsSheet = "Students"
)

// ExportSheets lays the roster out as Summary, Classes and Students sheets.
func ExportSheets(db models.Database, view aggregate.View) []Sheet {
	summary := Grid{
		{"Total students", strconv.Itoa(view.Stats.TotalStudents)},
		{"Total classes", strconv.Itoa(view.Stats.TotalClasses)},
		{},
		{"Grade", "Students (by grade)", "Students (incl. class grades)", "Classes"},
	}
	for _, g := range view.Grades {
		summary = append(summary, []string{
			g,
			strconv.Itoa(view.Stats.StudentsPerGrade[g]),
			strconv.Itoa(len(view.StudentsByGrade[g])),
			strconv.Itoa(len(view.ClassesByGrade[g])),
		})
	}

	classes := Grid{{"Grade", "Class", "Level", "Level Name", "Schedule", "Teachers", "Additional Info", "Students", "Comment"}}
	for _, g := range view.Grades {
		for _, c := range view.ClassesByGrade[g] {
			classes = append(classes, []string{
				c.Grade, c.ID, c.Level, c.FullLevelName, c.Schedule, c.Teachers,
				c.AdditionalInfo, strconv.Itoa(len(c.Students)), db.Comments.Classes[c.ID],
			})
		}
	}

	all := make([]models.Student, 0, len(db.Students))
	for _, s := range db.Students {
		all = append(all, s)
	}
	aggregate.SortStudents(aggregate.NewCollator(), all)
	students := Grid{{"Student", "English Name", "Korean Name", "Grade", "Classes", "Notes",
		"Phone number", "Email", "Start Date", "Other Details", "Comment"}}
	for _, s := range all {
		students = append(students, []string{
			s.ID, s.EnglishName, s.KoreanName, s.Grade, strings.Join(s.Classes, ", "), s.Notes,
			s.PhoneNumber, s.Email, s.StartDate, s.OtherDetails, db.Comments.Students[s.ID],
		})
	}

	return []Sheet{
		{Name: ExportSummarySheet, Rows: summary},
		{Name: ExportClassesSheet, Rows: classes},
		{Name: ExportStudentsSheet, Rows: students},
	}
}

// Export encodes the roster as an xlsx file.
func Export(db models.Database, view aggregate.View) (*bytes.Buffer, error) {
	return Encode(ExportSheets(db, view)...)
}
