package service

import (
	"strings"

	"roster-crm/internal/aggregate"
	"roster-crm/models"
)

// AllClasses is the class filter value that disables class filtering.
const AllClasses = "all"

// Search returns students whose English or Korean name contains term
// (case-insensitive), optionally restricted to one class, sorted by name.
func (r *Registry) Search(term, classFilter string) []models.Student {
	db := r.Current().Database
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]models.Student, 0)
	for _, s := range db.Students {
		if needle != "" &&
			!strings.Contains(strings.ToLower(s.EnglishName), needle) &&
			!strings.Contains(strings.ToLower(s.KoreanName), needle) {
			continue
		}
		if classFilter != "" && classFilter != AllClasses && !s.InClass(classFilter) {
			continue
		}
		out = append(out, s)
	}
	aggregate.SortStudents(aggregate.NewCollator(), out)
	return out
}

// Classes returns every class ordered by grade, then level and name.
func (r *Registry) Classes() []models.Class {
	v := r.Current().View
	out := make([]models.Class, 0)
	for _, g := range v.Grades {
		out = append(out, v.ClassesByGrade[g]...)
	}
	return out
}

// Class looks up one class with its enrolled students and comment.
func (r *Registry) Class(id string) (ClassDetail, bool) {
	db := r.Current().Database
	c, ok := db.Classes[id]
	if !ok {
		return ClassDetail{}, false
	}
	d := ClassDetail{Class: c, Comment: db.Comments.Classes[id], Roster: make([]models.Student, 0, len(c.Students))}
	for _, sid := range c.Students {
		if s, ok := db.Students[sid]; ok {
			d.Roster = append(d.Roster, s)
		}
	}
	aggregate.SortStudents(aggregate.NewCollator(), d.Roster)
	return d, true
}

// Student looks up one student with their classes and comment.
func (r *Registry) Student(id string) (StudentDetail, bool) {
	db := r.Current().Database
	s, ok := db.Students[id]
	if !ok {
		return StudentDetail{}, false
	}
	d := StudentDetail{Student: s, Comment: db.Comments.Students[id], Enrolled: make([]models.Class, 0, len(s.Classes))}
	for _, cid := range s.Classes {
		if c, ok := db.Classes[cid]; ok {
			d.Enrolled = append(d.Enrolled, c)
		}
	}
	aggregate.SortClasses(aggregate.NewCollator(), d.Enrolled)
	return d, true
}

type ClassDetail struct {
	models.Class
	Comment string           `json:"comment"`
	Roster  []models.Student `json:"roster"`
}

type StudentDetail struct {
	models.Student
	Comment  string         `json:"comment"`
	Enrolled []models.Class `json:"enrolled"`
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
