// Package aggregate derives the browsing views of a roster database: classes
// and students grouped by grade, their sort orders and summary statistics.
// Views are always recomputed from the database, never patched.
package aggregate

import (
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"roster-crm/models"
)

// levelPriority orders classes within a grade; unknown codes sort last.
var levelPriority = map[string]int{"R": 1, "T": 2, "H": 3, "A": 4, "E": 5}

const otherLevelPriority = 99

// LevelPriority returns the sort rank of a level code.
func LevelPriority(code string) int {
	if p, ok := levelPriority[code]; ok {
		return p
	}
	return otherLevelPriority
}

// Stats are the dashboard counters. StudentsPerGrade counts each student's
// own grade only, so it can differ from the bucket sizes in View.
type Stats struct {
	TotalStudents    int            `json:"totalStudents"`
	TotalClasses     int            `json:"totalClasses"`
	StudentsPerGrade map[string]int `json:"studentsPerGrade"`
}

// View is the grade-grouped projection of a database.
type View struct {
	ClassesByGrade  map[string][]models.Class   `json:"classesByGrade"`
	StudentsByGrade map[string][]models.Student `json:"studentsByGrade"`
	Grades          []string                    `json:"gradesList"`
	Stats           Stats                       `json:"stats"`
}

// Compute builds the view for db.
func Compute(db models.Database) View {
	v := View{
		ClassesByGrade:  map[string][]models.Class{},
		StudentsByGrade: map[string][]models.Student{},
		Stats: Stats{
			TotalStudents:    len(db.Students),
			TotalClasses:     len(db.Classes),
			StudentsPerGrade: map[string]int{},
		},
	}
	grades := map[string]bool{}

	for _, c := range db.Classes {
		if c.Grade == "" {
			continue
		}
		grades[c.Grade] = true
		v.ClassesByGrade[c.Grade] = append(v.ClassesByGrade[c.Grade], c)
	}

	for _, s := range db.Students {
		if s.Grade != "" {
			v.Stats.StudentsPerGrade[s.Grade]++
		}
		buckets := StudentGrades(db, s)
		if len(buckets) == 0 {
			buckets = []string{models.GradeUnassigned}
		}
		for _, g := range buckets {
			grades[g] = true
			v.StudentsByGrade[g] = append(v.StudentsByGrade[g], s)
		}
	}

	col := newCollator()
	for g := range v.ClassesByGrade {
		SortClasses(col, v.ClassesByGrade[g])
	}
	for g := range v.StudentsByGrade {
		SortStudents(col, v.StudentsByGrade[g])
	}

	v.Grades = make([]string, 0, len(grades))
	for g := range grades {
		v.Grades = append(v.Grades, g)
	}
	SortGrades(v.Grades)
	return v
}

// StudentGrades is the union of the student's own grade and the grades of
// every class they belong to, in first-seen order.
func StudentGrades(db models.Database, s models.Student) []string {
	var out []string
	seen := map[string]bool{}
	add := func(g string) {
		if g != "" && !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	add(s.Grade)
	for _, id := range s.Classes {
		if c, ok := db.Classes[id]; ok {
			add(c.Grade)
		}
	}
	return out
}

// Collator compares display names case-insensitively. It is not safe for
// concurrent use.
type Collator struct{ c *collate.Collator }

func newCollator() *Collator {
	return &Collator{c: collate.New(language.Und, collate.IgnoreCase)}
}

// NewCollator returns a fresh name collator.
func NewCollator() *Collator { return newCollator() }

// Compare returns -1, 0 or 1.
func (c *Collator) Compare(a, b string) int { return c.c.CompareString(a, b) }

// SortClasses orders classes by level priority, then class name, then id.
func SortClasses(col *Collator, classes []models.Class) {
	sort.SliceStable(classes, func(i, j int) bool {
		a, b := classes[i], classes[j]
		if pa, pb := LevelPriority(a.LevelCode), LevelPriority(b.LevelCode); pa != pb {
			return pa < pb
		}
		if n := col.Compare(a.Name, b.Name); n != 0 {
			return n < 0
		}
		return a.ID < b.ID
	})
}

// SortStudents orders students by English name, then id.
func SortStudents(col *Collator, students []models.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		if n := col.Compare(a.EnglishName, b.EnglishName); n != 0 {
			return n < 0
		}
		return a.ID < b.ID
	})
}

// SortGrades puts K first, numeric grades ascending, any other label
// lexically, and Unassigned last.
func SortGrades(grades []string) {
	sort.SliceStable(grades, func(i, j int) bool {
		return gradeRank(grades[i]).less(gradeRank(grades[j]))
	})
}

type rank struct {
	group int
	num   int
	label string
}

func (a rank) less(b rank) bool {
	if a.group != b.group {
		return a.group < b.group
	}
	if a.num != b.num {
		return a.num < b.num
	}
	return a.label < b.label
}

func gradeRank(g string) rank {
	switch g {
	case models.GradeKindy:
		return rank{group: 0}
	case models.GradeUnassigned:
		return rank{group: 3}
	}
	if n, err := strconv.Atoi(g); err == nil {
		return rank{group: 1, num: n, label: g}
	}
	return rank{group: 2, label: g}
}
