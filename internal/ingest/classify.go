package ingest

import (
	"regexp"
	"strings"

	"roster-crm/models"
)

// Role is the set of passes a sheet takes part in. The kindergarten sheet is
// both a roster and a day-schedule sheet.
type Role uint8

const (
	RoleGradeRoster Role = 1 << iota
	RoleKindyRoster
	RoleDaySchedule
)

func (r Role) Has(o Role) bool { return r&o != 0 }

func (r Role) String() string {
	var names []string
	if r.Has(RoleGradeRoster) {
		names = append(names, "grade_roster")
	}
	if r.Has(RoleKindyRoster) {
		names = append(names, "kindy_roster")
	}
	if r.Has(RoleDaySchedule) {
		names = append(names, "day_schedule")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "+")
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

type classifierRule struct {
	role  Role
	match func(s *Schema, name string) bool
}

var classifierRules = []classifierRule{
	{RoleGradeRoster, func(s *Schema, name string) bool { return s.gradeSheet.MatchString(name) }},
	{RoleKindyRoster, func(s *Schema, name string) bool { return name == s.Sheets.KindySheet }},
	{RoleDaySchedule, func(s *Schema, name string) bool {
		if name == s.Sheets.KindySheet {
			return true
		}
		for _, marker := range s.Sheets.DaySchedule {
			if strings.Contains(name, marker) {
				return true
			}
		}
		return false
	}},
}

// Classify returns every role the sheet name qualifies for.
func (s *Schema) Classify(name string) Role {
	var r Role
	for _, rule := range classifierRules {
		if rule.match(s, name) {
			r |= rule.role
		}
	}
	return r
}

// Job is one pass over one sheet.
type Job struct {
	Sheet string
	Role  Role
}

// Plan orders the passes: grade rosters, then the kindergarten roster, then
// day schedules. Sheets keep workbook order within each group. Names that
// match no rule are returned as ignored.
func (s *Schema) Plan(names []string) (jobs []Job, ignored []string) {
	var rosters, kindy, schedules []Job
	for _, name := range names {
		role := s.Classify(name)
		if role == 0 {
			ignored = append(ignored, name)
			continue
		}
		if role.Has(RoleGradeRoster) {
			rosters = append(rosters, Job{Sheet: name, Role: RoleGradeRoster})
		}
		if role.Has(RoleKindyRoster) {
			kindy = append(kindy, Job{Sheet: name, Role: RoleKindyRoster})
		}
		if role.Has(RoleDaySchedule) {
			schedules = append(schedules, Job{Sheet: name, Role: RoleDaySchedule})
		}
	}
	jobs = append(jobs, rosters...)
	jobs = append(jobs, kindy...)
	jobs = append(jobs, schedules...)
	return jobs, ignored
}

var gradeDigits = regexp.MustCompile(`G(\d+)`)

// RosterGrade derives the grade assigned to students first seen on a roster
// sheet: the digits after "G", or K for the kindergarten sheet.
func (s *Schema) RosterGrade(sheet string) string {
	if m := gradeDigits.FindStringSubmatch(sheet); m != nil {
		return m[1]
	}
	if sheet == s.Sheets.KindySheet || strings.Contains(sheet, "Kindy") {
		return models.GradeKindy
	}
	return ""
}

// FindHeaderRow returns the index of the first row whose first two cells
// equal pair, or -1.
func FindHeaderRow(grid [][]string, pair []string) int {
	if len(pair) != 2 {
		return -1
	}
	for i, row := range grid {
		if len(row) > 1 && row[0] == pair[0] && row[1] == pair[1] {
			return i
		}
	}
	return -1
}

// FindLabelRow returns the index of the first row with at least two cells
// whose first cell is label, or -1.
func FindLabelRow(grid [][]string, label string) int {
	for i, row := range grid {
		if len(row) > 1 && row[0] == label {
			return i
		}
	}
	return -1
}
