package demo

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"roster-crm/internal/aggregate"
)

var fixedNow = time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)

func TestGenerate(t *testing.T) {
	db := Generate(fixedNow)

	assert.Len(t, db.Classes, 34)
	assert.Len(t, db.Students, 220)
	assert.Empty(t, db.CheckLinks())

	v := aggregate.Compute(db)
	assert.Equal(t, []string{"K", "1", "2", "3", "4", "5", "6"}, v.Grades)
	assert.Len(t, v.StudentsByGrade["K"], 40)
	assert.Len(t, v.ClassesByGrade["3"], 5)
	assert.Equal(t, "3R Stars", v.ClassesByGrade["3"][0].ID)

	assert.Len(t, db.Comments.Classes, 10)
	assert.Len(t, db.Comments.Students, 10)
	for _, text := range db.Comments.Classes {
		assert.True(t, strings.HasPrefix(text, "2025-03-04 10:30:00: "), text)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	if diff := cmp.Diff(Generate(fixedNow), Generate(fixedNow)); diff != "" {
		t.Fatalf("demo data differs between calls:\n%s", diff)
	}
}

func TestGenerateMarksEveryTenthStudent(t *testing.T) {
	db := Generate(fixedNow)
	marked := 0
	for _, s := range db.Students {
		if s.Notes == "F" {
			marked++
		}
	}
	assert.Equal(t, 4+6*3, marked)
}
