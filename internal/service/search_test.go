package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster-crm/models"
)

func seededRegistry(t *testing.T) *Registry {
	t.Helper()
	db := models.NewDatabase()
	db.Classes["3A Stars"] = models.Class{ID: "3A Stars", Name: "Stars", Grade: "3", LevelCode: "A", Students: []string{"anna-이영희", "Bo-박지민"}}
	db.Classes["3R Moon"] = models.Class{ID: "3R Moon", Name: "Moon", Grade: "3", LevelCode: "R", Students: []string{"Bo-박지민"}}
	db.Classes["Kindy Red"] = models.Class{ID: "Kindy Red", Name: "Red", Grade: "K", LevelCode: "K", Students: []string{}}
	db.Students["anna-이영희"] = models.Student{ID: "anna-이영희", EnglishName: "anna", KoreanName: "이영희", Grade: "3", Classes: []string{"3A Stars"}}
	db.Students["Bo-박지민"] = models.Student{ID: "Bo-박지민", EnglishName: "Bo", KoreanName: "박지민", Grade: "3", Classes: []string{"3A Stars", "3R Moon"}}
	db.Students["Cy-최"] = models.Student{ID: "Cy-최", EnglishName: "Cy", KoreanName: "최", Classes: []string{}}
	db.Comments.Students["Bo-박지민"] = "hello"

	r := newTestRegistry()
	_, err := r.Replace(context.Background(), db)
	require.NoError(t, err)
	return r
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func studentID(s models.Student) string { return s.ID }
func classID(c models.Class) string     { return c.ID }

func TestSearch(t *testing.T) {
	r := seededRegistry(t)

	assert.Equal(t, []string{"anna-이영희", "Bo-박지민", "Cy-최"}, ids(r.Search("", AllClasses), studentID))
	assert.Equal(t, []string{"anna-이영희"}, ids(r.Search("ANN", ""), studentID))
	assert.Equal(t, []string{"Bo-박지민"}, ids(r.Search("지민", AllClasses), studentID))
	assert.Equal(t, []string{"Bo-박지민"}, ids(r.Search("", "3R Moon"), studentID))
	assert.Empty(t, r.Search("anna", "3R Moon"))
	assert.NotNil(t, r.Search("zzz", ""))
}

func TestClasses(t *testing.T) {
	r := seededRegistry(t)
	assert.Equal(t, []string{"Kindy Red", "3R Moon", "3A Stars"}, ids(r.Classes(), classID))
}

func TestClassDetail(t *testing.T) {
	r := seededRegistry(t)

	d, ok := r.Class("3A Stars")
	require.True(t, ok)
	assert.Equal(t, []string{"anna-이영희", "Bo-박지민"}, ids(d.Roster, studentID))

	_, ok = r.Class("9E Nope")
	assert.False(t, ok)
}

func TestStudentDetail(t *testing.T) {
	r := seededRegistry(t)

	d, ok := r.Student("Bo-박지민")
	require.True(t, ok)
	assert.Equal(t, "hello", d.Comment)
	assert.Equal(t, []string{"3R Moon", "3A Stars"}, ids(d.Enrolled, classID))

	_, ok = r.Student("Nobody-")
	assert.False(t, ok)
}
