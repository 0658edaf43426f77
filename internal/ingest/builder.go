package ingest

import "roster-crm/models"

// coalesce keeps an existing non-empty value and otherwise adopts incoming.
func coalesce(existing, incoming string) string {
	if existing != "" {
		return existing
	}
	return incoming
}

// builder is the in-progress model of one ingestion run. It is owned by the
// run and never handed out; build copies it into an immutable Database.
type builder struct {
	classes  map[string]*models.Class
	students map[string]*models.Student
}

func newBuilder() *builder {
	return &builder{
		classes:  map[string]*models.Class{},
		students: map[string]*models.Student{},
	}
}

// upsertClass creates c on first sighting. Later sightings only fill the
// mutable metadata fields that are still empty.
func (b *builder) upsertClass(c models.Class) *models.Class {
	if cur, ok := b.classes[c.ID]; ok {
		cur.AdditionalInfo = coalesce(cur.AdditionalInfo, c.AdditionalInfo)
		cur.Schedule = coalesce(cur.Schedule, c.Schedule)
		cur.Teachers = coalesce(cur.Teachers, c.Teachers)
		return cur
	}
	c.Students = []string{}
	b.classes[c.ID] = &c
	return &c
}

// upsertStudent creates the student on first sighting. An existing student
// only gains a grade when it has none.
func (b *builder) upsertStudent(name NameToken, grade string) *models.Student {
	id := name.StudentID()
	if cur, ok := b.students[id]; ok {
		cur.Grade = coalesce(cur.Grade, grade)
		return cur
	}
	s := &models.Student{
		ID:          id,
		EnglishName: name.English,
		KoreanName:  name.Korean,
		Grade:       grade,
		Classes:     []string{},
		Notes:       name.Notes(),
	}
	b.students[id] = s
	return s
}

// link records the enrollment on both sides. Nothing is written unless both
// entities exist.
func (b *builder) link(studentID, classID string) bool {
	s, okS := b.students[studentID]
	c, okC := b.classes[classID]
	if !okS || !okC {
		return false
	}
	if !s.InClass(classID) {
		s.Classes = append(s.Classes, classID)
	}
	if !c.HasStudent(studentID) {
		c.Students = append(c.Students, studentID)
	}
	return true
}

func (b *builder) build() models.Database {
	db := models.NewDatabase()
	for id, c := range b.classes {
		cc := *c
		cc.Students = append([]string{}, c.Students...)
		db.Classes[id] = cc
	}
	for id, s := range b.students {
		sc := *s
		sc.Classes = append([]string{}, s.Classes...)
		db.Students[id] = sc
	}
	return db
}
