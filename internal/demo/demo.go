// Package demo generates the sample roster shown when a workbook cannot be
// ingested, so the rest of the system always has a valid database to show.
package demo

import (
	"fmt"
	"time"

	"roster-crm/internal/ingest"
	"roster-crm/models"
)

// CommentTimeLayout is the timestamp layout used for comment lines.
const CommentTimeLayout = "2006-01-02 15:04:05"

var (
	grades      = []string{models.GradeKindy, "1", "2", "3", "4", "5", "6"}
	levels      = []string{"R", "T", "H", "A", "E"}
	classNames  = []string{"Stars", "Galaxy", "Moon", "Planets", "Rainbow"}
	kindyNames  = []string{"Yellow", "Blue", "Red", "Green"}
	firstNames  = []string{"Emma", "Noah", "Olivia", "Liam", "Sophia", "Jackson", "Ava", "Aiden", "Isabella", "Lucas"}
	familyNames = []string{"김", "이", "박", "최", "정", "강", "조", "윤", "장", "임"}
)

const (
	kindyStudents = 40
	gradeStudents = 30
	sampleNotes   = 10
)

// Generate builds the demonstration database. It is deterministic for a
// given now, which only feeds the comment timestamps.
func Generate(now time.Time) models.Database {
	db := models.NewDatabase()
	byGrade := map[string][]string{}

	for _, g := range grades {
		if g == models.GradeKindy {
			for i, name := range kindyNames {
				c := ingest.KindyClass(name)
				c.Teachers = fmt.Sprintf("Teacher %d", i+1)
				c.Schedule = fmt.Sprintf("M-F %d:00-%d:00", 9+i, 10+i)
				c.Students = []string{}
				db.Classes[c.ID] = c
				byGrade[g] = append(byGrade[g], c.ID)
			}
			continue
		}
		for i, code := range levels {
			tok := ingest.ClassToken{Grade: g, LevelCode: code, ClassName: classNames[i%len(classNames)]}
			c := tok.Class()
			c.Teachers = fmt.Sprintf("Teacher %d", i+1)
			c.Schedule = fmt.Sprintf("M-F %d:00-%d:00", 9+i, 10+i)
			c.Students = []string{}
			db.Classes[c.ID] = c
			byGrade[g] = append(byGrade[g], c.ID)
		}
	}

	counter := 0
	for _, g := range grades {
		n := gradeStudents
		if g == models.GradeKindy {
			n = kindyStudents
		}
		for i := 0; i < n; i++ {
			first := firstNames[counter%len(firstNames)]
			korean := fmt.Sprintf("%s%d", familyNames[counter%len(familyNames)], counter)
			classID := byGrade[g][i%len(byGrade[g])]
			s := models.Student{
				ID:          first + "-" + korean,
				EnglishName: first,
				KoreanName:  korean,
				Grade:       g,
				Classes:     []string{classID},
			}
			if i%10 == 0 {
				s.Notes = "F"
			}
			db.Students[s.ID] = s

			c := db.Classes[classID]
			c.Students = append(c.Students, s.ID)
			db.Classes[classID] = c
			counter++
		}
	}

	addSampleComments(&db, now)
	return db
}

func addSampleComments(db *models.Database, now time.Time) {
	classIDs := sortedKeys(db.Classes)
	studentIDs := sortedKeys(db.Students)
	stamp := now.Format(CommentTimeLayout)
	for i := 0; i < sampleNotes; i++ {
		cid := classIDs[(i*7)%len(classIDs)]
		db.Comments.Classes[cid] = fmt.Sprintf("%s: Sample class comment %d", stamp, i+1)
		sid := studentIDs[(i*37)%len(studentIDs)]
		db.Comments.Students[sid] = fmt.Sprintf("%s: Sample student comment %d", stamp, i+1)
	}
}
