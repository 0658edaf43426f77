package ingest

import (
	"regexp"
	"strings"

	"roster-crm/models"
)

// nameMarker is the standalone token that flags a student in a name cell.
const nameMarker = "F"

var classTokenPattern = regexp.MustCompile(`(\d+)([AEHRTP])`)

var levelNames = map[string]string{
	"R": "Rocket",
	"T": "Top",
	"H": "High",
	"A": "Ace",
	"E": "Elite",
}

// LevelName maps a level code to its display name. Unknown codes are
// returned as-is.
func LevelName(code string) string {
	if name, ok := levelNames[code]; ok {
		return name
	}
	return code
}

// NameToken is a parsed student name cell, e.g. "John 김민수 F".
type NameToken struct {
	English   string
	Korean    string
	HasMarker bool
}

// StudentID is the content-derived student identity.
func (n NameToken) StudentID() string {
	return n.English + "-" + n.Korean
}

// Notes is the note recorded when the student is first created.
func (n NameToken) Notes() string {
	if n.HasMarker {
		return nameMarker
	}
	return ""
}

// ParseName splits a name cell into English and Korean parts. It returns
// false for a blank cell.
func ParseName(raw string) (NameToken, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return NameToken{}, false
	}
	tok := NameToken{English: fields[0]}
	korean := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		if f == nameMarker {
			tok.HasMarker = true
			continue
		}
		korean = append(korean, f)
	}
	tok.Korean = strings.Join(korean, " ")
	return tok, true
}

// ClassToken is the class metadata packed into one newline-delimited cell:
//
//	3A            <- grade + level code
//	Stars         <- class name
//	(info)        <- additional info
//	M-F 9-10      <- schedule
//	Kim, Lee      <- teachers
type ClassToken struct {
	Grade          string
	LevelCode      string
	ClassName      string
	AdditionalInfo string
	Schedule       string
	Teachers       string
}

// ParseClassToken decodes a class cell. It returns false when the first line
// carries no grade/level code.
func ParseClassToken(raw string) (ClassToken, bool) {
	parts := splitLines(raw)
	m := classTokenPattern.FindStringSubmatch(parts[0])
	if m == nil {
		return ClassToken{}, false
	}
	return ClassToken{
		Grade:          m[1],
		LevelCode:      m[2],
		ClassName:      partAt(parts, 1),
		AdditionalInfo: partAt(parts, 2),
		Schedule:       partAt(parts, 3),
		Teachers:       partAt(parts, 4),
	}, true
}

// ClassID is "<grade><code> <name>", e.g. "3A Stars".
func (t ClassToken) ClassID() string {
	return t.Grade + t.LevelCode + " " + t.ClassName
}

// Class builds the record created at first sighting of the token.
func (t ClassToken) Class() models.Class {
	levelName := LevelName(t.LevelCode)
	return models.Class{
		ID:             t.ClassID(),
		Name:           t.ClassName,
		Grade:          t.Grade,
		LevelCode:      t.LevelCode,
		Level:          t.Grade + t.LevelCode,
		LevelName:      levelName,
		FullLevelName:  "Grade " + t.Grade + " " + levelName,
		AdditionalInfo: t.AdditionalInfo,
		Schedule:       t.Schedule,
		Teachers:       t.Teachers,
	}
}

// KindyClassID is the id of a kindergarten class.
func KindyClassID(name string) string {
	return models.LevelKindy + " " + name
}

// KindyClass builds a kindergarten class record.
func KindyClass(name string) models.Class {
	return models.Class{
		ID:            KindyClassID(name),
		Name:          name,
		Grade:         models.GradeKindy,
		LevelCode:     models.GradeKindy,
		Level:         models.LevelKindy,
		LevelName:     models.LevelNameKindy,
		FullLevelName: models.LevelNameKindy,
	}
}

func splitLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func partAt(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
