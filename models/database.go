package models

import (
	"fmt"
	"sort"
)

// CommentKind selects which comment map an annotation lives in.
type CommentKind string

const (
	CommentClass   CommentKind = "class"
	CommentStudent CommentKind = "student"
)

// Comments are free-text annotations keyed by entity id. Ingestion never
// touches them.
type Comments struct {
	Classes  map[string]string `json:"classes"`
	Students map[string]string `json:"students"`
}

// NewComments returns an empty, non-nil comment overlay.
func NewComments() Comments {
	return Comments{Classes: map[string]string{}, Students: map[string]string{}}
}

// Get returns the comment stored for id, or "".
func (c Comments) Get(kind CommentKind, id string) string {
	switch kind {
	case CommentClass:
		return c.Classes[id]
	case CommentStudent:
		return c.Students[id]
	}
	return ""
}

// Clone deep-copies both maps.
func (c Comments) Clone() Comments {
	out := NewComments()
	for k, v := range c.Classes {
		out.Classes[k] = v
	}
	for k, v := range c.Students {
		out.Students[k] = v
	}
	return out
}

// Database is the aggregate root: classes, students and the comment overlay.
type Database struct {
	Classes  map[string]Class   `json:"classes"`
	Students map[string]Student `json:"students"`
	Comments Comments           `json:"comments"`
}

// NewDatabase returns an empty database with all maps allocated.
func NewDatabase() Database {
	return Database{
		Classes:  map[string]Class{},
		Students: map[string]Student{},
		Comments: NewComments(),
	}
}

// Clone deep-copies the database, including id slices.
func (d Database) Clone() Database {
	out := NewDatabase()
	for id, c := range d.Classes {
		c.Students = append([]string(nil), c.Students...)
		out.Classes[id] = c
	}
	for id, s := range d.Students {
		s.Classes = append([]string(nil), s.Classes...)
		out.Students[id] = s
	}
	out.Comments = d.Comments.Clone()
	return out
}

// WithComments returns a copy of d whose overlay is comments.
func (d Database) WithComments(comments Comments) Database {
	out := d.Clone()
	out.Comments = comments.Clone()
	return out
}

// Normalize allocates any nil map so a decoded snapshot is safe to use.
func (d *Database) Normalize() {
	if d.Classes == nil {
		d.Classes = map[string]Class{}
	}
	if d.Students == nil {
		d.Students = map[string]Student{}
	}
	if d.Comments.Classes == nil {
		d.Comments.Classes = map[string]string{}
	}
	if d.Comments.Students == nil {
		d.Comments.Students = map[string]string{}
	}
}

// CheckLinks returns one message per broken class/student link. An empty
// result means every link is present on both sides.
func (d Database) CheckLinks() []string {
	var problems []string
	for sid, s := range d.Students {
		for _, cid := range s.Classes {
			c, ok := d.Classes[cid]
			if !ok {
				problems = append(problems, fmt.Sprintf("student %q references missing class %q", sid, cid))
				continue
			}
			if !c.HasStudent(sid) {
				problems = append(problems, fmt.Sprintf("class %q does not list student %q", cid, sid))
			}
		}
	}
	for cid, c := range d.Classes {
		for _, sid := range c.Students {
			s, ok := d.Students[sid]
			if !ok {
				problems = append(problems, fmt.Sprintf("class %q references missing student %q", cid, sid))
				continue
			}
			if !s.InClass(cid) {
				problems = append(problems, fmt.Sprintf("student %q does not list class %q", sid, cid))
			}
		}
	}
	sort.Strings(problems)
	return problems
}
