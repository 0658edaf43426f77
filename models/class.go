package models

// Kindergarten labels shared by every kindy class.
const (
	GradeKindy      = "K"
	LevelKindy      = "Kindy"
	LevelNameKindy  = "Kindergarten"
	GradeUnassigned = "Unassigned"
)

// Class is one teaching group, e.g. "3A Stars" or "Kindy Yellow".
// ID and the level fields are fixed at first sighting; AdditionalInfo,
// Schedule and Teachers only ever go from empty to non-empty.
type Class struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Grade          string   `json:"grade"`
	LevelCode      string   `json:"levelCode"`
	Level          string   `json:"level"`
	LevelName      string   `json:"levelName"`
	FullLevelName  string   `json:"fullLevelName"`
	AdditionalInfo string   `json:"additionalInfo"`
	Schedule       string   `json:"schedule"`
	Teachers       string   `json:"teachers"`
	Students       []string `json:"students"`
}

// HasStudent reports whether studentID is enrolled.
func (c Class) HasStudent(studentID string) bool {
	return containsID(c.Students, studentID)
}
