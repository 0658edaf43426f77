// roster-crm/models/student.go

package models

// Student is a learner resolved from roster and day-schedule sheets.
// ID is "<EnglishName>-<KoreanName>" so two students printed with the same
// name collapse onto one record.
type Student struct {
	ID          string   `json:"id"`
	EnglishName string   `json:"englishName"`
	KoreanName  string   `json:"koreanName"`
	Grade       string   `json:"grade"`
	Classes     []string `json:"classes"`
	Notes       string   `json:"notes"`

	// --- ENRICHMENT (roster sheet columns) ---
	Consent       string `json:"consent,omitempty"`
	Hold          string `json:"hold,omitempty"`
	Feedback1     string `json:"feedback1,omitempty"`
	Feedback2     string `json:"feedback2,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	Email         string `json:"email,omitempty"`
	StartDate     string `json:"startDate,omitempty"`
	OtherDetails  string `json:"otherDetails,omitempty"`
	Consultations string `json:"consultations,omitempty"`
}

// InClass reports whether the student is linked to classID.
func (s Student) InClass(classID string) bool {
	return containsID(s.Classes, classID)
}

// Student enrichment field names, as used by the workbook schema.
const (
	FieldConsent       = "consent"
	FieldHold          = "hold"
	FieldFeedback1     = "feedback1"
	FieldFeedback2     = "feedback2"
	FieldPhoneNumber   = "phoneNumber"
	FieldEmail         = "email"
	FieldStartDate     = "startDate"
	FieldOtherDetails  = "otherDetails"
	FieldConsultations = "consultations"
)

// StudentFields lists every enrichment field a schema may map a column onto.
var StudentFields = []string{
	FieldConsent, FieldHold, FieldFeedback1, FieldFeedback2, FieldPhoneNumber,
	FieldEmail, FieldStartDate, FieldOtherDetails, FieldConsultations,
}

// SetField writes an enrichment field by name. Unknown names return false.
func (s *Student) SetField(name, value string) bool {
	switch name {
	case FieldConsent:
		s.Consent = value
	case FieldHold:
		s.Hold = value
	case FieldFeedback1:
		s.Feedback1 = value
	case FieldFeedback2:
		s.Feedback2 = value
	case FieldPhoneNumber:
		s.PhoneNumber = value
	case FieldEmail:
		s.Email = value
	case FieldStartDate:
		s.StartDate = value
	case FieldOtherDetails:
		s.OtherDetails = value
	case FieldConsultations:
		s.Consultations = value
	default:
		return false
	}
	return true
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
