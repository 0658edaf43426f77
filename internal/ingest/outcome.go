package ingest

// Status is the result of processing one row, column or sheet.
type Status int

const (
	Accepted Status = iota
	Skipped
	Fatal
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Skipped:
		return "skipped"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Reason explains a skip.
type Reason string

const (
	ReasonEmptySheet          Reason = "empty_sheet"
	ReasonNoHeader            Reason = "no_header"
	ReasonMissingScheduleRow  Reason = "missing_schedule_row"
	ReasonShortRow            Reason = "short_row"
	ReasonMissingName         Reason = "missing_name"
	ReasonMalformedClassToken Reason = "malformed_class_token"
	ReasonEmptyColumn         Reason = "empty_column"
)

// Outcome is Accepted, Skipped(Reason) or Fatal(Err).
type Outcome struct {
	Status Status `json:"status"`
	Reason Reason `json:"reason,omitempty"`
	Err    error  `json:"-"`
}

func accepted() Outcome        { return Outcome{Status: Accepted} }
func skipped(r Reason) Outcome { return Outcome{Status: Skipped, Reason: r} }
func fatal(err error) Outcome  { return Outcome{Status: Fatal, Err: err} }

func (o Outcome) Accepted() bool { return o.Status == Accepted }

// CellOutcome is the outcome for one data row (roster) or one class column
// (day schedule). Row and Column are zero-based grid indexes; Column is -1
// for whole-row outcomes.
type CellOutcome struct {
	Row    int `json:"row"`
	Column int `json:"column"`
	Outcome
}

// SheetReport collects what one pass did with one sheet.
type SheetReport struct {
	Sheet    string        `json:"sheet"`
	Pass     Role          `json:"pass"`
	Outcome  Outcome       `json:"outcome"`
	Cells    []CellOutcome `json:"cells,omitempty"`
	Accepted int           `json:"accepted"`
	Issues   []SchemaIssue `json:"issues,omitempty"`
}

func (r *SheetReport) record(row, col int, o Outcome) {
	if o.Accepted() {
		r.Accepted++
	}
	r.Cells = append(r.Cells, CellOutcome{Row: row, Column: col, Outcome: o})
}

// Skips returns the skipped cells of the sheet.
func (r SheetReport) Skips() []CellOutcome {
	var out []CellOutcome
	for _, c := range r.Cells {
		if c.Status == Skipped {
			out = append(out, c)
		}
	}
	return out
}

// Report is the full trace of one ingestion run.
type Report struct {
	RunID   string        `json:"runId"`
	Sheets  []SheetReport `json:"sheets"`
	Ignored []string      `json:"ignored,omitempty"`
}

// Sheet returns the report of the given pass over a sheet.
func (r Report) Sheet(name string, pass Role) (SheetReport, bool) {
	for _, s := range r.Sheets {
		if s.Sheet == name && s.Pass == pass {
			return s, true
		}
	}
	return SheetReport{}, false
}

// SchemaIssues flattens every sheet's header issues.
func (r Report) SchemaIssues() []SchemaIssue {
	var out []SchemaIssue
	for _, s := range r.Sheets {
		out = append(out, s.Issues...)
	}
	return out
}

// Counts returns how many rows/columns were accepted and skipped.
func (r Report) Counts() (accepted, skippedCells, skippedSheets int) {
	for _, s := range r.Sheets {
		accepted += s.Accepted
		skippedCells += len(s.Skips())
		if s.Outcome.Status == Skipped {
			skippedSheets++
		}
	}
	return accepted, skippedCells, skippedSheets
}
