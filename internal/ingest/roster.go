package ingest

import (
	"strings"

	"roster-crm/internal/workbook"
	"roster-crm/models"
)

// rosterPass reads one student per row below the header. kindySheet allows
// the kindergarten ("Class", "Name") header when the standard one is absent.
func (in *Ingester) rosterPass(b *builder, sheet string, grid workbook.Grid, kindySheet bool, rep *SheetReport) {
	if len(grid) < 2 {
		rep.Outcome = skipped(ReasonEmptySheet)
		return
	}
	grade := in.schema.RosterGrade(sheet)

	header := FindHeaderRow(grid, in.schema.Roster.Header)
	kindyShape := false
	if header < 0 && kindySheet {
		header = FindHeaderRow(grid, in.schema.Roster.KindyHeader)
		kindyShape = header >= 0
	}
	if header < 0 {
		rep.Outcome = skipped(ReasonNoHeader)
		return
	}

	columns, issues := in.schema.bindColumns(sheet, grid[header])
	rep.Issues = issues
	for _, issue := range issues {
		in.logger.Warn("Roster header deviates from schema",
			"sheet", sheet, "column", issue.Column, "header", issue.Header,
			"kind", issue.Kind, "schema_version", in.schema.Version)
	}

	for i := header + 1; i < len(grid); i++ {
		row := grid[i]
		if len(row) < 2 {
			rep.record(i, -1, skipped(ReasonShortRow))
			continue
		}
		name, ok := ParseName(row[1])
		if !ok {
			rep.record(i, -1, skipped(ReasonMissingName))
			continue
		}

		student := b.upsertStudent(name, grade)
		if kindyShape {
			if label := strings.TrimSpace(row[0]); label != "" {
				class := b.upsertClass(KindyClass(label))
				b.link(student.ID, class.ID)
			}
		} else if tok, ok := ParseClassToken(row[0]); ok && tok.ClassName != "" {
			class := b.upsertClass(tok.Class())
			b.link(student.ID, class.ID)
		}

		applyColumns(student, row, columns)
		rep.record(i, -1, accepted())
	}
	rep.Outcome = accepted()
}

// applyColumns copies recognised enrichment cells onto the student. Blank
// cells leave the field untouched.
func applyColumns(s *models.Student, row []string, columns []columnBinding) {
	for _, col := range columns {
		if col.index >= len(row) {
			continue
		}
		if v := row[col.index]; v != "" {
			s.SetField(col.field, v)
		}
	}
}
