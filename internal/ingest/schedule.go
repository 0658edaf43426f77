package ingest

import (
	"fmt"
	"strings"

	"roster-crm/internal/workbook"
	"roster-crm/models"
)

// schedulePass reads a day-schedule sheet column by column. The Class, Time
// and Teacher rows carry class metadata; names below the Teacher row are the
// enrolled students.
func (in *Ingester) schedulePass(b *builder, sheet string, grid workbook.Grid, kindy bool, rep *SheetReport) {
	if len(grid) < 3 {
		rep.Outcome = skipped(ReasonEmptySheet)
		return
	}
	layout := in.schema.Schedule
	classRow := FindLabelRow(grid, layout.ClassRow)
	timeRow := FindLabelRow(grid, layout.TimeRow)
	teacherRow := FindLabelRow(grid, layout.TeacherRow)
	if classRow < 0 || timeRow < 0 || teacherRow < 0 {
		rep.Outcome = skipped(ReasonMissingScheduleRow)
		return
	}

	for j := 1; j < len(grid[classRow]); j++ {
		raw := grid[classRow][j]
		if strings.TrimSpace(raw) == "" {
			rep.record(classRow, j, skipped(ReasonEmptyColumn))
			continue
		}

		var class models.Class
		if kindy {
			parts := splitLines(raw)
			if parts[0] == "" {
				rep.record(classRow, j, skipped(ReasonMalformedClassToken))
				continue
			}
			class = KindyClass(parts[0])
			class.AdditionalInfo = partAt(parts, 2)
		} else {
			tok, ok := ParseClassToken(raw)
			if !ok {
				rep.record(classRow, j, skipped(ReasonMalformedClassToken))
				continue
			}
			if tok.ClassName == "" {
				tok.ClassName = fmt.Sprintf("Class %d", j)
			}
			class = tok.Class()
		}
		class.Schedule = strings.TrimSpace(grid.Cell(timeRow, j))
		class.Teachers = strings.TrimSpace(grid.Cell(teacherRow, j))

		stored := b.upsertClass(class)
		for i := teacherRow + 1; i < len(grid); i++ {
			name, ok := ParseName(grid.Cell(i, j))
			if !ok {
				continue
			}
			student := b.upsertStudent(name, class.Grade)
			b.link(student.ID, stored.ID)
		}
		rep.record(classRow, j, accepted())
	}
	rep.Outcome = accepted()
}
