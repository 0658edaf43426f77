package workbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster-crm/internal/aggregate"
	"roster-crm/models"
)

func TestEncodeRead(t *testing.T) {
	buf, err := Encode(
		Sheet{Name: "G1", Rows: Grid{
			{"Class/Level/Time", "Name ", "Feedback\n1-5"},
			{"1R\nMoon", "Tom 김철수"},
			{},
			{"", "Amy 박"},
		}},
		Sheet{Name: "MonFri", Rows: Grid{{"Class", "1R\nMoon"}}},
	)
	require.NoError(t, err)

	wb, err := ReadBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"G1", "MonFri"}, wb.SheetNames())

	rows, err := wb.Rows("G1")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Class/Level/Time", "Name ", "Feedback\n1-5"}, rows[0])
	assert.Equal(t, []string{"1R\nMoon", "Tom 김철수"}, rows[1])
	assert.Empty(t, rows[2])
	assert.Equal(t, []string{"", "Amy 박"}, rows[3])

	_, err = wb.Rows("G2")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestReadBytesErrors(t *testing.T) {
	_, err := ReadBytes(nil)
	assert.Error(t, err)
	_, err = ReadBytes([]byte("PK not a zip"))
	assert.Error(t, err)
	_, err = Encode()
	assert.Error(t, err)
}

func TestGridCell(t *testing.T) {
	g := Grid{{"a", "b"}, {"c"}}
	assert.Equal(t, "b", g.Cell(0, 1))
	assert.Equal(t, "", g.Cell(1, 1))
	assert.Equal(t, "", g.Cell(5, 0))
	assert.Equal(t, "", g.Cell(-1, 0))
}

func TestNewKeepsFirstOrder(t *testing.T) {
	wb := New(Sheet{Name: "B"}, Sheet{Name: "A"}, Sheet{Name: "B", Rows: Grid{{"x"}}})
	assert.Equal(t, []string{"B", "A"}, wb.SheetNames())
	rows, err := wb.Rows("B")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x"}}, rows)
}

func TestExportSheets(t *testing.T) {
	db := models.NewDatabase()
	db.Classes["2H Sun"] = models.Class{ID: "2H Sun", Name: "Sun", Grade: "2", LevelCode: "H", Level: "2H", Students: []string{"Al-김"}}
	db.Students["Al-김"] = models.Student{ID: "Al-김", EnglishName: "Al", KoreanName: "김", Grade: "2", Classes: []string{"2H Sun"}}
	db.Comments.Classes["2H Sun"] = "moved"
	view := aggregate.Compute(db)

	sheets := ExportSheets(db, view)
	require.Len(t, sheets, 3)
	assert.Equal(t, []string{"2", "1", "1", "1"}, sheets[0].Rows[4])
	assert.Equal(t, "moved", sheets[1].Rows[1][8])
	assert.Equal(t, "2H Sun", sheets[2].Rows[1][4])

	buf, err := Export(db, view)
	require.NoError(t, err)
	wb, err := ReadBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Summary", "Classes", "Students"}, wb.SheetNames())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "roster.xlsx")
	require.NoError(t, WriteFile(path, []byte("data")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	assert.Error(t, WriteFile(filepath.Join(blocker, "x.json"), nil))
}
