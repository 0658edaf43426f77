package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"roster-crm/config"
	"roster-crm/internal/aggregate"
	"roster-crm/internal/demo"
	"roster-crm/internal/ingest"
	"roster-crm/internal/workbook"
	"roster-crm/models"
)

var (
	exportPath string
	dumpPath   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <workbook.xlsx>",
	Short: "Ingest a workbook and print statistics and skipped rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Print the demonstration dataset statistics",
	RunE:  runDemo,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the workbook schema in use",
	RunE:  runSchema,
}

func init() {
	ingestCmd.Flags().StringVar(&exportPath, "xlsx", "", "also write the normalized roster to this xlsx file")
	ingestCmd.Flags().StringVar(&dumpPath, "dump", "", "also write the database snapshot JSON to this file")
	demoCmd.Flags().StringVar(&dumpPath, "dump", "", "write the demonstration snapshot JSON to this file")
}

func newIngester() (*ingest.Ingester, error) {
	logger := config.NewLogger(&config.Config{LogLevel: logLevel, LogFormat: "text"}, os.Stderr)
	schema, err := ingest.LoadSchema(schemaPath)
	if err != nil {
		return nil, err
	}
	return ingest.New(ingest.WithSchema(schema), ingest.WithLogger(logger)), nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	in, err := newIngester()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}
	res, err := in.IngestBytes(context.Background(), data)
	if err != nil {
		return err
	}
	if err := writeOutputs(res.Database, res.View); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]interface{}{
			"stats":      res.View.Stats,
			"gradesList": res.View.Grades,
			"report":     res.Report,
		})
	}
	printStats(out, res.View)
	printReport(out, res.Report)
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	db := demo.Generate(time.Now())
	view := aggregate.Compute(db)
	if err := writeOutputs(db, view); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{"stats": view.Stats, "gradesList": view.Grades})
	}
	printStats(cmd.OutOrStdout(), view)
	return nil
}

func runSchema(cmd *cobra.Command, args []string) error {
	schema, err := ingest.LoadSchema(schemaPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, schema)
	}
	fmt.Fprintf(out, "Schema version %s\n", schema.Version)
	fmt.Fprintf(out, "  grade rosters:  %s\n", schema.Sheets.GradeRosterPattern)
	fmt.Fprintf(out, "  kindy sheet:    %s\n", schema.Sheets.KindySheet)
	fmt.Fprintf(out, "  day schedules:  %s\n", strings.Join(schema.Sheets.DaySchedule, ", "))
	for _, col := range schema.Roster.Columns {
		fmt.Fprintf(out, "  %-14s <- %q\n", col.Field, col.Header)
	}
	return nil
}

func writeOutputs(db models.Database, view aggregate.View) error {
	if exportPath != "" {
		buf, err := workbook.Export(db, view)
		if err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
		if err := workbook.WriteFile(exportPath, buf.Bytes()); err != nil {
			return fmt.Errorf("write %s: %w", exportPath, err)
		}
	}
	if dumpPath != "" {
		data, err := json.MarshalIndent(db, "", "  ")
		if err != nil {
			return err
		}
		if err := workbook.WriteFile(dumpPath, data); err != nil {
			return fmt.Errorf("write %s: %w", dumpPath, err)
		}
	}
	return nil
}

func printStats(w io.Writer, v aggregate.View) {
	fmt.Fprintf(w, "Students: %d\nClasses:  %d\n", v.Stats.TotalStudents, v.Stats.TotalClasses)
	for _, g := range v.Grades {
		fmt.Fprintf(w, "  %-10s classes=%-3d students=%-3d (own grade %d)\n",
			g, len(v.ClassesByGrade[g]), len(v.StudentsByGrade[g]), v.Stats.StudentsPerGrade[g])
	}
}

func printReport(w io.Writer, r ingest.Report) {
	accepted, skippedCells, skippedSheets := r.Counts()
	fmt.Fprintf(w, "Run %s: %d accepted, %d skipped rows/columns, %d skipped sheets\n",
		r.RunID, accepted, skippedCells, skippedSheets)
	for _, s := range r.Sheets {
		if s.Outcome.Status == ingest.Skipped {
			fmt.Fprintf(w, "  %s [%s]: skipped (%s)\n", s.Sheet, s.Pass, s.Outcome.Reason)
		}
	}
	for _, name := range r.Ignored {
		fmt.Fprintf(w, "  %s: ignored\n", name)
	}
	for _, issue := range r.SchemaIssues() {
		fmt.Fprintf(w, "  %s column %d %q: %s\n", issue.Sheet, issue.Column, issue.Header, issue.Kind)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
