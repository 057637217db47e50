package output

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/liftmap"
	"github.com/agentstation/liftmap/pkg/seedstate"
	"github.com/agentstation/liftmap/pkg/validate"
)

// label turns a snake_case or kebab-case key into a column label.
func label(key string) string {
	return cases.Title(language.English).String(strings.NewReplacer("_", " ", "-", " ").Replace(key))
}

func kv(rows [][]string, key, value string) [][]string {
	if value == "" {
		return rows
	}
	return append(rows, []string{label(key), value})
}

func count(rows [][]string, key string, n int) [][]string {
	return append(rows, []string{label(key), strconv.Itoa(n)})
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format(time.RFC3339)
}

// ResultTable lays out a pipeline result as property and value rows.
func ResultTable(res *liftmap.Result) Data {
	var rows [][]string
	rows = kv(rows, "operation", res.Operation.String())
	rows = kv(rows, "status", label(res.Status.String()))
	rows = kv(rows, "error_kind", string(res.ErrorKind))
	rows = kv(rows, "message", res.Message)
	rows = kv(rows, "source", res.Source)
	rows = kv(rows, "content_hash", shortHash(res.ContentHash))

	s := res.Stats
	switch res.Operation {
	case liftmap.OperationLinks:
		rows = count(rows, "linked", s.Linked)
	default:
		rows = count(rows, "fetched", s.Fetched)
		rows = count(rows, "valid", s.Valid)
		rows = count(rows, "invalid", s.Invalid)
		rows = count(rows, "duplicates", s.Duplicates)
		rows = count(rows, "inserted", s.Inserted)
		rows = count(rows, "updated", s.Updated)
		rows = count(rows, "skipped", s.Skipped)
		rows = count(rows, "user_owned", s.UserOwned)
		if res.Operation == liftmap.OperationRepair {
			rows = count(rows, "unmatched", s.Unmatched)
			rows = count(rows, "swept", s.Swept)
		}
		rows = count(rows, "equipment_created", s.Equipment)
		rows = count(rows, "linked", s.Linked)
	}

	rows = kv(rows, "link_error", res.LinkError)
	for _, w := range res.Warnings {
		rows = kv(rows, "warning", w)
	}
	rows = kv(rows, "duration", res.Duration().Round(time.Millisecond).String())

	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	}
}

// DiagnosticsTable lays out the seed diagnostics.
func DiagnosticsTable(d *liftmap.Diagnostics) Data {
	state := d.State
	current := "yes"
	if !d.Current() {
		current = "no: " + d.ImportReason
	}

	var rows [][]string
	rows = kv(rows, "catalog_version", d.CatalogVersion)
	rows = kv(rows, "stored_version", state.CatalogVersion)
	rows = kv(rows, "current", current)
	rows = kv(rows, "last_status", string(state.LastStatus))
	rows = kv(rows, "last_message", state.LastMessage)
	rows = kv(rows, "last_source", state.LastSource)
	rows = kv(rows, "last_run", timestamp(state.LastRunAt.Time))
	rows = kv(rows, "content_hash", shortHash(state.ContentHash))
	rows = kv(rows, "repair_hash", shortHash(state.LastRepairHash))
	rows = kv(rows, "last_link_error", state.LastLinkError)
	rows = count(rows, "exercises", d.ExerciseCount)
	rows = count(rows, "equipment", d.EquipmentCount)
	rows = count(rows, "user_owned", d.UserOwnedCount)
	rows = count(rows, "starter", d.StarterCount)
	rows = count(rows, "linked", d.LinkedCount)

	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	}
}

// AuditTable lists audit entries, most recent first.
func AuditTable(entries []seedstate.AuditEntry) Data {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			timestamp(e.At.Time),
			e.Operation,
			string(e.Status),
			e.ErrorKind,
			e.Message,
		})
	}
	return Data{
		Headers: []string{"At", "Operation", "Status", "Error", "Message"},
		Rows:    rows,
	}
}

// ValidationTable lists the sampled invalid records of a report.
func ValidationTable(r *validate.Report) Data {
	rows := make([][]string, 0, len(r.InvalidSamples))
	for _, s := range r.InvalidSamples {
		rows = append(rows, []string{strconv.Itoa(s.Index), s.Name, strings.Join(s.Reasons, "; ")})
	}
	return Data{
		Headers:         []string{"Index", "Name", "Reasons"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft},
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
