// Package report renders run results as terminal tables.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/timmy/batchpub/internal/domain"
	"github.com/timmy/batchpub/internal/pipeline"
	"github.com/timmy/batchpub/internal/service"
)

const messageWidth = 48

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

// Summary renders the counters of a finished run.
func Summary(stats *service.RunStats) string {
	mode := "publish"
	if stats.Simulate {
		mode = "simulate"
	}

	t := newTable("Outcome", "Rows").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Row("uploaded", strconv.Itoa(stats.Uploaded)).
		Row("simulated", strconv.Itoa(stats.Simulated)).
		Row("missing file", strconv.Itoa(stats.Missing)).
		Row("failed", strconv.Itoa(stats.Failed)).
		Row("skipped", strconv.Itoa(stats.Skipped)).
		Row("total", strconv.Itoa(stats.Total))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Run " + stats.RunID))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("mode: %s | schedule: %s | next slot: %d | took: %s",
		mode, stats.Schedule, stats.NextSlot, stats.Duration().Round(time.Millisecond))))
	b.WriteString("\n")
	b.WriteString(t.String())
	if stats.Cancelled {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render("Run was cancelled; remaining rows were left untouched."))
	}
	return b.String()
}

// Rows renders one line per processed row.
func Rows(rows []pipeline.RowResult) string {
	kinds := make([]pipeline.Kind, 0, len(rows))
	t := newTable("Row", "Identifier", "Outcome", "Slot", "Publish at", "Detail")
	for _, r := range rows {
		kinds = append(kinds, r.Outcome.Kind)
		slot, at := "-", "-"
		if r.ConsumedSlot() {
			slot = strconv.Itoa(r.Job.Slot)
			at = r.Job.PublishAt.UTC().Format(time.RFC3339)
		}
		t.Row(strconv.Itoa(r.Job.Row+1), r.Job.Identifier, string(r.Outcome.Kind), slot, at, rowDetail(r))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col == 2 && row >= 0 && row < len(kinds) {
			return outcomeStyle(kinds[row])
		}
		return cellStyle
	})
	return t.String()
}

func rowDetail(r pipeline.RowResult) string {
	switch r.Outcome.Kind {
	case pipeline.KindUploaded:
		return r.Outcome.RemoteID
	case pipeline.KindSimulated:
		return r.Outcome.MediaFile
	case pipeline.KindFailed:
		return truncate(r.Outcome.Message, messageWidth)
	}
	return ""
}

func outcomeStyle(k pipeline.Kind) lipgloss.Style {
	switch k {
	case pipeline.KindUploaded, pipeline.KindSimulated:
		return okStyle.Padding(0, 1)
	case pipeline.KindMissingFile:
		return warnStyle.Padding(0, 1)
	case pipeline.KindFailed:
		return errorStyle.Padding(0, 1)
	}
	return mutedStyle.Padding(0, 1)
}

// RecordedRows renders the rows stored for one run.
func RecordedRows(rows []domain.RowResult) string {
	t := newTable("Row", "Identifier", "Outcome", "Slot", "Publish at", "Status").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(rows) {
				return outcomeStyle(pipeline.Kind(rows[row].Outcome))
			}
			return cellStyle
		})
	for _, r := range rows {
		slot, at := "-", "-"
		if r.Slot != nil {
			slot = strconv.Itoa(*r.Slot)
		}
		if r.PublishAt != nil {
			at = r.PublishAt.UTC().Format(time.RFC3339)
		}
		t.Row(strconv.Itoa(r.RowNumber), r.Identifier, r.Outcome, slot, at, truncate(r.StatusText, messageWidth))
	}
	return t.String()
}

// History renders recorded runs, newest first as given.
func History(runs []domain.PublishRun) string {
	if len(runs) == 0 {
		return mutedStyle.Render("No runs recorded.")
	}
	statuses := make([]domain.RunStatus, 0, len(runs))
	t := newTable("Run", "Started", "Status", "Sheet", "Up", "Sim", "Miss", "Fail", "Skip")
	for _, r := range runs {
		statuses = append(statuses, r.Status)
		t.Row(
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			string(r.Status),
			truncate(r.SheetPath, 32),
			strconv.Itoa(r.Uploaded),
			strconv.Itoa(r.Simulated),
			strconv.Itoa(r.Missing),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Skipped),
		)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col == 2 && row >= 0 && row < len(statuses) {
			switch statuses[row] {
			case domain.RunStatusCompleted:
				return okStyle.Padding(0, 1)
			case domain.RunStatusFailed:
				return errorStyle.Padding(0, 1)
			case domain.RunStatusCancelled, domain.RunStatusRunning:
				return warnStyle.Padding(0, 1)
			}
		}
		return cellStyle
	})
	return t.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
