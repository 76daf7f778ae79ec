package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/service"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/matching"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/money"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	approvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Padding(0, 1)
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Padding(0, 1)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderMatches(client *entity.Client, results []matching.MatchResult) string {
	title := titleStyle.Render(fmt.Sprintf("Applications matching client #%d %s", client.ID, client.FullName))
	if len(results) == 0 {
		return title + "\n" + mutedStyle.Render("no matching applications")
	}

	t := newTable("ID", "Client name", "Phone", "Amount", "Status", "Match", "Score")
	for _, r := range results {
		t.Row(
			strconv.FormatInt(r.Application.ID, 10),
			r.Application.ClientName,
			r.Application.PhoneNumber,
			money.Format(r.Application.LoanAmount),
			r.Application.Status,
			string(r.MatchType),
			strconv.FormatFloat(r.Score, 'f', 2, 64),
		)
	}
	return title + "\n" + t.String()
}

func renderDecision(result *service.DecisionResult) string {
	state := result.State
	title := titleStyle.Render(fmt.Sprintf("Application #%d is %s", state.ApplicationID, result.Status))

	roles := workflow.Roles()
	t := newTable("Role", "Decision", "Notes").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(roles) {
				switch state.Decision(roles[row]).Status {
				case workflow.StatusApproved:
					return approvedStyle
				case workflow.StatusRejected:
					return rejectedStyle
				}
			}
			return cellStyle
		})
	for _, role := range roles {
		d := state.Decision(role)
		marker := role.Title()
		if role == state.CurrentStage && !state.IsTerminal() {
			marker += " *"
		}
		t.Row(marker, string(d.Status), d.Notes)
	}

	out := title + "\n" + t.String()
	if result.NotesGenerated {
		out += "\n" + mutedStyle.Render("rejection notes were generated automatically")
	}
	return out
}

func renderImportReport(file string, report *service.ImportReport) string {
	title := titleStyle.Render(fmt.Sprintf("%s: %d imported, %d failed", file, report.Imported, len(report.Failed)))
	if len(report.Failed) == 0 {
		return title
	}
	t := newTable("Row", "Problem")
	for _, f := range report.Failed {
		t.Row(strconv.Itoa(f.Row), f.Message)
	}
	return title + "\n" + t.String()
}
