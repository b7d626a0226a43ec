package result

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bnema/nebula-graph-cli/internal/domain"
)

type RenderOptions struct {
	// Statement is echoed above the table when set.
	Statement string
	// HideLatency drops the latency from the header, for stable output.
	HideLatency bool
}

func renderView(result domain.ExecutionResult, opts RenderOptions, s styles) string {
	lines := make([]string, 0, 4)
	if stmt := strings.TrimSpace(opts.Statement); stmt != "" {
		lines = append(lines, s.header.Render("> "+stmt))
	}

	if !result.Code.Succeeded() {
		lines = append(lines, s.failure.Render(fmt.Sprintf("[ERROR (%d)]: %s", int32(result.Code), failureMessage(result))))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if result.Data == nil || len(result.Data.ColumnNames) == 0 {
		lines = append(lines, s.empty.Render("Execution succeeded"), headerLine(result, opts, s))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if result.RowCount() == 0 {
		lines = append(lines, s.empty.Render("Empty set"), headerLine(result, opts, s))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, renderTable(result.Data, s), headerLine(result, opts, s))
	if comment := strings.TrimSpace(result.Comment); comment != "" {
		lines = append(lines, s.comment.Render(comment))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderTable(data *domain.DataSet, s styles) string {
	rows := make([][]string, 0, len(data.Rows))
	nulls := make(map[[2]int]bool)
	for r, row := range data.Rows {
		cells := make([]string, len(data.ColumnNames))
		for c := range cells {
			if c >= len(row.Values) || row.Values[c].Kind == domain.ValueNull {
				cells[c] = "__NULL__"
				nulls[[2]int{r, c}] = true
				continue
			}
			cells[c] = cellText(row.Values[c])
		}
		rows = append(rows, cells)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.border).
		Headers(data.ColumnNames...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.column
			case nulls[[2]int{row, col}]:
				return s.null
			default:
				return s.cell
			}
		})

	return t.String()
}

// Strings are shown unquoted inside the table.
func cellText(v domain.Value) string {
	if v.Kind == domain.ValueString {
		return v.Str
	}
	return v.String()
}

func headerLine(result domain.ExecutionResult, opts RenderOptions, s styles) string {
	parts := []string{rowsLabel(result.RowCount())}
	if result.SpaceName != "" {
		parts = append(parts, "space: "+s.space.Render(result.SpaceName))
	}
	if !opts.HideLatency {
		parts = append(parts, "latency: "+formatLatency(result.Latency))
	}

	return s.header.Render(strings.Join(parts, " | "))
}

func rowsLabel(n int) string {
	if n == 1 {
		return "Got 1 row"
	}
	return fmt.Sprintf("Got %d rows", n)
}

func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return d.Round(10 * time.Microsecond).String()
}

func failureMessage(result domain.ExecutionResult) string {
	if result.ErrorMsg != "" {
		return result.ErrorMsg
	}
	return result.Code.String()
}
