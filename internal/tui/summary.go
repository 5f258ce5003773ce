package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mediascrub/internal/processor"
)

// RenderSummary formats the end-of-batch report: a counts table followed by
// one row per failed file.
func RenderSummary(s processor.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendRows([]table.Row{
		{"Directory", s.Root},
		{"Files found", s.Total},
		{"Processed", s.Processed},
		{"Cleaned", s.Succeeded},
		{"Failed", s.Failed},
		{"Unsupported (skipped)", s.Unsupported},
		{"Space saved", FormatBytes(s.BytesSaved)},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})

	var b strings.Builder
	b.WriteString(tw.Render())
	b.WriteByte('\n')

	if len(s.Failures) > 0 {
		ft := table.NewWriter()
		ft.SetStyle(table.StyleRounded)
		ft.AppendHeader(table.Row{"Failed file", "Reason"})
		for _, f := range s.Failures {
			ft.AppendRow(table.Row{f.Path, f.Reason})
		}
		ft.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, WidthMax: 80},
		})
		b.WriteString(ft.Render())
		b.WriteByte('\n')
	}

	b.WriteString(statusLine(s))
	return b.String()
}

func statusLine(s processor.Summary) string {
	switch {
	case s.Cancelled:
		return statusStyle(ColorWarn).Render(fmt.Sprintf("Cancelled after %d of %d files.", s.Processed+s.Unsupported, s.Total))
	case s.Failed > 0:
		return statusStyle(ColorFail).Render(fmt.Sprintf("%d file(s) could not be cleaned.", s.Failed))
	default:
		return statusStyle(ColorSuccess).Render("All supported files cleaned.")
	}
}

func statusStyle(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
