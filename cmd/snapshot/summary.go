package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/hydra-snapshot/internal/app"
)

// renderSummary formats the closing report of a run
func renderSummary(s *app.Summary) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7D56F4")).
		Padding(0, 2)
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7D56F4")).
		Bold(true)
	label := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888"))
	file := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575"))

	var b strings.Builder
	b.WriteString(title.Render(fmt.Sprintf("Snapshot of block #%d", s.Height)))
	b.WriteString("\n")
	b.WriteString(label.Render("chain head: "))
	b.WriteString(fmt.Sprintf("#%d", s.Head))
	b.WriteString("\n")
	b.WriteString(label.Render("block hash: "))
	b.WriteString(s.Hash.Hex())
	b.WriteString("\n")
	b.WriteString(label.Render("rpc calls:  "))
	b.WriteString(fmt.Sprintf("%d", s.RPCCalls))
	b.WriteString("\n\n")

	for _, f := range s.Files {
		b.WriteString(file.Render("✓ " + f))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.Message())
	b.WriteString("\ndone!")

	return box.Render(b.String())
}
