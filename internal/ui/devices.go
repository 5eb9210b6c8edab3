package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/rokuctl/internal/discovery"
)

// RenderDeviceTable renders scan results as a bordered table
func RenderDeviceTable(devices []*discovery.Device) string {
	if len(devices) == 0 {
		return lipgloss.NewStyle().Foreground(MutedColor).Render("  No devices answered.")
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(PrimaryColor)).
		Headers("#", "IDENTITY", "LOCATION", "FROM").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})

	for i, d := range devices {
		t.Row(fmt.Sprintf("%d", i+1), d.Identity, d.Location, d.Addr)
	}

	return t.Render()
}

// RenderDeviceLine renders one device as a single status line
func RenderDeviceLine(d *discovery.Device) string {
	if d.IsStatic() {
		return WarningTitleStyle.Render(WarningMarker+" ") + d.Location +
			lipgloss.NewStyle().Foreground(MutedColor).Render(" (static address)")
	}
	return SuccessTitleStyle.Render(SuccessMarker+" ") + d.Location +
		lipgloss.NewStyle().Foreground(MutedColor).Render(fmt.Sprintf(" (%s, %s)", d.Identity, d.DiscoveredAt.Format(time.Kitchen)))
}
