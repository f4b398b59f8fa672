// Package tray shows narrator in the system tray: a version line, a speed
// submenu with one checked entry per preset, and exit.
package tray

import (
	"fmt"

	"github.com/dgnsrekt/narrator/internal/speed"
)

// Tooltip is shown when hovering the tray icon.
const Tooltip = "narrator - F8:read F9:pause"

// Menu is the tray contents independent of any tray library. Speed changes
// made elsewhere (hotkeys) reach it through Sync.
type Menu struct {
	version string
	labels  []string
	checked int
}

// NewMenu builds the menu for table with index checked.
func NewMenu(version string, table *speed.Table, checked int) *Menu {
	labels := make([]string, table.Len())
	for i := range labels {
		labels[i] = table.At(i).Label
	}
	m := &Menu{version: version, labels: labels, checked: -1}
	m.Sync(checked)
	return m
}

// VersionLine is the disabled first entry.
func (m *Menu) VersionLine() string {
	if m.version == "" {
		return "narrator"
	}
	return "narrator " + m.version
}

// Labels returns one label per preset, in table order.
func (m *Menu) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Checked returns the checked preset index, or -1 if none.
func (m *Menu) Checked() int {
	return m.checked
}

// SpeedTitle is the submenu title, for example "Speed: x1".
func (m *Menu) SpeedTitle() string {
	if m.checked < 0 {
		return "Speed"
	}
	return fmt.Sprintf("Speed: %s", m.labels[m.checked])
}

// Sync moves the check mark to index. It returns the previously checked
// index and whether anything changed. Indexes out of range clear the mark.
func (m *Menu) Sync(index int) (prev int, changed bool) {
	if index < 0 || index >= len(m.labels) {
		index = -1
	}
	prev = m.checked
	if prev == index {
		return prev, false
	}
	m.checked = index
	return prev, true
}
