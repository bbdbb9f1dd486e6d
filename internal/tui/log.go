package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// logFocus is the focused pane of the learning log.
type logFocus int

const (
	focusList logFocus = iota
	focusTitle
	focusBody
)

func (a *App) openLog() tea.Cmd {
	a.logOpen = true
	a.logFocus = focusList
	a.errMsg = ""
	a.refreshLog()
	a.loadDraft()
	return autosaveTick()
}

func (a *App) closeLog() {
	a.flushNotes()
	a.logOpen = false
	a.noteTitle.Blur()
	a.noteBody.Blur()
}

// flushNotes saves a pending draft.
func (a *App) flushNotes() {
	if a.logOpen {
		a.editor.Save(a.ctx)
	}
}

func (a *App) refreshLog() {
	a.logEntries = a.editor.Entries(a.ctx)
	sel := a.editor.Selected()
	for i, e := range a.logEntries {
		if e.ID == sel {
			a.logCursor = i
			return
		}
	}
	a.logCursor = clamp(a.logCursor, len(a.logEntries))
}

func (a *App) loadDraft() {
	title, body := a.editor.Draft()
	a.noteTitle.SetValue(title)
	a.noteBody.SetValue(body)
}

func (a *App) focusLog(f logFocus) tea.Cmd {
	a.logFocus = f
	a.noteTitle.Blur()
	a.noteBody.Blur()
	switch f {
	case focusTitle:
		return a.noteTitle.Focus()
	case focusBody:
		return a.noteBody.Focus()
	}
	a.editor.Save(a.ctx)
	a.refreshLog()
	return nil
}

func (a *App) selectLogEntry(i int) {
	if i < 0 || i >= len(a.logEntries) {
		return
	}
	a.logCursor = i
	a.editor.Select(a.ctx, a.logEntries[i].ID)
	a.refreshLog()
	a.loadDraft()
}

func (a *App) updateLog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.logFocus != focusList {
		switch msg.String() {
		case "esc":
			return a, a.focusLog(focusList)
		case "tab":
			if a.logFocus == focusTitle {
				return a, a.focusLog(focusBody)
			}
			return a, a.focusLog(focusTitle)
		}
		return a, a.updateLogInputs(msg)
	}

	switch msg.String() {
	case "esc", "q":
		a.closeLog()
		return a, a.syncState()
	case "up", "k":
		a.selectLogEntry(a.logCursor - 1)
	case "down", "j":
		a.selectLogEntry(a.logCursor + 1)
	case "enter", "tab":
		return a, a.focusLog(focusTitle)
	case "n":
		a.editor.New(a.ctx)
		a.refreshLog()
		a.loadDraft()
		return a, a.focusLog(focusTitle)
	case "d":
		if a.editor.Delete(a.ctx) {
			a.refreshLog()
			a.loadDraft()
		}
	}
	return a, nil
}

// updateLogInputs forwards msg to the focused editor field and copies the
// result into the draft.
func (a *App) updateLogInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.logFocus {
	case focusTitle:
		a.noteTitle, cmd = a.noteTitle.Update(msg)
		a.editor.SetTitle(a.noteTitle.Value())
	case focusBody:
		a.noteBody, cmd = a.noteBody.Update(msg)
		a.editor.SetBody(a.noteBody.Value())
	}
	return cmd
}

func (a *App) viewLog() string {
	var list strings.Builder
	list.WriteString(headingStyle.Render("Entries") + "\n\n")
	if len(a.logEntries) == 0 {
		list.WriteString(mutedStyle.Render("No entries yet.") + "\n")
	}
	sel := a.editor.Selected()
	for _, e := range a.logEntries {
		line := truncate(e.Title, 24)
		stamp := mutedStyle.Render(time.UnixMilli(e.UpdatedAt).Format("Jan 2 15:04"))
		if e.ID == sel {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		fmt.Fprintf(&list, "%s\n  %s\n", line, stamp)
	}

	status := mutedStyle.Render("saved")
	if a.editor.Dirty() {
		status = mutedStyle.Render("editing...")
	}
	if sel == "" {
		status = mutedStyle.Render("new entry")
	}
	if err := a.editor.WriteErr(); err != nil {
		status = errorStyle.Render("not saved: " + err.Error())
	}

	editor := lipgloss.JoinVertical(lipgloss.Left,
		a.noteTitle.View(),
		"",
		a.noteBody.View(),
		"",
		status,
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Width(30).Render(list.String()),
		" ",
		boxStyle.Render(editor),
	)

	hint := "↑/↓ select • enter edit • n new • d delete • esc back"
	if a.logFocus != focusList {
		hint = "tab switch field • esc done"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Learning Log"),
		body,
		footerStyle.Render(hint),
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
