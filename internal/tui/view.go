package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/learnpath/internal/chat"
	"github.com/rcliao/learnpath/internal/lifecycle"
	"github.com/rcliao/learnpath/internal/model"
	"github.com/rcliao/learnpath/internal/progress"
)

// View renders the current screen.
func (a *App) View() string {
	if notice := a.ctrl.Notice(); notice != "" {
		return noticeStyle.Render(notice + "\n\n" + mutedStyle.Render("press enter to continue"))
	}

	state := a.ctrl.State()
	var body string
	switch {
	case a.busy != "" || state.Loading():
		body = a.viewLoading(state)
	case a.logOpen:
		body = a.viewLog()
	case state == lifecycle.StateHome:
		body = a.viewHome()
	case state == lifecycle.StateOnboarding:
		body = a.viewOnboarding()
	case state == lifecycle.StatePathways:
		body = a.viewPathways()
	case state == lifecycle.StateReview:
		body = a.viewReview()
	case state == lifecycle.StateRevising:
		body = a.viewRevising()
	case state == lifecycle.StateDashboard:
		body = a.viewDashboard()
	default:
		body = mutedStyle.Render("Loading...")
	}

	if a.errMsg != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, errorStyle.Render(a.errMsg))
	}
	return body + "\n"
}

func (a *App) viewLoading(state lifecycle.State) string {
	label := a.busy
	if label == "" {
		switch state {
		case lifecycle.StateGeneratingPathways:
			label = "Finding learning pathways..."
		case lifecycle.StateGeneratingPlan:
			label = "Designing your plan..."
		case lifecycle.StateRevisingLoading:
			label = "Revising your plan..."
		}
	}
	return boxStyle.Render(selectedStyle.Render("◐ ") + label)
}

func (a *App) viewHome() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("learnpath") + "\n")
	if len(a.plans) == 0 {
		b.WriteString(mutedStyle.Render("No plans yet. Press n to start one.") + "\n")
	}
	for i, rec := range a.plans {
		p := progress.PlanProgress(rec.Plan)
		title := rec.Plan.Topic
		if title == "" {
			title = rec.UserProfile.Topic
		}
		line := fmt.Sprintf("%s  %s", title, mutedStyle.Render(fmt.Sprintf("%d%% • %d/%d steps", p.Percent, p.Completed, p.Total)))
		meta := mutedStyle.Render(fmt.Sprintf("%s • %s • updated %s",
			rec.UserProfile.Level, rec.UserProfile.TimeCommitment,
			time.UnixMilli(rec.UpdatedAt).Format("Jan 2, 2006")))
		if i == a.homeCursor {
			fmt.Fprintf(&b, "%s\n    %s\n", selectedStyle.Render("> "+line), meta)
		} else {
			fmt.Fprintf(&b, "  %s\n    %s\n", line, meta)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		b.String(),
		footerStyle.Render("↑/↓ navigate • enter open • n new plan • l learning log • q quit"),
	)
}

func (a *App) viewOnboarding() string {
	o := a.onboarding
	if o.Done() {
		p := o.Profile()
		summary := fmt.Sprintf("%s\n%s • %s\n%s", p.Topic, p.TimeCommitment, p.Level, p.Motivation)
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Ready to generate"),
			boxStyle.Render(summary),
			footerStyle.Render("enter generate pathways • esc edit answers"),
		)
	}
	n, total := o.Step()
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("New plan (%d/%d)", n, total)),
		headingStyle.Render(o.Prompt()),
		"",
		a.input.View(),
		footerStyle.Render("enter next • esc back"),
	)
}

func (a *App) viewPathways() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Choose your pathways") + "\n")
	for i, p := range a.ctrl.Pathways() {
		box := "[ ]"
		if a.picked[p.ID] {
			box = doneStyle.Render("[x]")
		}
		title := p.Title
		if i == a.pathCursor {
			title = selectedStyle.Render(title)
		}
		fmt.Fprintf(&b, "%s %s\n    %s\n", box, title, mutedStyle.Render(p.LearningGoal))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		b.String(),
		footerStyle.Render("↑/↓ navigate • space select • enter build plan"),
	)
}

func (a *App) viewReview() string {
	plan := a.ctrl.Plan()
	lines := planLines(plan, "")
	if a.reviewScroll > len(lines)-1 {
		a.reviewScroll = max(0, len(lines)-1)
	}
	visible := lines[a.reviewScroll:]
	if a.height > 10 && len(visible) > a.height-8 {
		visible = visible[:a.height-8]
	}
	hint := "↑/↓ scroll • enter start learning • r request changes"
	if !a.ctrl.CanRevise() {
		hint = "↑/↓ scroll • enter start learning"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(plan.Topic),
		mutedStyle.Render(profileLine(a.ctrl.Profile())),
		"",
		strings.Join(visible, "\n"),
		footerStyle.Render(hint),
	)
}

func (a *App) viewRevising() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Request changes"),
		mutedStyle.Render("You can revise a plan once."),
		"",
		a.input.View(),
		footerStyle.Render("enter submit"),
	)
}

func (a *App) viewDashboard() string {
	plan := a.ctrl.Plan()
	p := progress.PlanProgress(plan)
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(plan.Topic),
		fmt.Sprintf("%s %s", progressBar(p.Percent, 30), mutedStyle.Render(fmt.Sprintf("%d%% complete", p.Percent))),
		"",
	)

	tabs := []string{"Plan", "Chat"}
	for i, t := range tabs {
		if dashTab(i) == a.tab {
			tabs[i] = selectedStyle.Render("[" + t + "]")
		} else {
			tabs[i] = mutedStyle.Render(" " + t + " ")
		}
	}
	tabRow := strings.Join(tabs, " ")

	if a.tab == tabChat {
		return lipgloss.JoinVertical(lipgloss.Left, header, tabRow, "", a.viewChat())
	}

	acts := progress.Flatten(plan)
	cursorID := ""
	if a.cursor < len(acts) {
		cursorID = acts[a.cursor].Step.ID
	}
	lines := strings.Join(planLines(plan, cursorID), "\n")
	detail := ""
	if a.cursor < len(acts) {
		detail = a.viewStep(acts[a.cursor])
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(lines),
		" ",
		boxStyle.Width(44).Render(detail),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		tabRow,
		"",
		body,
		footerStyle.Render("↑/↓ navigate • space toggle • n next • p preview • tab chat • L log • esc home"),
	)
}

func (a *App) viewStep(act progress.Activity) string {
	s := act.Step
	var b strings.Builder
	b.WriteString(headingStyle.Render(s.Title) + "\n")
	fmt.Fprintf(&b, "%s\n\n", mutedStyle.Render(strings.Join(nonEmpty(string(s.Type), s.Duration, act.DayTitle), " • ")))
	if s.Description != "" {
		b.WriteString(s.Description + "\n")
	}
	if s.URL != "" {
		label := s.ResourceTitle
		if label == "" {
			label = s.URL
		}
		b.WriteString("\n" + selectedStyle.Render(label) + "\n" + mutedStyle.Render(s.URL) + "\n")
	}
	if s.Resources != "" {
		b.WriteString("\n" + s.Resources + "\n")
	}
	if s.Objectives != nil && len(s.Objectives.Items) > 0 {
		b.WriteString("\n" + headingStyle.Render("Objectives") + "\n")
		if s.Objectives.IsList() {
			for _, o := range s.Objectives.Items {
				b.WriteString("• " + o + "\n")
			}
		} else {
			b.WriteString(s.Objectives.String() + "\n")
		}
	}
	if pv, ok := a.previews[s.ID]; ok {
		b.WriteString("\n" + headingStyle.Render("Preview") + "\n")
		if pv.Title != "" {
			b.WriteString(pv.Title + "\n")
		}
		if pv.Description != "" {
			b.WriteString(mutedStyle.Render(pv.Description) + "\n")
		}
		for _, h := range pv.Headings {
			b.WriteString("  - " + h + "\n")
		}
	}
	return b.String()
}

func (a *App) viewChat() string {
	var b strings.Builder
	for _, m := range a.ctrl.ChatMessages() {
		if m.Role == chat.RoleUser {
			b.WriteString(lipgloss.PlaceHorizontal(max(40, a.width-4), lipgloss.Right, userBubble.Render(m.Content)) + "\n")
		} else {
			b.WriteString(assistantBubble.Render(m.Content) + "\n")
		}
	}
	if a.chatBusy {
		b.WriteString(mutedStyle.Render("thinking...") + "\n")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		b.String(),
		a.chatInput.View(),
		footerStyle.Render("enter send • tab/esc back to plan"),
	)
}

// planLines renders days and steps, highlighting cursorID.
func planLines(plan model.Plan, cursorID string) []string {
	var lines []string
	for _, day := range plan.Days {
		dp := progress.DayProgress(day)
		lines = append(lines, headingStyle.Render(day.Title)+" "+mutedStyle.Render(fmt.Sprintf("(%d/%d)", dp.Completed, dp.Total)))
		for _, s := range day.Steps {
			box := "[ ]"
			if s.Completed {
				box = doneStyle.Render("[✓]")
			}
			title := s.Title
			if s.ID == cursorID {
				title = selectedStyle.Render("> " + title)
			} else {
				title = "  " + title
			}
			lines = append(lines, fmt.Sprintf("  %s%s %s", box, title, mutedStyle.Render(string(s.Type))))
		}
		lines = append(lines, "")
	}
	return lines
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	return doneStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func profileLine(p model.UserProfile) string {
	return strings.Join(nonEmpty(string(p.Level), string(p.TimeCommitment), p.Motivation), " • ")
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
