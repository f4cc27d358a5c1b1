package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/claude/ironlog/internal/event"
	"github.com/claude/ironlog/internal/prescription"
	"github.com/claude/ironlog/internal/tracker"
)

// Palette
var (
	ColorIron    = lipgloss.Color("#8FA3B0")
	ColorAccent  = lipgloss.Color("#E8A33D")
	ColorSuccess = lipgloss.Color("#5FBF77")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#5C6A73")
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Accent  lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorAccent),
	Header:  lipgloss.NewStyle().Bold(true).Foreground(ColorIron).Padding(0, 1),
	Cell:    lipgloss.NewStyle().Padding(0, 1),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Error:   lipgloss.NewStyle().Foreground(ColorError),
	Accent:  lipgloss.NewStyle().Foreground(ColorAccent),
}

// Icon is a status glyph.
type Icon string

const (
	IconOK      Icon = "✓"
	IconError   Icon = "✗"
	IconPending Icon = "○"
	IconActive  Icon = "▸"
)

// Render returns the icon with its status color.
func (i Icon) Render() string {
	switch i {
	case IconOK:
		return Styles.Success.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconActive:
		return Styles.Accent.Render(string(i))
	default:
		return Styles.Muted.Render(string(i))
	}
}

// slotLabel shows a zero-based slot with one-based numbers.
func slotLabel(week, workout int) string {
	return fmt.Sprintf("week %d, workout %d", week+1, workout+1)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

func formatPrescription(p prescription.Prescription) string {
	reps, weight := "?", "?"
	if p.PrescribedReps != nil {
		reps = strconv.Itoa(*p.PrescribedReps)
	}
	if p.PrescribedWeight != nil {
		weight = formatWeight(*p.PrescribedWeight)
	}
	return reps + " × " + weight
}

func formatFeedback(fb map[string]int) string {
	return fmt.Sprintf("joint pain %d, pump %d, workload %d", fb["joint_pain"], fb["pump"], fb["workload"])
}

// describe is a one-line summary of an event.
func describe(e event.Event) string {
	switch e := e.(type) {
	case event.SetLogged:
		return fmt.Sprintf("%s: %d × %s (%s)", e.Exercise, e.Reps, formatWeight(e.Weight), slotLabel(e.WeekIndex, e.WorkoutIndex))
	case event.ExerciseStarted:
		return fmt.Sprintf("started %s (%s)", e.Exercise, slotLabel(e.WeekIndex, e.WorkoutIndex))
	case event.ExerciseCompleted:
		return fmt.Sprintf("completed %s: %s", e.Exercise, formatFeedback(e.Feedback))
	case event.WorkoutCompleted:
		return "workout completed (" + slotLabel(e.WeekIndex, e.WorkoutIndex) + ")"
	default:
		panic(fmt.Sprintf("cli: unknown event %T", e))
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Styles.Muted).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.Header
			}
			return Styles.Cell
		})
}

// renderWorkout draws one row per prescribed or logged set.
func renderWorkout(v tracker.WorkoutView) string {
	var b strings.Builder
	title := fmt.Sprintf("%s · %s of %d weeks", v.Template, slotLabel(v.WeekIndex, v.WorkoutIndex), v.Weeks)
	b.WriteString(Styles.Title.Render(title))
	b.WriteString("\n")

	t := newTable("", "Exercise", "Set", "Prescribed", "Logged")
	for _, ex := range v.Exercises {
		icon := IconPending
		switch {
		case ex.IsCompleted:
			icon = IconOK
		case ex.IsStarted:
			icon = IconActive
		}

		rows := max(len(ex.PrescribedSets), len(ex.LoggedSets), 1)
		for i := 0; i < rows; i++ {
			status, name := "", ""
			if i == 0 {
				status, name = icon.Render(), ex.Name
			}
			prescribed, logged := "", ""
			if i < len(ex.PrescribedSets) {
				prescribed = formatPrescription(ex.PrescribedSets[i])
			}
			if i < len(ex.LoggedSets) {
				logged = fmt.Sprintf("%d × %s", ex.LoggedSets[i].Reps, formatWeight(ex.LoggedSets[i].Weight))
			}
			t.Row(status, name, strconv.Itoa(i+1), prescribed, logged)
		}
	}
	b.WriteString(t.String())

	switch {
	case v.PlanFinished:
		b.WriteString("\n" + Styles.Success.Render("plan finished"))
	case v.IsCompleted:
		b.WriteString("\n" + Styles.Success.Render("workout completed"))
	}
	return b.String()
}

// renderHistory draws the event log as a table.
func renderHistory(events []event.Event) string {
	t := newTable("#", "Event", "Exercise", "Week", "Workout", "Detail")
	for i, e := range events {
		week, workout := event.Indices(e)
		name, _ := event.ExerciseOf(e)
		detail := ""
		switch e := e.(type) {
		case event.SetLogged:
			detail = fmt.Sprintf("%d × %s", e.Reps, formatWeight(e.Weight))
		case event.ExerciseCompleted:
			detail = formatFeedback(e.Feedback)
		}
		t.Row(strconv.Itoa(i+1), string(e.Kind()), name, strconv.Itoa(week+1), strconv.Itoa(workout+1), detail)
	}
	return t.String()
}

// renderError formats command errors. Rejections show their code and any
// missing exercises.
func renderError(err error) string {
	rej, ok := tracker.AsRejection(err)
	if !ok {
		return IconError.Render() + " " + Styles.Error.Render(err.Error())
	}
	var b strings.Builder
	b.WriteString(IconError.Render() + " " + Styles.Error.Render(rej.Message) + " " + Styles.Muted.Render("["+rej.Code+"]"))
	if len(rej.Missing) > 0 {
		b.WriteString("\n  still to complete: " + strings.Join(rej.Missing, ", "))
	}
	return b.String()
}
