package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")). // Yellow
			Bold(true)

	BorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")) // Soft blue
)

const barWidth = 20

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

func (f *Formatter) FormatError(err error) string {
	prefix := "Error: "
	if f.colored {
		prefix = ErrorStyle.Render("Error: ")
	}
	return prefix + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	if f.colored {
		return InfoStyle.Render(info)
	}
	return info
}

func (f *Formatter) FormatSystem(msg string) string {
	if f.colored {
		return SystemStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) FormatSuccess(msg string) string {
	if f.colored {
		return SuccessStyle.Render(msg)
	}
	return msg
}

// FormatStatus renders a goal status message, class is success or warning.
func (f *Formatter) FormatStatus(class, msg string) string {
	if !f.colored {
		return msg
	}
	if class == "success" {
		return SuccessStyle.Render(msg)
	}
	return WarningStyle.Render(msg)
}

// FormatProgress renders a labelled progress bar capped at 100%.
func (f *Formatter) FormatProgress(label string, pct int) string {
	filled := pct * barWidth / 100
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	if f.colored {
		style := WarningStyle
		if pct >= 80 {
			style = SuccessStyle
		}
		bar = style.Render(bar)
		label = DimStyle.Render(label)
	}
	return fmt.Sprintf("%-10s %s %3d%%", label, bar, pct)
}

func (f *Formatter) FormatWelcome(profile string) string {
	if profile == "" {
		profile = "no active profile"
	}

	if f.colored {
		// Build welcome box
		topBorder := BorderStyle.Render("╭─────────────────────────────────────────╮")
		bottomBorder := BorderStyle.Render("╰─────────────────────────────────────────╯")
		sideBorder := BorderStyle.Render("│")

		title := HeaderStyle.Render("FitTrack")
		profileLine := DimStyle.Render("Profile: ") + SuccessStyle.Render(profile)
		helpLine := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("Type /help for commands")

		// Pad lines to fit box
		padLine := func(content string, width int) string {
			contentLen := lipgloss.Width(content)
			if contentLen < width {
				return content + strings.Repeat(" ", width-contentLen)
			}
			return content
		}

		boxWidth := 39
		lines := []string{
			"",
			topBorder,
			sideBorder + " " + padLine(title, boxWidth) + " " + sideBorder,
			sideBorder + " " + padLine(profileLine, boxWidth) + " " + sideBorder,
			sideBorder + " " + padLine("", boxWidth) + " " + sideBorder,
			sideBorder + " " + padLine(helpLine, boxWidth) + " " + sideBorder,
			bottomBorder,
			"",
		}

		return strings.Join(lines, "\n")
	}

	// Plain text fallback
	lines := []string{
		"",
		"FitTrack",
		fmt.Sprintf("Profile: %s", profile),
		"Type /help for commands",
		"",
	}

	return strings.Join(lines, "\n")
}

var helpSections = []struct {
	title    string
	commands [][2]string
}{
	{"Profiles", [][2]string{
		{"/profile", "Show the active profile"},
		{"/profile new key=value...", "Create a profile (name, email, age, height, weight, goal, activity)"},
		{"/profiles", "List profiles"},
		{"/use <id|name>", "Switch the active profile"},
	}},
	{"Logging", [][2]string{
		{"/food <kcal> <name>", "Log a food"},
		{"/exercise <min> [kcal] <name>", "Log an exercise (kcal estimated when omitted)"},
		{"/remove food|exercise <n>", "Remove today's n-th food or exercise"},
		{"/water [liters]", "Log water (default one 250ml glass)"},
		{"/habit", "List habits"},
		{"/habit add positive|negative <name>", "Define a habit"},
		{"/habit done|undo <id|name>", "Mark a habit for today"},
		{"/habit rm <id|name>", "Stop tracking a habit"},
	}},
	{"Reports", [][2]string{
		{"/today", "Today's report"},
		{"/week", "Last seven days"},
	}},
	{"General", [][2]string{
		{"/help", "Show this help"},
		{"/quit", "Exit"},
	}},
}

func (f *Formatter) FormatHelp() string {
	lines := []string{""}

	if f.colored {
		cmdStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
		descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
		sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("147")).Bold(true)

		lines = append(lines, HeaderStyle.Render("Commands"), "")
		for _, s := range helpSections {
			lines = append(lines, sectionStyle.Render(s.title))
			for _, c := range s.commands {
				lines = append(lines, "  "+cmdStyle.Render(c[0])+" "+descStyle.Render(c[1]))
			}
			lines = append(lines, "")
		}
		lines = append(lines, DimStyle.Render("  Ctrl+C or Ctrl+D to exit"), "")
		return strings.Join(lines, "\n")
	}

	// Plain text fallback
	lines = append(lines, "Commands:")
	for _, s := range helpSections {
		for _, c := range s.commands {
			lines = append(lines, fmt.Sprintf("  %-38s - %s", c[0], c[1]))
		}
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

// FormatPrompt returns a styled input prompt
func (f *Formatter) FormatPrompt(profile string) string {
	if profile == "" {
		profile = "fittrack"
	}
	if f.colored {
		arrowStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Bold(true)
		return BorderStyle.Render(profile) + arrowStyle.Render(" > ")
	}
	return profile + " > "
}

// FormatBox wraps content in a styled box
func (f *Formatter) FormatBox(title, content string) string {
	if f.colored {
		borderStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

		return HeaderStyle.Render(title) + "\n" + borderStyle.Render(content)
	}
	return title + "\n" + content
}

// RenderMarkdown renders markdown for the terminal. Without colors, or when
// rendering fails, the markdown is returned as is.
func (f *Formatter) RenderMarkdown(content string) string {
	if !f.colored {
		return content
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimSpace(rendered)
}
