package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the controller's palette.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Faint   lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeNight = Theme{
		Name:    "night",
		Primary: lipgloss.Color("86"),
		Text:    lipgloss.Color("255"),
		Muted:   lipgloss.Color("242"),
		Faint:   lipgloss.Color("238"),
		Accent:  lipgloss.Color("213"),
		Success: lipgloss.Color("82"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("203"),
	}

	// ThemeSodium follows the orange of high-pressure sodium street lamps.
	ThemeSodium = Theme{
		Name:    "sodium",
		Primary: lipgloss.Color("#ffb347"),
		Text:    lipgloss.Color("#fff2dc"),
		Muted:   lipgloss.Color("#a07850"),
		Faint:   lipgloss.Color("#5a4330"),
		Accent:  lipgloss.Color("#ffc040"),
		Success: lipgloss.Color("#e8d36b"),
		Warning: lipgloss.Color("#ff8c00"),
		Error:   lipgloss.Color("#ff4757"),
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#00aa00"),
		Faint:   lipgloss.Color("#005500"),
		Accent:  lipgloss.Color("#88ff88"),
		Success: lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Faint:   lipgloss.Color("#555555"),
		Accent:  lipgloss.Color("#0088ff"),
		Success: lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeNight, ThemeSodium, ThemeRetroGreen, ThemeMinimal}
)

func GetTheme(name string) (Theme, bool) {
	for _, t := range Themes {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// SetTheme restyles the controller. It must be called before Run.
func SetTheme(name string) error {
	t, ok := GetTheme(name)
	if !ok {
		return fmt.Errorf("unknown theme: %s (available: %v)", name, ThemeNames())
	}
	applyTheme(t)
	return nil
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func applyTheme(t Theme) {
	cyan = lipgloss.NewStyle().Foreground(t.Primary)
	white = lipgloss.NewStyle().Foreground(t.Text)
	dim = lipgloss.NewStyle().Foreground(t.Muted)
	dimmer = lipgloss.NewStyle().Foreground(t.Faint)
	magenta = lipgloss.NewStyle().Foreground(t.Accent)
	green = lipgloss.NewStyle().Foreground(t.Success)
	yellow = lipgloss.NewStyle().Foreground(t.Warning)
	red = lipgloss.NewStyle().Foreground(t.Error)
}
