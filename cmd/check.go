package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/carekiosk/kiosk/constant"
	"github.com/carekiosk/kiosk/icon"
	"github.com/carekiosk/kiosk/style"
	"github.com/charmbracelet/lipgloss"
)

// CheckDependencies exits with install hints when the mpv binary cannot be found.
func CheckDependencies(binary string) {
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}
}

func installHint() string {
	switch runtime.GOOS {
	case constant.Darwin:
		return "brew install mpv"
	case constant.Linux:
		return "sudo apt install mpv"
	case constant.Windows:
		return "scoop install mpv"
	default:
		return ""
	}
}

func printMissingDependencyError(dep string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.Danger).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.Danger).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The playback binary '%s' was not found in your PATH.", dep))

	suggestion := fmt.Sprintf("\n\nSet %s, or switch to the browser backend with %s",
		style.New().Foreground(style.Accent).Render("player.mpv_binary"),
		style.New().Foreground(style.Accent).Render("--backend browser"))
	if hint := installHint(); hint != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.Accent).Bold(true).Render(hint)) + suggestion
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
