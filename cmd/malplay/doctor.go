package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/brackeen/mal/internal/backend"
)

// okStyle and warnStyle adapt their foreground color to the terminal's
// background lightness, detected via termenv, rather than assuming a
// dark terminal the way a fixed ANSI color index would.
var (
	okStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{
		Light: "22", Dark: "10",
	})
	warnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{
		Light: "130", Dark: "11",
	})
	keyStyle = lipgloss.NewStyle().Faint(true)
)

func init() {
	lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
}

// newDoctorCmd reports which backend policy and voice pool shape this
// platform would select, without actually opening the audio device.
// Adapted from the teacher's deleted pkg/tts/dependencies.go
// DependencyChecker/PrintReport pattern: a short, colorized diagnostic
// report rather than an interactive command.
func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report the audio backend policy this platform would select",
		RunE: func(cmd *cobra.Command, args []string) error {
			runDoctor()
			return nil
		},
	}
}

func runDoctor() {
	os := backend.DetectOS()
	policy := backend.PolicyFor(os)

	line := func(label string, value string) {
		fmt.Printf("%-24s %s\n", keyStyle.Render(label), value)
	}

	line("platform", string(os))
	line("backend policy", policy.Name)
	line("initial buses", fmt.Sprintf("%d", policy.InitialBuses))
	maxBuses := "unbounded"
	if policy.MaxBuses > 0 {
		maxBuses = fmt.Sprintf("%d", policy.MaxBuses)
	}
	line("max buses", maxBuses)
	line("reclaims voices on deactivate", fmt.Sprintf("%v", policy.ReclaimVoicesOnDeactivate))
	line("preferred sample rate", fmt.Sprintf("%.0f Hz", policy.PreferredSampleRate))

	if backend.IsCI() {
		fmt.Println(warnStyle.Render("CI environment detected: malplay will use the mock backend, no audio will play"))
	} else {
		fmt.Println(okStyle.Render("real backend will be attempted"))
	}
}
