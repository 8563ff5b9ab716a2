package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/brackeen/mal"
)

var statusStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

func newPlayCmd() *cobra.Command {
	var frequency float64
	var durationSeconds float64
	var loop bool
	var watch bool

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Generate and play a demo tone through the mal engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadPlayConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cmd.Flags().Changed("frequency") {
				cfg.FrequencyHz = frequency
			}
			if cmd.Flags().Changed("loop") {
				cfg.Loop = loop
			}

			return runPlay(cfg, durationSeconds, watch)
		},
	}

	cmd.Flags().Float64Var(&frequency, "frequency", 440, "tone frequency in Hz")
	cmd.Flags().Float64Var(&durationSeconds, "duration", 2, "playback duration in seconds (0 with --loop plays until interrupted)")
	cmd.Flags().BoolVar(&loop, "loop", false, "loop the tone instead of playing it once")
	cmd.Flags().BoolVar(&watch, "watch-config", false, fmt.Sprintf("live-reload gain/loop from %s while playing", configFilePath()))
	return cmd
}

func runPlay(cfg playConfig, durationSeconds float64, watch bool) error {
	ctx, err := mal.Create(44100, nil)
	if err != nil {
		return fmt.Errorf("opening audio context: %w", err)
	}
	defer ctx.Free()

	format := mal.Format{SampleRate: ctx.SampleRate(), BitDepth: 16, NumChannels: 1}
	numFrames := int(format.SampleRate * 2) // a couple of seconds of tone, looped if requested
	data := sineTone(format, cfg.FrequencyHz, numFrames)

	buf, err := ctx.CreateCopied(format, numFrames, data)
	if err != nil {
		return fmt.Errorf("creating buffer: %w", err)
	}
	defer buf.Free()

	player, err := ctx.CreatePlayer(format)
	if err != nil {
		return fmt.Errorf("creating player: %w", err)
	}
	defer player.Free()

	if err := player.SetBuffer(buf); err != nil {
		return fmt.Errorf("attaching buffer: %w", err)
	}
	player.SetGain(cfg.Gain)
	player.SetLooping(cfg.Loop)

	fmt.Println(statusStyle.Render(fmt.Sprintf(
		"playing %.0fHz tone (%s, %s buffer, loop=%v, gain=%.2f)",
		cfg.FrequencyHz, format.String(), humanize.Bytes(uint64(len(data))), cfg.Loop, cfg.Gain,
	)))

	if watch {
		stop, err := watchConfig(func(updated playConfig) {
			log.Info("malplay: config changed", "gain", updated.Gain, "loop", updated.Loop)
			player.SetGain(updated.Gain)
			player.SetLooping(updated.Loop)
		})
		if err != nil {
			log.Warn("malplay: could not watch config for live reload", "error", err)
		} else {
			defer stop()
		}
	}

	finished := make(chan struct{}, 1)
	player.SetFinishedFunc(func(*mal.Player) {
		select {
		case finished <- struct{}{}:
		default:
		}
	})

	if !player.SetState(mal.Playing) {
		return fmt.Errorf("failed to start playback")
	}

	var timeout <-chan time.Time
	if durationSeconds > 0 {
		timeout = time.After(time.Duration(durationSeconds * float64(time.Second)))
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-finished:
		case <-timeout:
		}
		close(done)
	}()

	waitOrInterrupt(done, func() {
		player.SetState(mal.Stopped)
	})

	fmt.Println(statusStyle.Render("done"))
	return nil
}

// waitOrInterrupt blocks until done closes or the process receives an
// interrupt signal, in which case it calls onInterrupt and returns
// immediately instead of waiting for done.
func waitOrInterrupt(done <-chan struct{}, onInterrupt func()) {
	interrupted := make(chan struct{})
	go waitForInterrupt(func() {
		onInterrupt()
		close(interrupted)
	})
	select {
	case <-done:
	case <-interrupted:
	}
}
