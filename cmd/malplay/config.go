package main

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	homedir "github.com/mitchellh/go-homedir"
	apppaths "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// playConfig holds the handful of knobs the play subcommand exposes,
// layered the way the teacher's deleted tts/config_loader.go layered
// its own config: defaults, then an on-disk file under the user's app
// config directory, then environment variables, in increasing
// precedence.
type playConfig struct {
	FrequencyHz float64 `env:"MALPLAY_FREQUENCY_HZ"`
	Gain        float64 `env:"MALPLAY_GAIN"`
	Loop        bool    `env:"MALPLAY_LOOP"`
}

func defaultPlayConfig() playConfig {
	return playConfig{FrequencyHz: 440, Gain: 1, Loop: false}
}

// configDir resolves the platform-appropriate config directory for
// malplay, preferring go-app-paths' XDG-aware resolution and falling
// back to the user's home directory if that fails.
func configDir() string {
	scope := apppaths.NewScope(apppaths.User, "malplay")
	if dir, err := scope.ConfigPath(""); err == nil && dir != "" {
		return filepath.Dir(dir)
	}
	home, err := homedir.Dir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".malplay")
}

func configFilePath() string {
	return filepath.Join(configDir(), "malplay.yaml")
}

// loadPlayConfig reads malplay.yaml (if present) via viper, then
// overlays environment variables via caarlos0/env, matching the
// teacher's own file-then-env precedence.
func loadPlayConfig() (playConfig, error) {
	cfg := defaultPlayConfig()

	v := viper.New()
	v.SetConfigFile(configFilePath())
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err == nil {
		if v.IsSet("frequency_hz") {
			cfg.FrequencyHz = v.GetFloat64("frequency_hz")
		}
		if v.IsSet("gain") {
			cfg.Gain = v.GetFloat64("gain")
		}
		if v.IsSet("loop") {
			cfg.Loop = v.GetBool("loop")
		}
	} else if !os.IsNotExist(err) {
		log.Warn("malplay: error reading config file", "path", configFilePath(), "error", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// watchConfig watches the config file for changes and invokes onChange
// with the freshly reloaded config whenever it is written. It is used
// by the play subcommand to demonstrate live gain/loop updates while a
// tone is playing. Watch failures (e.g. the file doesn't exist yet)
// are logged and swallowed; live reload is a nicety, not a requirement.
func watchConfig(onChange func(playConfig)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(configDir()); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(configFilePath()) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := loadPlayConfig()
				if err != nil {
					log.Warn("malplay: failed to reload config", "error", err)
					continue
				}
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("malplay: config watcher error", "error", err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
