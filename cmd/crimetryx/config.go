package main

import (
	"os"
	"path/filepath"

	"github.com/crimetryx/crimetryx/internal/envstruct"
	"github.com/crimetryx/crimetryx/internal/errors"
)

// Operating modes. Auto prefers the live backend and falls back to the
// offline store when the backend is unreachable; live never falls back;
// offline never touches the network.
const (
	modeAuto    = "auto"
	modeLive    = "live"
	modeOffline = "offline"
)

type config struct {
	APIURL       string `env:"CRIMETRYX_API_URL" envDefault:"http://localhost:5000"`
	DataDir      string `env:"CRIMETRYX_DATA_DIR" envDefault:""`
	Mode         string `env:"CRIMETRYX_MODE" envDefault:"auto"`
	OpenAIAPIKey string `env:"CRIMETRYX_OPENAI_API_KEY" envDefault:""`
	LogLevel     string `env:"CRIMETRYX_LOG_LEVEL" envDefault:"info"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := envstruct.Populate(&cfg, os.LookupEnv); err != nil {
		return config{}, errors.Wrap(err, "populate config")
	}

	switch cfg.Mode {
	case modeAuto, modeLive, modeOffline:
	default:
		return config{}, errors.New("CRIMETRYX_MODE must be auto, live or offline")
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config{}, errors.Wrap(err, "resolve home directory")
		}
		cfg.DataDir = filepath.Join(home, ".crimetryx")
	}
	return cfg, nil
}
