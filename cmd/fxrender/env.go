package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-fx/dsp/effectchain"
)

const (
	envLogLevel    = "FXRENDER_LOG_LEVEL"
	envSeed        = "FXRENDER_SEED"
	envCrusherMode = "FXRENDER_CRUSHER_MODE"
)

// settings are the process-wide defaults read from the environment.
type settings struct {
	logLevel    logrus.Level
	seed        uint64
	crusherMode effectchain.CrusherMode
}

var env settings

func loadEnv(*cobra.Command, []string) error {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	setEnvDefault(envLogLevel, "info")
	setEnvDefault(envSeed, strconv.FormatUint(effectchain.DefaultSeed, 10))
	setEnvDefault(envCrusherMode, "inline")

	s, err := parseSettings(os.Getenv)
	if err != nil {
		return err
	}

	env = s
	logrus.SetLevel(s.logLevel)
	logrus.WithFields(logrus.Fields{
		"level":       s.logLevel.String(),
		"seed":        s.seed,
		"crusherMode": s.crusherMode.String(),
	}).Debug("environment loaded")

	return nil
}

func setEnvDefault(key, value string) {
	if os.Getenv(key) == "" {
		_ = os.Setenv(key, value)
	}
}

func parseSettings(getenv func(string) string) (settings, error) {
	level, err := logrus.ParseLevel(strings.TrimSpace(getenv(envLogLevel)))
	if err != nil {
		return settings{}, fmt.Errorf("%s: %w", envLogLevel, err)
	}

	seed, err := strconv.ParseUint(strings.TrimSpace(getenv(envSeed)), 0, 64)
	if err != nil {
		return settings{}, fmt.Errorf("%s: %w", envSeed, err)
	}

	mode, err := effectchain.ParseCrusherMode(getenv(envCrusherMode))
	if err != nil {
		return settings{}, fmt.Errorf("%s: %w", envCrusherMode, err)
	}

	return settings{logLevel: level, seed: seed, crusherMode: mode}, nil
}

func (s settings) chainOptions() []effectchain.Option {
	return []effectchain.Option{
		effectchain.WithSeed(s.seed),
		effectchain.WithCrusherMode(s.crusherMode),
		effectchain.WithLogger(logrus.StandardLogger()),
	}
}
