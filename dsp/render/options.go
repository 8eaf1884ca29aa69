package render

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fx/dsp/effectchain"
)

// Option configures a render.
type Option func(*config) error

type config struct {
	log       logrus.FieldLogger
	chainOpts []effectchain.Option
}

func defaultConfig() config {
	return config{log: logrus.StandardLogger()}
}

// WithLogger sets the logger for render lifecycle events. The chain
// builder logs through the same logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(cfg *config) error {
		if log == nil {
			return errors.New("render: nil logger")
		}

		cfg.log = log

		return nil
	}
}

// WithChainOptions passes options to the effect chain builder. Use the
// same options as the live chain to reproduce its output.
func WithChainOptions(opts ...effectchain.Option) Option {
	return func(cfg *config) error {
		cfg.chainOpts = append(cfg.chainOpts, opts...)
		return nil
	}
}
