package session

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-fx/dsp/effectchain"
)

// Option configures a Session.
type Option func(*config) error

type config struct {
	log       logrus.FieldLogger
	chainOpts []effectchain.Option
}

func defaultConfig() config {
	return config{log: logrus.StandardLogger()}
}

// WithLogger sets the session logger. The live chain and exports log
// through it too.
func WithLogger(log logrus.FieldLogger) Option {
	return func(cfg *config) error {
		if log == nil {
			return errors.New("session: nil logger")
		}

		cfg.log = log

		return nil
	}
}

// WithChainOptions configures the live chain and every export with the
// same builder options.
func WithChainOptions(opts ...effectchain.Option) Option {
	return func(cfg *config) error {
		cfg.chainOpts = append(cfg.chainOpts, opts...)
		return nil
	}
}
