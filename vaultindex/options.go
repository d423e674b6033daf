package vaultindex

import (
	"github.com/sirupsen/logrus"
)

type options struct {
	logger logrus.FieldLogger
	open   openFunc
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger used for recovery warnings and debug traces.
//
// If nil is passed, the logrus standard logger is used.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l == nil {
			l = logrus.StandardLogger()
		}
		o.logger = l
	}
}

// withOpenFunc replaces the function opening the backing file. Tests use it
// to inject faults.
func withOpenFunc(fn openFunc) Option {
	return func(o *options) {
		o.open = fn
	}
}

func defaultOptions() options {
	return options{
		logger: logrus.StandardLogger(),
		open:   openOSFile,
	}
}
