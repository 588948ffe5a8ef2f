// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var logger atomic.Value

func init() {
	logger.Store(logrus.FieldLogger(logrus.StandardLogger()))
}

// SetLogger replaces the logger used by the renderer. Passing nil restores
// the logrus standard logger.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	logger.Store(l)
}

func log(component string) logrus.FieldLogger {
	return logger.Load().(logrus.FieldLogger).WithField("component", component)
}
