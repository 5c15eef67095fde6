/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	loggerNameSeparator = "."
	rootLoggerName      = "tokenbank"
)

// Logger provides logging API
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	IsEnabledFor(level zapcore.Level) bool
	Named(name string) Logger
	With(args ...interface{}) Logger
	Zap() *zap.Logger
}

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	root  = zap.New(newCore(zapcore.Lock(os.Stderr)), zap.AddCaller())
)

// MustGetLogger returns a logger whose name is the concatenation of the passed names.
func MustGetLogger(names ...string) Logger {
	return NewLogger(root.Named(loggerName(append([]string{rootLoggerName}, names...)...)))
}

// NewLogger wraps the passed zap logger
func NewLogger(l *zap.Logger) Logger {
	return &logger{SugaredLogger: l.Sugar()}
}

// SetLevel changes the level of every logger, including those created before the call.
func SetLevel(lvl string) error {
	l, err := zapcore.ParseLevel(lvl)
	if err != nil {
		return errors.Wrapf(err, "invalid logging level [%s]", lvl)
	}
	level.SetLevel(l)
	return nil
}

// Level returns the level enabler shared by all the loggers of this package
func Level() zap.AtomicLevel {
	return level
}

func newCore(ws zapcore.WriteSyncer) zapcore.Core {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), ws, level)
}

type logger struct {
	*zap.SugaredLogger
}

func (l *logger) IsEnabledFor(level zapcore.Level) bool {
	return l.Desugar().Core().Enabled(level)
}

func (l *logger) Named(name string) Logger {
	return &logger{SugaredLogger: l.SugaredLogger.Named(name)}
}

func (l *logger) With(args ...interface{}) Logger {
	return &logger{SugaredLogger: l.SugaredLogger.With(args...)}
}

func (l *logger) Zap() *zap.Logger {
	return l.Desugar()
}

func isEmptyString(s string) bool { return len(s) == 0 }

func loggerName(parts ...string) string {
	return strings.Join(slices.DeleteFunc(parts, isEmptyString), loggerNameSeparator)
}
