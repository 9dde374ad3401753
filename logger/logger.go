/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package logger provides the structured logger used across the
// balancer: leveled entries with attached fields, backed by logrus the
// same way the wider module's logger package is.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	loglvl "github.com/zhangjinde/cerver/logger/level"
)

// Fields attaches structured key/value context to a single log entry.
type Fields map[string]interface{}

// Logger is a small leveled logging facade. message is a static string;
// fields carries structured context (e.g. service name, fd, byte
// counts).
type Logger interface {
	Debug(message string, fields Fields)
	Info(message string, fields Fields)
	Warning(message string, fields Fields)
	Error(message string, fields Fields)

	// SetLevel changes the minimum level that reaches the output.
	SetLevel(lvl loglvl.Level)
	// GetLevel returns the current minimum level.
	GetLevel() loglvl.Level
}

type logger struct {
	lr *logrus.Logger
}

// New builds a Logger writing to out at the given minimum level. A nil
// out defaults to os.Stderr.
func New(lvl loglvl.Level, out io.Writer) Logger {
	if out == nil {
		out = os.Stderr
	}
	lr := logrus.New()
	lr.SetOutput(out)
	lr.SetLevel(lvl.Logrus())
	lr.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &logger{lr: lr}
}

func (l *logger) entry(fields Fields) *logrus.Entry {
	if len(fields) == 0 {
		return logrus.NewEntry(l.lr)
	}
	return l.lr.WithFields(logrus.Fields(fields))
}

func (l *logger) Debug(message string, fields Fields)   { l.entry(fields).Debug(message) }
func (l *logger) Info(message string, fields Fields)    { l.entry(fields).Info(message) }
func (l *logger) Warning(message string, fields Fields) { l.entry(fields).Warning(message) }
func (l *logger) Error(message string, fields Fields)   { l.entry(fields).Error(message) }

func (l *logger) SetLevel(lvl loglvl.Level) { l.lr.SetLevel(lvl.Logrus()) }
func (l *logger) GetLevel() loglvl.Level {
	switch l.lr.GetLevel() {
	case logrus.PanicLevel:
		return loglvl.PanicLevel
	case logrus.FatalLevel:
		return loglvl.FatalLevel
	case logrus.ErrorLevel:
		return loglvl.ErrorLevel
	case logrus.WarnLevel:
		return loglvl.WarnLevel
	case logrus.DebugLevel, logrus.TraceLevel:
		return loglvl.DebugLevel
	default:
		return loglvl.InfoLevel
	}
}

// Nop is a Logger that discards everything, used as the zero value
// wherever a caller doesn't configure one.
func Nop() Logger {
	return New(loglvl.NilLevel, io.Discard)
}
