// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"io"
	"os"
	"path"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ava-labs/musicvm/config"
)

const loggerName = "music-cli"

// newLogger writes to stderr (unless [quiet]) and, when [cfg] names a log
// directory, to a rotating file in it.
func newLogger(cfg *config.Config, quiet bool) (logging.Logger, io.Closer, error) {
	level, err := cfg.GetLogLevel()
	if err != nil {
		return nil, nil, err
	}

	var consoleWriter io.WriteCloser = os.Stderr
	if quiet {
		consoleWriter = discardWriteCloser{io.Discard}
	}
	consoleCore := logging.NewWrappedCore(level, consoleWriter, logging.Colors.ConsoleEncoder())
	consoleCore.WriterDisabled = quiet
	if len(cfg.LogDir) == 0 {
		return logging.NewLogger(loggerName, consoleCore), discardWriteCloser{}, nil
	}

	rw := &lumberjack.Logger{
		Filename:   path.Join(cfg.LogDir, loggerName+".log"),
		MaxSize:    8, // megabytes
		MaxAge:     7, // days
		MaxBackups: 3, // files
		Compress:   true,
	}
	fileCore := logging.NewWrappedCore(level, rw, logging.JSON.FileEncoder())
	return logging.NewLogger(loggerName, consoleCore, fileCore), rw, nil
}

type discardWriteCloser struct {
	io.Writer
}

// Close implements the io.Closer interface.
func (discardWriteCloser) Close() error {
	return nil
}
