// Plunder Core
// Copyright (c) 2026 The Plunder Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Plunder Core.
//
// Plunder Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Plunder Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Plunder Core.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/PlunderProject/plunder-core/pkg/config"
	"github.com/PlunderProject/plunder-core/pkg/helpers"
	"github.com/PlunderProject/plunder-core/pkg/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	daemonMode := flag.Bool(
		"daemon",
		false,
		"run service in foreground, logging to stderr",
	)
	debugLogging := flag.Bool(
		"debug",
		false,
		"enable debug logging",
	)
	showVersion := flag.Bool(
		"version",
		false,
		"print version and exit",
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("plunder-core %s\n", version)
		return nil
	}

	var logWriters []io.Writer
	if *daemonMode {
		logWriters = []io.Writer{os.Stderr}
	}
	if err := helpers.InitLogging(logWriters); err != nil {
		return fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), config.BaseDefaults)
	if err != nil {
		return err
	}
	helpers.SetDebugLogging(*debugLogging || cfg.DebugLogging())

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.Watch(ctx); err != nil {
		log.Warn().Err(err).Msg("config watcher unavailable, live reload disabled")
	}

	svc, err := service.New(cfg, afero.NewOsFs(),
		helpers.DataDir(), helpers.CacheDir(), nil)
	if err != nil {
		return fmt.Errorf("error creating service: %w", err)
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("error starting service: %w", err)
	}

	log.Info().Str("version", version).Msg("plunder core running")
	<-ctx.Done()

	svc.Stop()
	return nil
}
