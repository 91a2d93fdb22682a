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

// Package launcher starts game executables. The core knows nothing about the
// child beyond its handle; session tracking is driven by presence detection,
// not by this handle.
package launcher

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Handle is a started game process.
type Handle struct {
	cmd *exec.Cmd
}

// PID returns the child's process id.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Wait blocks until the process exits. A non-zero exit status is not an
// error from the launcher's point of view.
func (h *Handle) Wait() error {
	err := h.cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Debug().Int("code", exitErr.ExitCode()).Msg("launcher: game exited non-zero")
			return nil
		}
		return fmt.Errorf("error waiting for game process: %w", err)
	}
	return nil
}

// Launch starts the executable with its own directory as working dir, the
// way most games expect.
func Launch(path string) (*Handle, error) {
	cmd := exec.Command(path) // #nosec G204 - path comes from the user's registry
	cmd.Dir = filepath.Dir(path)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("error launching %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("pid", cmd.Process.Pid).Msg("launcher: game started")
	return &Handle{cmd: cmd}, nil
}
