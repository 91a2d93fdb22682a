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

// Package presence answers one question: which of the registry's executables
// are currently running? One OS process scan covers all targets, and a process
// that can't be inspected (permissions, exited mid-scan) is skipped rather
// than failing the whole snapshot.
package presence

import (
	"context"
	"fmt"
	"strings"

	"github.com/PlunderProject/plunder-core/pkg/helpers"
	"github.com/shirou/gopsutil/v4/process"
)

// Set is the subset of target paths observed running, keyed by normalized
// path. No ordering guarantee.
type Set map[string]struct{}

// Contains reports whether the given executable path was observed running.
func (s Set) Contains(path string) bool {
	_, ok := s[helpers.NormalizePath(path)]
	return ok
}

// Detector enumerates OS processes via gopsutil. Read-only, no side effects.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

type processInfo struct {
	exe     string
	cmdline string
}

// osProcess is the slice of gopsutil's process handle the detector inspects.
type osProcess interface {
	ExeWithContext(ctx context.Context) (string, error)
	CmdlineWithContext(ctx context.Context) (string, error)
}

// listProcesses enumerates running OS processes. A variable so tests can
// substitute a canned process list.
var listProcesses = func(ctx context.Context) ([]osProcess, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]osProcess, len(procs))
	for i, p := range procs {
		out[i] = p
	}
	return out, nil
}

// Snapshot returns which of the target executable paths currently have a
// matching OS process. Matching is case-insensitive on the normalized exe
// path, with a cmdline substring fallback for launchers that re-exec.
func (*Detector) Snapshot(ctx context.Context, targets []string) (Set, error) {
	procs, err := listProcesses(ctx)
	if err != nil {
		return nil, fmt.Errorf("error enumerating processes: %w", err)
	}

	infos := make([]processInfo, 0, len(procs))
	for _, p := range procs {
		exe, err := p.ExeWithContext(ctx)
		if err != nil {
			// permission denied or the process exited mid-scan
			continue
		}
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil {
			cmdline = ""
		}
		infos = append(infos, processInfo{exe: exe, cmdline: cmdline})
	}

	return classify(infos, targets), nil
}

// classify matches a scanned process list against target paths. Split out
// from Snapshot so the matching rules are testable without an OS.
func classify(procs []processInfo, targets []string) Set {
	// cmdlines get the same separator and case treatment as target paths so
	// the substring fallback works on Windows command lines too
	cmdlines := make([]string, len(procs))
	for i := range procs {
		cmdlines[i] = strings.ToLower(strings.ReplaceAll(procs[i].cmdline, "\\", "/"))
	}

	running := make(Set)
	for _, target := range targets {
		norm := helpers.NormalizePath(target)
		for i := range procs {
			if helpers.NormalizePath(procs[i].exe) == norm {
				running[norm] = struct{}{}
				break
			}
			if cmdlines[i] != "" && strings.Contains(cmdlines[i], norm) {
				running[norm] = struct{}{}
				break
			}
		}
	}
	return running
}
