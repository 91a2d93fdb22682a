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

package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "windows style lowered and slashed",
			in:   `C:\Games\Quake\quake.EXE`,
			want: "c:/games/quake/quake.exe",
		},
		{
			name: "redundant separators cleaned",
			in:   "/Games//Quake/./quake-bin",
			want: "/games/quake/quake-bin",
		},
		{
			name: "already normalized",
			in:   "/games/quake/quake-bin",
			want: "/games/quake/quake-bin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizePath(tt.in))
		})
	}
}

func TestNormalizePathAgreesAcrossStyles(t *testing.T) {
	t.Parallel()

	// registry duplicate checks and presence matching rely on this agreement
	assert.Equal(t,
		NormalizePath(`\games\quake\QUAKE-BIN`),
		NormalizePath("/games/quake/quake-bin"))
}

func TestSanitizeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Half-Life_2_Ep.1", SanitizeName("Half-Life 2: Ep.1"))
	assert.Equal(t, "Portal_2", SanitizeName("  Portal 2  "))
	assert.Equal(t, "", SanitizeName("???"))
}
