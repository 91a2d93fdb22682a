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

package reconcile

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// NameMatcher decides whether a local registry name refers to the same title
// as an external source name, after exact matching has already failed. It is
// a best-effort compatibility layer; new alias rules go here, not into the
// merge algorithm.
type NameMatcher interface {
	Match(local, source string) bool
}

// fuzzyMinSimilarity is the Jaro-Winkler floor for the fuzzy fallback.
// Jaro-Winkler weights matching prefixes heavily, which suits game titles
// where users typically get the start right.
const fuzzyMinSimilarity = 0.93

// aliasGroups are families of names that refer to the same title. A name
// containing any member of a group matches any name containing another
// member of the same group.
var aliasGroups = [][]string{
	{"counter-strike", "counter strike", "cs2", "cs:go", "csgo"},
}

// DefaultMatcher applies the known alias heuristics, then a Jaro-Winkler
// fuzzy fallback.
type DefaultMatcher struct{}

func NewDefaultMatcher() *DefaultMatcher {
	return &DefaultMatcher{}
}

func (*DefaultMatcher) Match(local, source string) bool {
	l := normalizeName(local)
	s := normalizeName(source)
	if l == s {
		return true
	}

	for _, group := range aliasGroups {
		if inGroup(l, group) && inGroup(s, group) {
			return true
		}
	}

	return edlib.JaroWinklerSimilarity(l, s) >= fuzzyMinSimilarity
}

func inGroup(name string, group []string) bool {
	for _, alias := range group {
		if strings.Contains(name, normalizeName(alias)) {
			return true
		}
	}
	return false
}

// normalizeName lowercases and strips punctuation so "CS:GO" and "csgo"
// compare equal.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
