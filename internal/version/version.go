// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Unknown is reported for fields that were not injected at build time.
const Unknown = "unknown"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string `json:"version"`    // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string `json:"git_commit"` // Short git commit hash (e.g., "abc1234")
	BuildTime string `json:"build_time"` // Build timestamp in RFC3339 format
}

// New returns Info with empty fields replaced by Unknown, except an empty
// version which becomes "dev".
func New(ver, commit, built string) Info {
	if ver == "" {
		ver = "dev"
	}
	if commit == "" {
		commit = Unknown
	}
	if built == "" {
		built = Unknown
	}
	return Info{Version: ver, GitCommit: commit, BuildTime: built}
}

// String formats the info the way -version prints it.
func (i Info) String() string {
	return fmt.Sprintf("library %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildTime)
}
