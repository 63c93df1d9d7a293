// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Set via -ldflags "-X github.com/olegiv/blogdesk/internal/version.version=..."
var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string `json:"version"`    // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string `json:"git_commit"` // Short git commit hash (e.g., "abc1234")
	BuildTime string `json:"build_time"` // Build timestamp in RFC3339 format
}

// Get returns the version information of the running binary.
func Get() Info {
	return Info{Version: version, GitCommit: gitCommit, BuildTime: buildTime}
}

// String formats the information for the -v flag.
func (i Info) String() string {
	return fmt.Sprintf("blogdesk %s (commit %s, built %s)", i.Version, i.GitCommit, i.BuildTime)
}
