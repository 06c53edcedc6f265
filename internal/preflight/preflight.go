package preflight

import (
	"context"
	"path/filepath"

	"nowplaying/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the filesystem checks and, when probeNetwork is set, the
// lyrics service check.
func RunAll(ctx context.Context, cfg *config.Config, probeNetwork bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Memory directory", filepath.Dir(cfg.Memory.Path)),
	}
	if probeNetwork {
		results = append(results, CheckLyricsService(ctx, cfg.Lyrics.BaseURL, cfg.Lyrics.UserAgent))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
