package preflight

import (
	"annodocs/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed counts the results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}

// RunAll executes every check that applies to cfg. Directory files and the
// template override are only checked when configured.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDocument(cfg.Paths.Document))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if cfg.Directories.Speakers != "" {
		results = append(results, CheckSpeakers(cfg.Directories.Speakers))
	}
	if cfg.Directories.Authors != "" {
		results = append(results, CheckAuthors(cfg.Directories.Authors))
	}
	results = append(results, CheckTemplates(cfg.Render.TemplatesDir))
	return results
}
