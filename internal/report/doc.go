// Package report collects a repository summary through the gitrepo facade and
// renders it as colorized, human-readable text.
//
// The Collector gathers every section of the summary, downgrading only the
// configured user and the branch lookup to explicit "unknown" values. The
// Renderer prints the sections in a fixed order using lipgloss styles whose
// color profile follows the configured ColorMode.
package report
