package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/gitreport/internal/gitrepo"
)

const (
	remoteSeparatorConstant          = " -> "
	userLabelConstant                = "user"
	userAssignmentConstant           = " = "
	missingUserConstant              = "None"
	unknownBranchConstant            = "unknown branch"
	stateSuffixSeparatorConstant     = " | "
	stagedLabelConstant              = "staged"
	changedLabelConstant             = "changed"
	changesLabelConstant             = "changes"
	frozenLabelConstant              = "frozen"
	stashedLabelConstant             = "stashed"
	countSeparatorConstant           = " "
	countTerminatorConstant          = "  "
	lineTerminatorConstant           = "\n"
	renderWriteErrorTemplateConstant = "writing report: %w"
)

// Renderer formats a Summary as text.
type Renderer struct {
	colorScheme ColorScheme
}

// NewRenderer constructs a Renderer using the provided styles.
func NewRenderer(colorScheme ColorScheme) *Renderer {
	return &Renderer{colorScheme: colorScheme}
}

// Render writes the report for summary to writer.
func (renderer *Renderer) Render(writer io.Writer, summary Summary) error {
	scheme := renderer.colorScheme
	var builder strings.Builder

	builder.WriteString(scheme.Path.Render(summary.CanonicalPath))
	builder.WriteString(lineTerminatorConstant)

	for _, remote := range summary.Remotes {
		builder.WriteString(scheme.RemoteName.Render(remote.Name))
		builder.WriteString(remoteSeparatorConstant)
		builder.WriteString(scheme.RemoteURL.Render(remote.URL))
		builder.WriteString(lineTerminatorConstant)
	}

	builder.WriteString(scheme.Label.Render(userLabelConstant))
	builder.WriteString(userAssignmentConstant)
	if summary.User != nil {
		builder.WriteString(scheme.Identity.Render(summary.User.Name))
		builder.WriteString(" <")
		builder.WriteString(scheme.Identity.Render(summary.User.Email))
		builder.WriteString(">")
	} else {
		builder.WriteString(scheme.Missing.Render(missingUserConstant))
	}
	builder.WriteString(lineTerminatorConstant)

	builder.WriteString("[")
	if summary.BranchKnown {
		builder.WriteString(scheme.Branch.Render(summary.Branch))
	} else {
		builder.WriteString(scheme.UnknownBranch.Render(unknownBranchConstant))
	}
	builder.WriteString("] (")

	if summary.State == gitrepo.StateClean {
		builder.WriteString(scheme.CleanState.Render(summary.State.String()))
	} else {
		builder.WriteString(scheme.DirtyState.Render(summary.State.String()))
	}
	if len(summary.StagedFiles) > 0 {
		builder.WriteString(stateSuffixSeparatorConstant)
		builder.WriteString(scheme.Staged.Render(stagedLabelConstant))
	}
	if len(summary.ChangedFiles) > 0 {
		builder.WriteString(stateSuffixSeparatorConstant)
		builder.WriteString(scheme.Changed.Render(changedLabelConstant))
	}
	builder.WriteString(")")
	builder.WriteString(lineTerminatorConstant)

	writeCount(&builder, scheme.Staged, len(summary.StagedFiles), stagedLabelConstant)
	writeCount(&builder, scheme.Changed, len(summary.ChangedFiles), changesLabelConstant)
	writeCount(&builder, scheme.Frozen, len(summary.FrozenFiles), frozenLabelConstant)
	writeCount(&builder, scheme.Stashed, summary.StashCount, stashedLabelConstant)
	builder.WriteString(lineTerminatorConstant)

	for _, frozenFile := range summary.FrozenFiles {
		builder.WriteString(scheme.Frozen.Render(frozenFile))
		builder.WriteString(lineTerminatorConstant)
	}

	if _, writeError := io.WriteString(writer, builder.String()); writeError != nil {
		return fmt.Errorf(renderWriteErrorTemplateConstant, writeError)
	}
	return nil
}

func writeCount(builder *strings.Builder, style lipgloss.Style, count int, label string) {
	builder.WriteString(style.Render(strconv.Itoa(count)))
	builder.WriteString(countSeparatorConstant)
	builder.WriteString(style.Render(label))
	builder.WriteString(countTerminatorConstant)
}
