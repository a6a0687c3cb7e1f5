// Package completion renders shell completion scripts for the gitreport command tree.
package completion

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/gitreport/internal/utils/flags"
)

// Shell names a supported completion target.
type Shell string

// Supported shells.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

const (
	commandUseConstant               = "completion <bash|zsh|fish|powershell>"
	commandShortDescriptionConstant  = "Generate a shell completion script"
	commandLongDescriptionConstant   = "completion writes a completion script for the requested shell to standard output."
	shellSubjectConstant             = "shell"
	unsupportedShellMessageConstant  = "unsupported shell"
	unsupportedShellTemplateConstant = "%s: %s (supported: %s)"
	shellListSeparatorConstant       = ", "
	generationErrorTemplateConstant  = "generating %s completion: %w"
)

// ErrUnsupportedShell indicates a completion request for an unknown shell.
var ErrUnsupportedShell = errors.New(unsupportedShellMessageConstant)

// UnsupportedShellError names the rejected shell.
type UnsupportedShellError struct {
	Shell string
}

// Error describes the rejected shell and the supported alternatives.
func (shellError UnsupportedShellError) Error() string {
	return fmt.Sprintf(unsupportedShellTemplateConstant, unsupportedShellMessageConstant, shellError.Shell, strings.Join(SupportedShells(), shellListSeparatorConstant))
}

// Unwrap returns ErrUnsupportedShell.
func (shellError UnsupportedShellError) Unwrap() error {
	return ErrUnsupportedShell
}

// SupportedShells lists the accepted shell names.
func SupportedShells() []string {
	return []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}
}

// CommandBuilder assembles the completion command.
type CommandBuilder struct{}

// Build constructs the completion command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:                   commandUseConstant,
		Short:                 commandShortDescriptionConstant,
		Long:                  commandLongDescriptionConstant,
		Args:                  cobra.ExactArgs(1),
		ValidArgs:             SupportedShells(),
		DisableFlagsInUseLine: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return WriteScript(command.Root(), command.OutOrStdout(), arguments[0])
		},
	}
	return command, nil
}

// WriteScript writes the completion script of rootCommand for shellName to output.
func WriteScript(rootCommand *cobra.Command, output io.Writer, shellName string) error {
	choice, choiceError := flags.NormalizeChoice(shellSubjectConstant, shellName, SupportedShells())
	if choiceError != nil {
		return UnsupportedShellError{Shell: shellName}
	}

	var generationError error
	switch Shell(choice) {
	case ShellBash:
		generationError = rootCommand.GenBashCompletionV2(output, true)
	case ShellZsh:
		generationError = rootCommand.GenZshCompletion(output)
	case ShellFish:
		generationError = rootCommand.GenFishCompletion(output, true)
	case ShellPowerShell:
		generationError = rootCommand.GenPowerShellCompletionWithDesc(output)
	}
	if generationError != nil {
		return fmt.Errorf(generationErrorTemplateConstant, choice, generationError)
	}

	return nil
}
