package freeze

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitreport/internal/utils"
)

const (
	freezeCommandUseConstant                = "freeze <paths...>"
	freezeCommandShortDescriptionConstant   = "Mark tracked files as frozen"
	freezeCommandLongDescriptionConstant    = "freeze sets the frozen marker on the index entries of the given tracked files. Every path must exist and be tracked, otherwise nothing is changed."
	unfreezeCommandUseConstant              = "unfreeze <paths...>"
	unfreezeCommandShortDescriptionConstant = "Clear the frozen mark from tracked files"
	unfreezeCommandLongDescriptionConstant  = "unfreeze clears the frozen marker from the index entries of the given tracked files. Every path must exist and be tracked, otherwise nothing is changed."
	frozenOutputTemplateConstant            = "FROZEN: %s\n"
	unfrozenOutputTemplateConstant          = "UNFROZEN: %s\n"
	freezeFailedErrorTemplateConstant       = "freeze failed: %w"
	unfreezeFailedErrorTemplateConstant     = "unfreeze failed: %w"
	defaultRepositoryPathConstant           = "."
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the freeze or unfreeze command.
type CommandBuilder struct {
	LoggerProvider   LoggerProvider
	RepositoryOpener RepositoryOpener
	// Frozen selects freeze when true and unfreeze when false.
	Frozen bool
}

// Build constructs the command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   unfreezeCommandUseConstant,
		Short: unfreezeCommandShortDescriptionConstant,
		Long:  unfreezeCommandLongDescriptionConstant,
		Args:  cobra.MinimumNArgs(1),
		RunE:  builder.run,
	}

	if builder.Frozen {
		command.Use = freezeCommandUseConstant
		command.Short = freezeCommandShortDescriptionConstant
		command.Long = freezeCommandLongDescriptionConstant
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	service := NewService(builder.resolveLogger(), builder.RepositoryOpener)

	appliedPaths, applyError := service.Apply(Options{
		RepositoryPath: builder.resolveRepositoryPath(command),
		Paths:          arguments,
		Frozen:         builder.Frozen,
	})
	if applyError != nil {
		if builder.Frozen {
			return fmt.Errorf(freezeFailedErrorTemplateConstant, applyError)
		}
		return fmt.Errorf(unfreezeFailedErrorTemplateConstant, applyError)
	}

	outputTemplate := unfrozenOutputTemplateConstant
	if builder.Frozen {
		outputTemplate = frozenOutputTemplateConstant
	}

	output := command.OutOrStdout()
	for _, appliedPath := range appliedPaths {
		fmt.Fprintf(output, outputTemplate, appliedPath)
	}

	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveRepositoryPath(command *cobra.Command) string {
	repositoryPath, pathAvailable := utils.NewCommandContextAccessor().RepositoryPath(command.Context())
	repositoryPath = strings.TrimSpace(repositoryPath)
	if !pathAvailable || len(repositoryPath) == 0 {
		return defaultRepositoryPathConstant
	}
	return repositoryPath
}
