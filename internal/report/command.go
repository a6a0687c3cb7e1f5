package report

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitreport/internal/gitrepo"
	"github.com/temirov/gitreport/internal/utils"
)

const (
	defaultRepositoryPathConstant     = "."
	reportFailedErrorTemplateConstant = "report failed: %w"
	reportRenderedMessageConstant     = "report rendered"
	logFieldRepositoryPathConstant    = "repository_path"
	logFieldColorModeConstant         = "color_mode"
	logFieldConfigurationFileConstant = "config_file"
)

// Configuration holds report settings loaded from the application configuration.
type Configuration struct {
	Color ColorMode `mapstructure:"color"`
}

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the report configuration.
type ConfigurationProvider func() Configuration

// InspectorOpener opens the repository at or above repositoryPath.
type InspectorOpener func(repositoryPath string, logger *zap.Logger) (RepositoryInspector, error)

// CommandBuilder wires the report into a cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	InspectorOpener       InspectorOpener
	TerminalDetector      TerminalDetector
}

// Configure makes the report the action of command.
func (builder *CommandBuilder) Configure(command *cobra.Command) {
	command.Args = cobra.NoArgs
	command.RunE = builder.run
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()
	contextAccessor := utils.NewCommandContextAccessor()
	repositoryPath := builder.resolveRepositoryPath(contextAccessor, command)
	configurationFilePath, _ := contextAccessor.ConfigurationFilePath(command.Context())
	configuration := builder.resolveConfiguration()

	inspector, openError := builder.resolveOpener()(repositoryPath, logger)
	if openError != nil {
		return fmt.Errorf(reportFailedErrorTemplateConstant, openError)
	}

	summary, collectError := NewCollector(logger).Collect(inspector, repositoryPath)
	if collectError != nil {
		return fmt.Errorf(reportFailedErrorTemplateConstant, collectError)
	}

	output := command.OutOrStdout()
	colorScheme := NewColorScheme(output, configuration.Color, builder.TerminalDetector)
	if renderError := NewRenderer(colorScheme).Render(output, summary); renderError != nil {
		return fmt.Errorf(reportFailedErrorTemplateConstant, renderError)
	}

	logger.Debug(
		reportRenderedMessageConstant,
		zap.String(logFieldRepositoryPathConstant, summary.CanonicalPath),
		zap.String(logFieldColorModeConstant, configuration.Color.String()),
		zap.String(logFieldConfigurationFileConstant, configurationFilePath),
	)

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

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	configuration := Configuration{Color: ColorModeAuto}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	if len(configuration.Color) == 0 {
		configuration.Color = ColorModeAuto
	}
	return configuration
}

func (builder *CommandBuilder) resolveRepositoryPath(contextAccessor utils.CommandContextAccessor, command *cobra.Command) string {
	repositoryPath, pathAvailable := contextAccessor.RepositoryPath(command.Context())
	repositoryPath = strings.TrimSpace(repositoryPath)
	if !pathAvailable || len(repositoryPath) == 0 {
		return defaultRepositoryPathConstant
	}
	return repositoryPath
}

func (builder *CommandBuilder) resolveOpener() InspectorOpener {
	if builder.InspectorOpener != nil {
		return builder.InspectorOpener
	}
	return openRepositoryInspector
}

func openRepositoryInspector(repositoryPath string, logger *zap.Logger) (RepositoryInspector, error) {
	manager, openError := gitrepo.OpenRepository(repositoryPath, logger)
	if openError != nil {
		return nil, openError
	}
	return manager, nil
}
