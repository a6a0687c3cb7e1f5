package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gitreport/internal/completion"
	"github.com/temirov/gitreport/internal/freeze"
	"github.com/temirov/gitreport/internal/report"
	"github.com/temirov/gitreport/internal/utils"
	flagutils "github.com/temirov/gitreport/internal/utils/flags"
)

const (
	applicationNameConstant                 = "gitreport"
	applicationShortDescriptionConstant     = "Summarize the state of a git working tree"
	applicationLongDescriptionConstant      = "gitreport prints the remotes, user, branch, operation state, staged and changed files, frozen files, and stash count of a repository."
	pathFlagNameConstant                    = "path"
	pathFlagShorthandConstant               = "p"
	pathFlagDefaultConstant                 = "."
	pathFlagUsageConstant                   = "Directory at or inside the repository to inspect."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	colorFlagNameConstant                   = "color"
	colorFlagUsageConstant                  = "Colorize the report."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	reportColorConfigKeyConstant            = "report.color"
	environmentPrefixConstant               = "GITREPORT"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationColorFieldConstant         = "color"
	configurationFileFieldConstant          = "config_file"
	repositoryPathFieldConstant             = "repository_path"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	flagValueErrorTemplateConstant          = "invalid --%s value: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationSearchPathConstant     = "$HOME/.gitreport"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Report report.Configuration           `mapstructure:"report"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  utils.LogLevel  `mapstructure:"log_level"`
	LogFormat utils.LogFormat `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	repositoryPath         string
	logLevelFlagValue      string
	logFormatFlagValue     string
	colorFlagValue         string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, userConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
	}
	cobraCommand.CompletionOptions.DisableDefaultCmd = true

	cobraCommand.SetContext(context.Background())
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVarP(&application.repositoryPath, pathFlagNameConstant, pathFlagShorthandConstant, pathFlagDefaultConstant, pathFlagUsageConstant)
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(
		&application.logLevelFlagValue,
		logLevelFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogLevelWarn), []string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)}, logLevelFlagUsageConstant),
	)
	persistentFlags.StringVar(
		&application.logFormatFlagValue,
		logFormatFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(utils.LogFormatConsole), []string{string(utils.LogFormatConsole), string(utils.LogFormatStructured)}, logFormatFlagUsageConstant),
	)
	persistentFlags.StringVar(
		&application.colorFlagValue,
		colorFlagNameConstant,
		"",
		flagutils.FormatChoiceUsage(string(report.ColorModeAuto), report.ColorModeChoices(), colorFlagUsageConstant),
	)

	reportBuilder := report.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() report.Configuration {
			return application.configuration.Report
		},
	}
	reportBuilder.Configure(cobraCommand)

	for _, frozen := range []bool{true, false} {
		freezeBuilder := freeze.CommandBuilder{
			LoggerProvider: func() *zap.Logger {
				return application.logger
			},
			Frozen: frozen,
		}
		freezeCommand, freezeBuildError := freezeBuilder.Build()
		if freezeBuildError == nil {
			cobraCommand.AddCommand(freezeCommand)
		}
	}

	completionBuilder := completion.CommandBuilder{}
	completionCommand, completionBuildError := completionBuilder.Build()
	if completionBuildError == nil {
		cobraCommand.AddCommand(completionCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		reportColorConfigKeyConstant:     string(report.ColorModeAuto),
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if overrideError := application.applyFlagOverrides(command); overrideError != nil {
		return overrideError
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		application.configuration.Common.LogLevel,
		application.configuration.Common.LogFormat,
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, string(application.configuration.Common.LogLevel)),
		zap.String(configurationLogFormatFieldConstant, string(application.configuration.Common.LogFormat)),
		zap.String(configurationColorFieldConstant, application.configuration.Report.Color.String()),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(repositoryPathFieldConstant, application.repositoryPathValue()),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithRepositoryPath(updatedContext, application.repositoryPathValue())
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) applyFlagOverrides(command *cobra.Command) error {
	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		if unmarshalError := application.configuration.Common.LogLevel.UnmarshalText([]byte(application.logLevelFlagValue)); unmarshalError != nil {
			return fmt.Errorf(flagValueErrorTemplateConstant, logLevelFlagNameConstant, unmarshalError)
		}
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		if unmarshalError := application.configuration.Common.LogFormat.UnmarshalText([]byte(application.logFormatFlagValue)); unmarshalError != nil {
			return fmt.Errorf(flagValueErrorTemplateConstant, logFormatFlagNameConstant, unmarshalError)
		}
	}

	if application.persistentFlagChanged(command, colorFlagNameConstant) {
		if unmarshalError := application.configuration.Report.Color.UnmarshalText([]byte(application.colorFlagValue)); unmarshalError != nil {
			return fmt.Errorf(flagValueErrorTemplateConstant, colorFlagNameConstant, unmarshalError)
		}
	}

	return nil
}

func (application *Application) repositoryPathValue() string {
	return application.repositoryPath
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
