// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses ConfigurationLoader, LoggerFactory, and CommandContextAccessor,
// which integrate Viper, environment variables, and zap logging for the
// gitreport CLI.
package utils
