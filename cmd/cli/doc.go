// Package cli constructs the gitreport command-line interface. It wires the
// Cobra command hierarchy, the Viper configuration loader, and zap logging,
// makes the repository report the root command's action, and registers the
// freeze, unfreeze, and completion subcommands.
package cli
