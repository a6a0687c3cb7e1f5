package completion_test

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitreport/internal/completion"
)

const testRootCommandNameConstant = "gitreport"

func buildCommandTree(testInstance *testing.T) (*cobra.Command, *bytes.Buffer) {
	testInstance.Helper()

	rootCommand := &cobra.Command{Use: testRootCommandNameConstant, SilenceUsage: true, SilenceErrors: true}
	rootCommand.CompletionOptions.DisableDefaultCmd = true
	rootCommand.AddCommand(&cobra.Command{Use: "freeze", Run: func(*cobra.Command, []string) {}})

	builder := completion.CommandBuilder{}
	completionCommand, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	rootCommand.AddCommand(completionCommand)

	var output bytes.Buffer
	rootCommand.SetOut(&output)
	return rootCommand, &output
}

func TestCompletionWritesScriptForEverySupportedShell(testInstance *testing.T) {
	expectedMarkers := map[string]string{
		"bash":       "bash completion V2 for gitreport",
		"zsh":        "#compdef gitreport",
		"fish":       "fish completion for gitreport",
		"powershell": "powershell completion for gitreport",
	}

	for _, shellName := range completion.SupportedShells() {
		testInstance.Run(shellName, func(subTest *testing.T) {
			rootCommand, output := buildCommandTree(subTest)
			rootCommand.SetArgs([]string{"completion", shellName})

			require.NoError(subTest, rootCommand.Execute())
			require.Contains(subTest, output.String(), expectedMarkers[shellName])
		})
	}
}

func TestCompletionRejectsUnknownShell(testInstance *testing.T) {
	rootCommand, output := buildCommandTree(testInstance)
	rootCommand.SetArgs([]string{"completion", "tcsh"})

	executionError := rootCommand.Execute()
	require.ErrorIs(testInstance, executionError, completion.ErrUnsupportedShell)

	var shellError completion.UnsupportedShellError
	require.ErrorAs(testInstance, executionError, &shellError)
	require.Equal(testInstance, "tcsh", shellError.Shell)
	require.Empty(testInstance, output.String())
}

func TestCompletionRequiresExactlyOneShell(testInstance *testing.T) {
	rootCommand, _ := buildCommandTree(testInstance)
	rootCommand.SetArgs([]string{"completion"})

	require.Error(testInstance, rootCommand.Execute())
}
