package pathutils_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/gitreport/internal/utils/path"
)

const (
	testHomeDirectoryConstant     = "/home/reporter"
	testTildeRelativePathConstant = "projects/example"
	testWhitespacePrefixConstant  = "  "
	testWhitespaceSuffixConstant  = "\t"
	testLinkNameConstant          = "linked"
	testNestedFileNameConstant    = "notes.txt"
)

func staticHomeExpander() *pathutils.HomeExpander {
	return pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})
}

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectedPath string
	}{
		{name: "bare_tilde", input: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_slash", input: "~/" + testTildeRelativePathConstant, expectedPath: filepath.Join(testHomeDirectoryConstant, testTildeRelativePathConstant)},
		{name: "other_user", input: "~someone/file", expectedPath: "~someone/file"},
		{name: "absolute", input: "/var/tmp", expectedPath: "/var/tmp"},
		{name: "empty", input: "", expectedPath: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			require.Equal(subTest, testCase.expectedPath, staticHomeExpander().Expand(testCase.input))
		})
	}
}

func TestHomeExpanderKeepsInputWhenHomeUnavailable(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})
	require.Equal(testInstance, "~/file", expander.Expand("~/file"))
}

func TestPathSanitizerNormalizesAndDeduplicates(testInstance *testing.T) {
	sanitizer := pathutils.NewPathSanitizer(staticHomeExpander())

	sanitized := sanitizer.Sanitize([]string{
		"",
		testWhitespacePrefixConstant + "docs/readme.md" + testWhitespaceSuffixConstant,
		"./docs/readme.md",
		"~/" + testTildeRelativePathConstant,
		"  \n",
		"docs/../docs/readme.md",
		"src/main.go",
	})

	require.Equal(testInstance, []string{
		filepath.Join("docs", "readme.md"),
		filepath.Join(testHomeDirectoryConstant, testTildeRelativePathConstant),
		filepath.Join("src", "main.go"),
	}, sanitized)
}

func TestPathSanitizerReturnsNilForEmptyResults(testInstance *testing.T) {
	sanitized := pathutils.NewPathSanitizer(staticHomeExpander()).Sanitize([]string{"   ", "\n"})
	require.Nil(testInstance, sanitized)
}

func TestPathSanitizerUsesConfiguredHomeExpander(testInstance *testing.T) {
	providerCalls := 0
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		providerCalls++
		return testHomeDirectoryConstant, nil
	})
	sanitizer := pathutils.NewPathSanitizer(expander)

	require.Equal(testInstance, []string{testHomeDirectoryConstant}, sanitizer.Sanitize([]string{"~"}))
	require.Equal(testInstance, []string{testHomeDirectoryConstant}, sanitizer.Sanitize([]string{"~/"}))
	require.Equal(testInstance, 1, providerCalls)
}

func TestNilPathSanitizerFallsBackToOperatingSystemHome(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	testInstance.Setenv("HOME", homeDirectory)

	var sanitizer *pathutils.PathSanitizer
	require.Equal(testInstance, []string{filepath.Join(homeDirectory, testNestedFileNameConstant)}, sanitizer.Sanitize([]string{"~/" + testNestedFileNameConstant}))
}

func TestCanonicalizeResolvesSymbolicLinks(testInstance *testing.T) {
	targetDirectory := testInstance.TempDir()
	resolvedTarget, resolveError := filepath.EvalSymlinks(targetDirectory)
	require.NoError(testInstance, resolveError)

	linkPath := filepath.Join(testInstance.TempDir(), testLinkNameConstant)
	require.NoError(testInstance, os.Symlink(targetDirectory, linkPath))

	canonicalPath, canonicalError := pathutils.Canonicalize(linkPath)
	require.NoError(testInstance, canonicalError)
	require.Equal(testInstance, resolvedTarget, canonicalPath)

	_, missingError := pathutils.Canonicalize(filepath.Join(targetDirectory, testNestedFileNameConstant))
	require.ErrorIs(testInstance, missingError, os.ErrNotExist)
}

func TestRelativeSlashPath(testInstance *testing.T) {
	rootPath := filepath.Join(string(filepath.Separator), "work", "repository")

	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
		expectedFound bool
	}{
		{name: "nested_file", candidatePath: filepath.Join(rootPath, "config", "app.yaml"), expectedPath: "config/app.yaml", expectedFound: true},
		{name: "root_itself", candidatePath: rootPath, expectedFound: false},
		{name: "sibling", candidatePath: filepath.Join(filepath.Dir(rootPath), "other", "file.txt"), expectedFound: false},
		{name: "dotdot_prefixed_name", candidatePath: filepath.Join(rootPath, "..hidden"), expectedPath: "..hidden", expectedFound: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			relativePath, found := pathutils.RelativeSlashPath(rootPath, testCase.candidatePath)
			require.Equal(subTest, testCase.expectedFound, found)
			require.Equal(subTest, testCase.expectedPath, relativePath)
		})
	}
}
