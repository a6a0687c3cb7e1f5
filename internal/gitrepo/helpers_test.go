package gitrepo_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitreport/internal/gitrepo"
)

const (
	testDefaultBranchNameConstant    = "main"
	testAuthorNameConstant           = "Report Tester"
	testAuthorEmailConstant          = "tester@example.com"
	testCommitMessageConstant        = "seed repository"
	testFilePermissionsConstant      = 0o644
	testDirectoryPermissionsConstant = 0o755
	testGitDirectoryNameConstant     = ".git"
	testHomeVariableConstant         = "HOME"
	testXDGConfigVariableConstant    = "XDG_CONFIG_HOME"
)

// isolateGlobalConfiguration keeps the developer's global git configuration out of the tests.
func isolateGlobalConfiguration(testInstance *testing.T) {
	testInstance.Helper()

	homeDirectory := testInstance.TempDir()
	testInstance.Setenv(testHomeVariableConstant, homeDirectory)
	testInstance.Setenv(testXDGConfigVariableConstant, filepath.Join(homeDirectory, ".config"))
}

func initializeRepository(testInstance *testing.T) (*gogit.Repository, string) {
	testInstance.Helper()
	isolateGlobalConfiguration(testInstance)

	repositoryDirectory := testInstance.TempDir()
	repository, initError := gogit.PlainInit(repositoryDirectory, false)
	require.NoError(testInstance, initError)

	headReference := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(testDefaultBranchNameConstant))
	require.NoError(testInstance, repository.Storer.SetReference(headReference))

	return repository, repositoryDirectory
}

func writeWorkingTreeFile(testInstance *testing.T, repositoryDirectory string, relativePath string, content string) {
	testInstance.Helper()

	absolutePath := filepath.Join(repositoryDirectory, filepath.FromSlash(relativePath))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), testDirectoryPermissionsConstant))
	require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), testFilePermissionsConstant))
}

func commitFiles(testInstance *testing.T, repository *gogit.Repository, repositoryDirectory string, files map[string]string) {
	testInstance.Helper()

	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)

	for relativePath, content := range files {
		writeWorkingTreeFile(testInstance, repositoryDirectory, relativePath, content)
		_, addError := worktree.Add(relativePath)
		require.NoError(testInstance, addError)
	}

	_, commitError := worktree.Commit(testCommitMessageConstant, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  testAuthorNameConstant,
			Email: testAuthorEmailConstant,
			When:  time.Now(),
		},
	})
	require.NoError(testInstance, commitError)
}

func openManager(testInstance *testing.T, repositoryDirectory string) *gitrepo.RepositoryManager {
	testInstance.Helper()

	manager, openError := gitrepo.OpenRepository(repositoryDirectory, nil)
	require.NoError(testInstance, openError)
	return manager
}

func gitDirectoryPath(repositoryDirectory string, relativePath string) string {
	return filepath.Join(repositoryDirectory, testGitDirectoryNameConstant, filepath.FromSlash(relativePath))
}
