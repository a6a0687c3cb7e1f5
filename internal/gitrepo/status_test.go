package gitrepo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitreport/internal/gitrepo"
)

const (
	testModifiedFileConstant   = "modified.txt"
	testDeletedFileConstant    = "deleted.txt"
	testStableFileConstant     = "stable.txt"
	testAddedFileConstant      = "added.txt"
	testScratchFileConstant    = "scratch.txt"
	testInitialContentConstant = "initial\n"
	testUpdatedContentConstant = "updated with a longer body\n"
)

func TestStagedAndChangedFilesAreDisjointAndSorted(testInstance *testing.T) {
	repository, repositoryDirectory := initializeRepository(testInstance)
	commitFiles(testInstance, repository, repositoryDirectory, map[string]string{
		testModifiedFileConstant: testInitialContentConstant,
		testDeletedFileConstant:  testInitialContentConstant,
		testStableFileConstant:   testInitialContentConstant,
	})

	writeWorkingTreeFile(testInstance, repositoryDirectory, testModifiedFileConstant, testUpdatedContentConstant)
	require.NoError(testInstance, os.Remove(filepath.Join(repositoryDirectory, testDeletedFileConstant)))
	writeWorkingTreeFile(testInstance, repositoryDirectory, testScratchFileConstant, testInitialContentConstant)

	writeWorkingTreeFile(testInstance, repositoryDirectory, testAddedFileConstant, testInitialContentConstant)
	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)
	_, addError := worktree.Add(testAddedFileConstant)
	require.NoError(testInstance, addError)

	manager := openManager(testInstance, repositoryDirectory)

	stagedFiles, stagedError := manager.StagedFiles()
	require.NoError(testInstance, stagedError)
	require.Equal(testInstance, []string{testAddedFileConstant}, stagedFiles)

	changedFiles, changedError := manager.ChangedFiles()
	require.NoError(testInstance, changedError)
	require.Equal(testInstance, []string{testDeletedFileConstant, testModifiedFileConstant, testScratchFileConstant}, changedFiles)

	fileStatuses, statusError := manager.FileStatuses()
	require.NoError(testInstance, statusError)
	require.NotContains(testInstance, fileStatuses, testStableFileConstant)
	require.Equal(testInstance, gitrepo.StatusIndexNew, fileStatuses[testAddedFileConstant])
	require.Equal(testInstance, gitrepo.StatusWorktreeDeleted, fileStatuses[testDeletedFileConstant])
}

func TestCleanWorkingTreeHasNoStagedOrChangedFiles(testInstance *testing.T) {
	repository, repositoryDirectory := initializeRepository(testInstance)
	commitFiles(testInstance, repository, repositoryDirectory, map[string]string{testStableFileConstant: testInitialContentConstant})

	manager := openManager(testInstance, repositoryDirectory)

	stagedFiles, stagedError := manager.StagedFiles()
	require.NoError(testInstance, stagedError)
	require.Empty(testInstance, stagedFiles)

	changedFiles, changedError := manager.ChangedFiles()
	require.NoError(testInstance, changedError)
	require.Empty(testInstance, changedFiles)
}

func TestStatusMasksDoNotOverlap(testInstance *testing.T) {
	require.Zero(testInstance, gitrepo.StagedStatusMask&gitrepo.ChangedStatusMask)
	require.False(testInstance, gitrepo.StatusConflicted.Has(gitrepo.StagedStatusMask|gitrepo.ChangedStatusMask))
	require.True(testInstance, (gitrepo.StatusIndexModified | gitrepo.StatusWorktreeNew).Has(gitrepo.ChangedStatusMask))
}

func TestPathWithStagedAndWorktreeChangesAppearsInBothLists(testInstance *testing.T) {
	repository, repositoryDirectory := initializeRepository(testInstance)
	commitFiles(testInstance, repository, repositoryDirectory, map[string]string{testStableFileConstant: testInitialContentConstant})

	writeWorkingTreeFile(testInstance, repositoryDirectory, testAddedFileConstant, testInitialContentConstant)
	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)
	_, addError := worktree.Add(testAddedFileConstant)
	require.NoError(testInstance, addError)
	writeWorkingTreeFile(testInstance, repositoryDirectory, testAddedFileConstant, testUpdatedContentConstant)

	manager := openManager(testInstance, repositoryDirectory)

	stagedFiles, stagedError := manager.StagedFiles()
	require.NoError(testInstance, stagedError)
	require.Equal(testInstance, []string{testAddedFileConstant}, stagedFiles)

	changedFiles, changedError := manager.ChangedFiles()
	require.NoError(testInstance, changedError)
	require.Equal(testInstance, []string{testAddedFileConstant}, changedFiles)

	fileStatuses, statusError := manager.FileStatuses()
	require.NoError(testInstance, statusError)
	require.Equal(testInstance, gitrepo.StatusIndexNew|gitrepo.StatusWorktreeModified, fileStatuses[testAddedFileConstant])
}
