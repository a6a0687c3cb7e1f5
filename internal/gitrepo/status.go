package gitrepo

import (
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v6"
	"go.uber.org/zap"
)

// StatusFlag is a bit set describing how a path differs between HEAD, the index, and the working tree.
type StatusFlag uint32

// StatusCurrent marks a path identical in HEAD, the index, and the working tree.
const StatusCurrent StatusFlag = 0

// Status bits. Index-side and working-tree-side bits never overlap.
const (
	StatusIndexNew StatusFlag = 1 << iota
	StatusIndexModified
	StatusIndexDeleted
	StatusIndexRenamed
	StatusIndexTypeChange

	StatusWorktreeNew
	StatusWorktreeModified
	StatusWorktreeDeleted
	StatusWorktreeTypeChange
	StatusWorktreeRenamed

	StatusConflicted
)

const (
	// StagedStatusMask selects paths whose index entry differs from HEAD.
	StagedStatusMask = StatusIndexNew | StatusIndexModified | StatusIndexDeleted | StatusIndexRenamed | StatusIndexTypeChange
	// ChangedStatusMask selects paths whose working-tree file differs from the index.
	ChangedStatusMask = StatusWorktreeNew | StatusWorktreeModified | StatusWorktreeDeleted | StatusWorktreeTypeChange | StatusWorktreeRenamed
)

const (
	worktreeOpenErrorTemplateConstant   = "opening worktree: %w"
	worktreeStatusErrorTemplateConstant = "reading worktree status: %w"
	statusScannedMessageConstant        = "worktree status scanned"
	logFieldEntryCountConstant          = "entry_count"
)

// Has reports whether any bit of mask is set.
func (statusFlag StatusFlag) Has(mask StatusFlag) bool {
	return statusFlag&mask != 0
}

// FileStatuses scans the working tree once and returns the status bits of every path that is not current.
func (manager *RepositoryManager) FileStatuses() (map[string]StatusFlag, error) {
	worktree, worktreeError := manager.repository.Worktree()
	if worktreeError != nil {
		return nil, fmt.Errorf(worktreeOpenErrorTemplateConstant, worktreeError)
	}

	worktreeStatus, statusError := worktree.Status()
	if statusError != nil {
		return nil, fmt.Errorf(worktreeStatusErrorTemplateConstant, statusError)
	}

	fileStatuses := make(map[string]StatusFlag, len(worktreeStatus))
	for filePath, fileStatus := range worktreeStatus {
		statusFlag := translateStatus(fileStatus.Staging, fileStatus.Worktree)
		if statusFlag == StatusCurrent {
			continue
		}
		fileStatuses[filePath] = statusFlag
	}

	manager.logger.Debug(statusScannedMessageConstant, zap.Int(logFieldEntryCountConstant, len(fileStatuses)))

	return fileStatuses, nil
}

// FilesWithStatus returns the sorted paths whose status intersects mask.
func (manager *RepositoryManager) FilesWithStatus(mask StatusFlag) ([]string, error) {
	fileStatuses, statusError := manager.FileStatuses()
	if statusError != nil {
		return nil, statusError
	}

	matchingPaths := []string{}
	for filePath, statusFlag := range fileStatuses {
		if statusFlag.Has(mask) {
			matchingPaths = append(matchingPaths, filePath)
		}
	}
	sort.Strings(matchingPaths)

	return matchingPaths, nil
}

// StagedFiles returns paths with changes recorded in the index.
func (manager *RepositoryManager) StagedFiles() ([]string, error) {
	return manager.FilesWithStatus(StagedStatusMask)
}

// ChangedFiles returns paths with working-tree changes not recorded in the index, untracked files included.
func (manager *RepositoryManager) ChangedFiles() ([]string, error) {
	return manager.FilesWithStatus(ChangedStatusMask)
}

func translateStatus(stagingCode gogit.StatusCode, worktreeCode gogit.StatusCode) StatusFlag {
	if stagingCode == gogit.UpdatedButUnmerged || worktreeCode == gogit.UpdatedButUnmerged {
		return StatusConflicted
	}

	if stagingCode == gogit.Untracked || worktreeCode == gogit.Untracked {
		return StatusWorktreeNew
	}

	statusFlag := StatusCurrent

	switch stagingCode {
	case gogit.Added, gogit.Copied:
		statusFlag |= StatusIndexNew
	case gogit.Modified:
		statusFlag |= StatusIndexModified
	case gogit.Deleted:
		statusFlag |= StatusIndexDeleted
	case gogit.Renamed:
		statusFlag |= StatusIndexRenamed
	}

	switch worktreeCode {
	case gogit.Added, gogit.Copied:
		statusFlag |= StatusWorktreeNew
	case gogit.Modified:
		statusFlag |= StatusWorktreeModified
	case gogit.Deleted:
		statusFlag |= StatusWorktreeDeleted
	case gogit.Renamed:
		statusFlag |= StatusWorktreeRenamed
	}

	return statusFlag
}
