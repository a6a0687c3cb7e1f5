package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/go-git/go-billy/v6/util"
	"go.uber.org/zap"
)

const (
	stashReflogDirectoryConstant   = "logs/refs"
	stashReflogFileNameConstant    = "stash"
	stashReadErrorTemplateConstant = "reading stash reflog: %w"
	stashCountedMessageConstant    = "stash entries counted"
	logFieldStashCountConstant     = "stash_count"
)

// StashCount returns the number of entries in the refs/stash reflog. A repository without stashes reports zero.
func (manager *RepositoryManager) StashCount() (int, error) {
	gitDirectory, directoryError := manager.gitDirectory()
	if directoryError != nil {
		return 0, directoryError
	}

	reflogContent, readError := util.ReadFile(gitDirectory, path.Join(stashReflogDirectoryConstant, stashReflogFileNameConstant))
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf(stashReadErrorTemplateConstant, readError)
	}

	stashCount := 0
	for _, reflogLine := range bytes.Split(reflogContent, []byte{'\n'}) {
		if len(bytes.TrimSpace(reflogLine)) > 0 {
			stashCount++
		}
	}

	manager.logger.Debug(stashCountedMessageConstant, zap.Int(logFieldStashCountConstant, stashCount))

	return stashCount, nil
}
