package gitrepo

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	billy "github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/util"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/gitreport/internal/gitrepo/indexfile"
)

// FrozenFlagMask is the index entry flag bit that marks a file as frozen.
const FrozenFlagMask uint16 = 1 << 15

const (
	indexFileNameConstant              = "index"
	indexLockFileNameConstant          = "index.lock"
	indexLockFilePermissionsConstant   = 0o644
	normalEntryStageConstant           = 0
	currentDirectoryPrefixConstant     = "./"
	indexReadErrorTemplateConstant     = "reading index: %w"
	indexDecodeErrorTemplateConstant   = "decoding index: %w"
	indexFlagErrorTemplateConstant     = "updating index entry %s: %w"
	indexLockErrorTemplateConstant     = "creating %s: %w"
	indexWriteErrorTemplateConstant    = "writing %s: %w"
	indexCommitErrorTemplateConstant   = "replacing index: %w"
	indexWrittenMessageConstant        = "index written"
	indexUnchangedMessageConstant      = "frozen flags already up to date"
	logFieldPathCountConstant          = "path_count"
	logFieldFrozenConstant             = "frozen"
	logFieldIndexVersionConstant       = "index_version"
	logFieldIndexContentLengthConstant = "content_length"
	logFieldSmudgedEntriesConstant     = "smudged_entries"
)

// FrozenFiles lists the paths of index entries carrying the frozen flag, in index order.
func (manager *RepositoryManager) FrozenFiles() ([]string, error) {
	indexFile, _, loadError := manager.loadIndex()
	if loadError != nil {
		return nil, loadError
	}

	frozenFiles := []string{}
	if indexFile == nil {
		return frozenFiles, nil
	}

	for _, entry := range indexFile.Entries {
		if entry.HasFlags(FrozenFlagMask) {
			frozenFiles = append(frozenFiles, entry.Path)
		}
	}

	return frozenFiles, nil
}

// SetFilesFrozen sets or clears the frozen flag for every path and persists the index once.
// Paths are relative to the working tree root. When any path lacks a stage 0 entry the
// index on disk is left untouched.
func (manager *RepositoryManager) SetFilesFrozen(paths []string, frozen bool) error {
	indexFile, gitDirectory, loadError := manager.loadIndex()
	if loadError != nil {
		return loadError
	}

	for _, requestedPath := range paths {
		entryPath := normalizeIndexPath(requestedPath)
		if indexFile == nil {
			return PathNotIndexedError{Path: requestedPath}
		}

		position, found := indexFile.Lookup(entryPath, normalEntryStageConstant)
		if !found {
			return PathNotIndexedError{Path: requestedPath}
		}

		if flagError := indexFile.SetFlags(position, FrozenFlagMask, frozen); flagError != nil {
			return fmt.Errorf(indexFlagErrorTemplateConstant, entryPath, flagError)
		}
	}

	if indexFile == nil || !indexFile.Modified() {
		manager.logger.Debug(indexUnchangedMessageConstant, zap.Int(logFieldPathCountConstant, len(paths)))
		return nil
	}

	smudgedEntries := 0
	if indexInfo, statError := gitDirectory.Stat(indexFileNameConstant); statError == nil {
		smudgedEntries = indexFile.SmudgeRacilyClean(indexInfo.ModTime())
	}

	encodedContent := indexFile.Encode()
	if writeError := writeIndex(gitDirectory, encodedContent); writeError != nil {
		return writeError
	}

	manager.logger.Debug(
		indexWrittenMessageConstant,
		zap.Int(logFieldPathCountConstant, len(paths)),
		zap.Bool(logFieldFrozenConstant, frozen),
		zap.Uint32(logFieldIndexVersionConstant, indexFile.Version),
		zap.Int(logFieldIndexContentLengthConstant, len(encodedContent)),
		zap.Int(logFieldSmudgedEntriesConstant, smudgedEntries),
	)

	return nil
}

// loadIndex returns a nil file when the repository has no index yet.
func (manager *RepositoryManager) loadIndex() (*indexfile.File, billy.Filesystem, error) {
	gitDirectory, directoryError := manager.gitDirectory()
	if directoryError != nil {
		return nil, nil, directoryError
	}

	indexContent, readError := util.ReadFile(gitDirectory, indexFileNameConstant)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return nil, gitDirectory, nil
		}
		return nil, nil, fmt.Errorf(indexReadErrorTemplateConstant, readError)
	}

	indexFile, decodeError := indexfile.Decode(indexContent, manager.indexHashSize())
	if decodeError != nil {
		return nil, nil, fmt.Errorf(indexDecodeErrorTemplateConstant, decodeError)
	}

	return indexFile, gitDirectory, nil
}

// writeIndex follows git's locking protocol: exclusive index.lock, then rename over index.
// Racily clean entries are smudged by the caller before content is produced.
func writeIndex(gitDirectory billy.Filesystem, content []byte) error {
	lockFile, lockError := gitDirectory.OpenFile(indexLockFileNameConstant, os.O_CREATE|os.O_EXCL|os.O_WRONLY, indexLockFilePermissionsConstant)
	if lockError != nil {
		if errors.Is(lockError, os.ErrExist) {
			return ErrIndexLocked
		}
		return fmt.Errorf(indexLockErrorTemplateConstant, indexLockFileNameConstant, lockError)
	}

	_, writeError := lockFile.Write(content)
	closeError := lockFile.Close()
	if combinedError := multierr.Combine(writeError, closeError); combinedError != nil {
		_ = gitDirectory.Remove(indexLockFileNameConstant)
		return fmt.Errorf(indexWriteErrorTemplateConstant, indexLockFileNameConstant, combinedError)
	}

	if renameError := gitDirectory.Rename(indexLockFileNameConstant, indexFileNameConstant); renameError != nil {
		_ = gitDirectory.Remove(indexLockFileNameConstant)
		return fmt.Errorf(indexCommitErrorTemplateConstant, renameError)
	}

	return nil
}

func normalizeIndexPath(requestedPath string) string {
	slashPath := filepath.ToSlash(requestedPath)
	for strings.HasPrefix(slashPath, currentDirectoryPrefixConstant) {
		slashPath = strings.TrimPrefix(slashPath, currentDirectoryPrefixConstant)
	}
	return path.Clean(slashPath)
}
