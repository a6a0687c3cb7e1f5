package gitrepo

import (
	"errors"
	"fmt"
	"strings"

	billy "github.com/go-git/go-billy/v6"
	gogit "github.com/go-git/go-git/v6"
	"go.uber.org/zap"

	"github.com/temirov/gitreport/internal/gitrepo/indexfile"
)

const (
	repositoryNotFoundTemplateConstant  = "%w: %s"
	repositoryOpenErrorTemplateConstant = "opening repository at %s: %w"
	repositoryOpenedMessageConstant     = "repository opened"
	extensionsSectionNameConstant       = "extensions"
	objectFormatOptionNameConstant      = "objectformat"
	sha256ObjectFormatConstant          = "sha256"
	logFieldRequestedPathConstant       = "requested_path"
	logFieldWorkingTreeRootConstant     = "working_tree_root"
)

// RepositoryManager is the facade owning a single opened repository.
type RepositoryManager struct {
	repository      *gogit.Repository
	workingTreeRoot string
	logger          *zap.Logger
}

type filesystemStorer interface {
	Filesystem() billy.Filesystem
}

// OpenRepository opens the repository rooted at or above repositoryPath.
func OpenRepository(repositoryPath string, logger *zap.Logger) (*RepositoryManager, error) {
	repository, openError := gogit.PlainOpenWithOptions(repositoryPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if openError != nil {
		if errors.Is(openError, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf(repositoryNotFoundTemplateConstant, ErrRepositoryNotFound, repositoryPath)
		}
		return nil, fmt.Errorf(repositoryOpenErrorTemplateConstant, repositoryPath, openError)
	}

	workingTreeRoot := ""
	if worktree, worktreeError := repository.Worktree(); worktreeError == nil {
		workingTreeRoot = worktree.Filesystem.Root()
	}

	manager := NewRepositoryManagerWithRepository(repository, workingTreeRoot, logger)
	manager.logger.Debug(
		repositoryOpenedMessageConstant,
		zap.String(logFieldRequestedPathConstant, repositoryPath),
		zap.String(logFieldWorkingTreeRootConstant, workingTreeRoot),
	)

	return manager, nil
}

// NewRepositoryManagerWithRepository wraps an already opened go-git repository.
// Tests use it with in-memory storage; workingTreeRoot may be a logical path.
func NewRepositoryManagerWithRepository(repository *gogit.Repository, workingTreeRoot string, logger *zap.Logger) *RepositoryManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepositoryManager{
		repository:      repository,
		workingTreeRoot: workingTreeRoot,
		logger:          logger,
	}
}

// WorkingTreeRoot returns the root directory of the working tree, empty for bare repositories.
func (manager *RepositoryManager) WorkingTreeRoot() string {
	return manager.workingTreeRoot
}

// gitDirectory exposes the .git directory of filesystem backed repositories.
func (manager *RepositoryManager) gitDirectory() (billy.Filesystem, error) {
	storageWithFilesystem, supportsFilesystem := manager.repository.Storer.(filesystemStorer)
	if !supportsFilesystem {
		return nil, ErrRepositoryStorageUnsupported
	}
	return storageWithFilesystem.Filesystem(), nil
}

func (manager *RepositoryManager) indexHashSize() int {
	repositoryConfiguration, configurationError := manager.repository.Config()
	if configurationError != nil || repositoryConfiguration.Raw == nil {
		return indexfile.SHA1HashSize
	}

	objectFormat := repositoryConfiguration.Raw.Section(extensionsSectionNameConstant).Option(objectFormatOptionNameConstant)
	if strings.EqualFold(strings.TrimSpace(objectFormat), sha256ObjectFormatConstant) {
		return indexfile.SHA256HashSize
	}
	return indexfile.SHA1HashSize
}
