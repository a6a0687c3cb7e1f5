package freeze

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/gitreport/internal/gitrepo"
	pathutils "github.com/temirov/gitreport/internal/utils/path"
)

const (
	pathInspectionErrorTemplateConstant = "inspecting %s: %w"
	workingTreeErrorTemplateConstant    = "resolving working tree root: %w"
	pathResolutionErrorTemplateConstant = "resolving %s: %w"
	freezeApplyErrorTemplateConstant    = "updating frozen flags: %w"
	frozenFlagsAppliedMessageConstant   = "frozen flags applied"
	logFieldPathsConstant               = "paths"
	logFieldFrozenConstant              = "frozen"
)

// Options describes a freeze or unfreeze request.
type Options struct {
	RepositoryPath string
	Paths          []string
	Frozen         bool
}

// RepositoryFreezer is the repository surface needed to toggle frozen flags.
type RepositoryFreezer interface {
	WorkingTreeRoot() string
	SetFilesFrozen(paths []string, frozen bool) error
}

// RepositoryOpener opens the repository at or above repositoryPath.
type RepositoryOpener func(repositoryPath string, logger *zap.Logger) (RepositoryFreezer, error)

// Service validates paths and applies frozen flag changes.
type Service struct {
	logger    *zap.Logger
	opener    RepositoryOpener
	sanitizer *pathutils.PathSanitizer
}

// NewService constructs a Service. A nil opener opens repositories from disk.
func NewService(logger *zap.Logger, opener RepositoryOpener) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opener == nil {
		opener = openRepositoryFreezer
	}
	return &Service{
		logger:    logger,
		opener:    opener,
		sanitizer: pathutils.NewPathSanitizer(nil),
	}
}

// Apply sets or clears the frozen flag on every requested path and returns the
// working-tree relative paths that were updated. Nothing is written unless every
// path exists, lies inside the working tree, and is tracked.
func (service *Service) Apply(options Options) ([]string, error) {
	requestedPaths := service.sanitizer.Sanitize(options.Paths)
	if len(requestedPaths) == 0 {
		return nil, ErrPathsRequired
	}

	if existenceError := validatePathsExist(requestedPaths); existenceError != nil {
		return nil, existenceError
	}

	repository, openError := service.opener(options.RepositoryPath, service.logger)
	if openError != nil {
		return nil, openError
	}

	workingTreeRoot, rootError := pathutils.Canonicalize(repository.WorkingTreeRoot())
	if rootError != nil {
		return nil, fmt.Errorf(workingTreeErrorTemplateConstant, rootError)
	}

	relativePaths := make([]string, 0, len(requestedPaths))
	for _, requestedPath := range requestedPaths {
		canonicalPath, canonicalError := canonicalizeEntryPath(requestedPath)
		if canonicalError != nil {
			return nil, canonicalError
		}

		relativePath, insideRoot := pathutils.RelativeSlashPath(workingTreeRoot, canonicalPath)
		if !insideRoot {
			return nil, PathOutsideRepositoryError{Path: requestedPath, WorkingTreeRoot: workingTreeRoot}
		}
		relativePaths = append(relativePaths, relativePath)
	}

	if applyError := repository.SetFilesFrozen(relativePaths, options.Frozen); applyError != nil {
		return nil, fmt.Errorf(freezeApplyErrorTemplateConstant, applyError)
	}

	service.logger.Debug(
		frozenFlagsAppliedMessageConstant,
		zap.Strings(logFieldPathsConstant, relativePaths),
		zap.Bool(logFieldFrozenConstant, options.Frozen),
	)

	return relativePaths, nil
}

// validatePathsExist reports every missing path in one aggregate error.
func validatePathsExist(requestedPaths []string) error {
	var aggregateError error
	for _, requestedPath := range requestedPaths {
		_, statError := os.Lstat(requestedPath)
		switch {
		case statError == nil:
		case errors.Is(statError, os.ErrNotExist):
			aggregateError = multierr.Append(aggregateError, PathDoesNotExistError{Path: requestedPath})
		default:
			aggregateError = multierr.Append(aggregateError, fmt.Errorf(pathInspectionErrorTemplateConstant, requestedPath, statError))
		}
	}
	return aggregateError
}

// canonicalizeEntryPath resolves links in the parent directory only, so a tracked symbolic link keeps its own name.
func canonicalizeEntryPath(requestedPath string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(requestedPath)
	if absoluteError != nil {
		return "", fmt.Errorf(pathResolutionErrorTemplateConstant, requestedPath, absoluteError)
	}

	parentDirectory, parentError := pathutils.Canonicalize(filepath.Dir(absolutePath))
	if parentError != nil {
		return "", fmt.Errorf(pathResolutionErrorTemplateConstant, requestedPath, parentError)
	}

	return filepath.Join(parentDirectory, filepath.Base(absolutePath)), nil
}

func openRepositoryFreezer(repositoryPath string, logger *zap.Logger) (RepositoryFreezer, error) {
	manager, openError := gitrepo.OpenRepository(repositoryPath, logger)
	if openError != nil {
		return nil, openError
	}
	return manager, nil
}
