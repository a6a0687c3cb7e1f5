package gitrepo

import (
	"errors"
	"fmt"
)

const (
	repositoryNotFoundMessageConstant     = "not a git repository"
	configUnavailableMessageConstant      = "repository configuration unavailable"
	remoteResolutionMessageConstant       = "remote could not be resolved"
	pathNotIndexedMessageConstant         = "path is not tracked in the index"
	noHeadMessageConstant                 = "no HEAD branch found"
	indexLockedMessageConstant            = "index is locked by another process"
	storageUnsupportedMessageConstant     = "repository storage does not expose a git directory"
	remoteResolutionErrorTemplateConstant = "%s: %s: %v"
	pathNotIndexedErrorTemplateConstant   = "%s: %s"
)

var (
	// ErrRepositoryNotFound indicates no repository exists at or above the requested path.
	ErrRepositoryNotFound = errors.New(repositoryNotFoundMessageConstant)
	// ErrConfigUnavailable indicates the repository configuration could not be loaded.
	ErrConfigUnavailable = errors.New(configUnavailableMessageConstant)
	// ErrRemoteResolution indicates an enumerated remote name could not be resolved.
	ErrRemoteResolution = errors.New(remoteResolutionMessageConstant)
	// ErrPathNotIndexed indicates a path has no stage 0 entry in the index.
	ErrPathNotIndexed = errors.New(pathNotIndexedMessageConstant)
	// ErrNoHead indicates neither the checked-out branch nor the symbolic HEAD target could be resolved.
	ErrNoHead = errors.New(noHeadMessageConstant)
	// ErrIndexLocked indicates index.lock already exists.
	ErrIndexLocked = errors.New(indexLockedMessageConstant)
	// ErrRepositoryStorageUnsupported indicates the repository storage is not filesystem backed.
	ErrRepositoryStorageUnsupported = errors.New(storageUnsupportedMessageConstant)
)

// RemoteResolutionError reports the remote name that could not be resolved.
type RemoteResolutionError struct {
	RemoteName string
	Cause      error
}

// Error describes the resolution failure.
func (resolutionError RemoteResolutionError) Error() string {
	return fmt.Sprintf(remoteResolutionErrorTemplateConstant, remoteResolutionMessageConstant, resolutionError.RemoteName, resolutionError.Cause)
}

// Unwrap exposes the sentinel and the underlying cause.
func (resolutionError RemoteResolutionError) Unwrap() []error {
	return []error{ErrRemoteResolution, resolutionError.Cause}
}

// PathNotIndexedError reports a path without a normal index entry.
type PathNotIndexedError struct {
	Path string
}

// Error describes the missing index entry.
func (indexError PathNotIndexedError) Error() string {
	return fmt.Sprintf(pathNotIndexedErrorTemplateConstant, pathNotIndexedMessageConstant, indexError.Path)
}

// Unwrap returns ErrPathNotIndexed.
func (indexError PathNotIndexedError) Unwrap() error {
	return ErrPathNotIndexed
}
