package freeze

import (
	"errors"
	"fmt"
)

const (
	pathsRequiredMessageConstant         = "at least one path is required"
	pathDoesNotExistMessageConstant      = "path does not exist"
	pathOutsideRepositoryMessageConstant = "path is outside the repository working tree"
	pathErrorTemplateConstant            = "%s: %s"
	pathOutsideErrorTemplateConstant     = "%s: %s (%s)"
)

var (
	// ErrPathsRequired indicates that no usable path arguments were supplied.
	ErrPathsRequired = errors.New(pathsRequiredMessageConstant)
	// ErrPathDoesNotExist indicates a requested path is missing from the filesystem.
	ErrPathDoesNotExist = errors.New(pathDoesNotExistMessageConstant)
	// ErrPathOutsideRepository indicates a requested path lies outside the working tree.
	ErrPathOutsideRepository = errors.New(pathOutsideRepositoryMessageConstant)
)

// PathDoesNotExistError names a missing path.
type PathDoesNotExistError struct {
	Path string
}

// Error describes the missing path.
func (pathError PathDoesNotExistError) Error() string {
	return fmt.Sprintf(pathErrorTemplateConstant, pathDoesNotExistMessageConstant, pathError.Path)
}

// Unwrap returns ErrPathDoesNotExist.
func (pathError PathDoesNotExistError) Unwrap() error {
	return ErrPathDoesNotExist
}

// PathOutsideRepositoryError names a path that cannot be expressed relative to the working tree.
type PathOutsideRepositoryError struct {
	Path            string
	WorkingTreeRoot string
}

// Error describes the escaping path.
func (pathError PathOutsideRepositoryError) Error() string {
	return fmt.Sprintf(pathOutsideErrorTemplateConstant, pathOutsideRepositoryMessageConstant, pathError.Path, pathError.WorkingTreeRoot)
}

// Unwrap returns ErrPathOutsideRepository.
func (pathError PathOutsideRepositoryError) Unwrap() error {
	return ErrPathOutsideRepository
}
