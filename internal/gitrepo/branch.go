package gitrepo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/storer"
	"go.uber.org/zap"
)

const (
	headReadErrorTemplateConstant   = "reading HEAD: %w"
	branchFallbackMessageConstant   = "checked-out branch not found, using symbolic HEAD target"
	branchListFailedMessageConstant = "listing branches failed"
	logFieldBranchConstant          = "branch"
)

// CurrentBranch returns the short name of the checked-out branch.
// An unborn branch is reported through the symbolic HEAD target; a detached or missing HEAD yields ErrNoHead.
func (manager *RepositoryManager) CurrentBranch() (string, error) {
	headReference, headError := manager.repository.Storer.Reference(plumbing.HEAD)
	if headError != nil {
		if errors.Is(headError, plumbing.ErrReferenceNotFound) {
			return "", ErrNoHead
		}
		return "", fmt.Errorf(headReadErrorTemplateConstant, headError)
	}

	if headReference.Type() != plumbing.SymbolicReference {
		return "", ErrNoHead
	}
	headTarget := headReference.Target()

	checkedOutBranch, branchListError := manager.findLocalBranch(headTarget)
	if branchListError != nil {
		manager.logger.Debug(branchListFailedMessageConstant, zap.Error(branchListError))
	}

	if len(checkedOutBranch) > 0 {
		return checkedOutBranch, nil
	}

	fallbackBranch := headTarget.Short()
	manager.logger.Debug(branchFallbackMessageConstant, zap.String(logFieldBranchConstant, fallbackBranch))

	return fallbackBranch, nil
}

func (manager *RepositoryManager) findLocalBranch(branchReferenceName plumbing.ReferenceName) (string, error) {
	branchIterator, iteratorError := manager.repository.Branches()
	if iteratorError != nil {
		return "", iteratorError
	}
	defer branchIterator.Close()

	matchingBranch := ""
	iterationError := branchIterator.ForEach(func(branchReference *plumbing.Reference) error {
		if branchReference.Name() == branchReferenceName {
			matchingBranch = branchReference.Name().Short()
			return storer.ErrStop
		}
		return nil
	})
	if iterationError != nil && !errors.Is(iterationError, storer.ErrStop) {
		return "", iterationError
	}

	return matchingBranch, nil
}
