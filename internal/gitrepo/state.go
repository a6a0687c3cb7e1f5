package gitrepo

import (
	"errors"
	"fmt"
	"os"

	billy "github.com/go-git/go-billy/v6"
)

// RepositoryState identifies the multi-step operation in progress in a repository.
type RepositoryState int

// Repository states.
const (
	StateClean RepositoryState = iota
	StateMerge
	StateRevert
	StateRevertSequence
	StateCherryPick
	StateCherryPickSequence
	StateBisect
	StateRebase
	StateRebaseInteractive
	StateRebaseMerge
	StateApplyMailbox
	StateApplyMailboxOrRebase
)

const (
	rebaseMergeInteractiveMarkerConstant = "rebase-merge/interactive"
	rebaseMergeDirectoryMarkerConstant   = "rebase-merge"
	rebaseApplyRebasingMarkerConstant    = "rebase-apply/rebasing"
	rebaseApplyApplyingMarkerConstant    = "rebase-apply/applying"
	rebaseApplyDirectoryMarkerConstant   = "rebase-apply"
	mergeHeadMarkerConstant              = "MERGE_HEAD"
	revertHeadMarkerConstant             = "REVERT_HEAD"
	cherryPickHeadMarkerConstant         = "CHERRY_PICK_HEAD"
	bisectLogMarkerConstant              = "BISECT_LOG"
	sequencerTodoMarkerConstant          = "sequencer/todo"
	stateMarkerErrorTemplateConstant     = "inspecting %s: %w"
	unknownStateNameConstant             = "unknown"
)

var repositoryStateNames = map[RepositoryState]string{
	StateClean:                "clean",
	StateMerge:                "merge",
	StateRevert:               "revert",
	StateRevertSequence:       "revertsequence",
	StateCherryPick:           "cherrypick",
	StateCherryPickSequence:   "cherrypicksequence",
	StateBisect:               "bisect",
	StateRebase:               "rebase",
	StateRebaseInteractive:    "rebaseinteractive",
	StateRebaseMerge:          "rebasemerge",
	StateApplyMailbox:         "applymailbox",
	StateApplyMailboxOrRebase: "applymailboxorrebase",
}

type stateMarker struct {
	markerPath    string
	state         RepositoryState
	sequenceState RepositoryState
}

// stateMarkers are checked in order; the first present marker decides the state.
var stateMarkers = []stateMarker{
	{markerPath: rebaseMergeInteractiveMarkerConstant, state: StateRebaseInteractive},
	{markerPath: rebaseMergeDirectoryMarkerConstant, state: StateRebaseMerge},
	{markerPath: rebaseApplyRebasingMarkerConstant, state: StateRebase},
	{markerPath: rebaseApplyApplyingMarkerConstant, state: StateApplyMailbox},
	{markerPath: rebaseApplyDirectoryMarkerConstant, state: StateApplyMailboxOrRebase},
	{markerPath: mergeHeadMarkerConstant, state: StateMerge},
	{markerPath: revertHeadMarkerConstant, state: StateRevert, sequenceState: StateRevertSequence},
	{markerPath: cherryPickHeadMarkerConstant, state: StateCherryPick, sequenceState: StateCherryPickSequence},
	{markerPath: bisectLogMarkerConstant, state: StateBisect},
}

// String returns the lowercase state name.
func (state RepositoryState) String() string {
	if stateName, known := repositoryStateNames[state]; known {
		return stateName
	}
	return unknownStateNameConstant
}

// State inspects the operation marker files in the git directory.
func (manager *RepositoryManager) State() (RepositoryState, error) {
	gitDirectory, directoryError := manager.gitDirectory()
	if directoryError != nil {
		return StateClean, directoryError
	}

	for _, marker := range stateMarkers {
		markerPresent, markerError := pathExists(gitDirectory, marker.markerPath)
		if markerError != nil {
			return StateClean, markerError
		}
		if !markerPresent {
			continue
		}

		if marker.sequenceState == StateClean {
			return marker.state, nil
		}

		sequencePresent, sequenceError := pathExists(gitDirectory, sequencerTodoMarkerConstant)
		if sequenceError != nil {
			return StateClean, sequenceError
		}
		if sequencePresent {
			return marker.sequenceState, nil
		}
		return marker.state, nil
	}

	return StateClean, nil
}

func pathExists(filesystem billy.Filesystem, relativePath string) (bool, error) {
	_, statError := filesystem.Stat(relativePath)
	if statError == nil {
		return true, nil
	}
	if errors.Is(statError, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf(stateMarkerErrorTemplateConstant, relativePath, statError)
}
