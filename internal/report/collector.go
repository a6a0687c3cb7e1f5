package report

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/gitreport/internal/gitrepo"
	pathutils "github.com/temirov/gitreport/internal/utils/path"
)

const (
	canonicalPathErrorTemplateConstant = "resolving report path: %w"
	remotesErrorTemplateConstant       = "listing remotes: %w"
	stagedErrorTemplateConstant        = "listing staged files: %w"
	changedErrorTemplateConstant       = "listing changed files: %w"
	frozenErrorTemplateConstant        = "listing frozen files: %w"
	stateErrorTemplateConstant         = "reading repository state: %w"
	stashErrorTemplateConstant         = "counting stashes: %w"
	userUnavailableMessageConstant     = "user configuration unavailable"
	branchUnavailableMessageConstant   = "current branch unavailable"
	logFieldErrorConstant              = "error"
)

// RepositoryInspector is the read-only repository surface the report needs.
type RepositoryInspector interface {
	Remotes() ([]gitrepo.Remote, error)
	Config() (gitrepo.Config, error)
	StagedFiles() ([]string, error)
	ChangedFiles() ([]string, error)
	FrozenFiles() ([]string, error)
	CurrentBranch() (string, error)
	State() (gitrepo.RepositoryState, error)
	StashCount() (int, error)
}

// Summary is everything a report prints.
type Summary struct {
	CanonicalPath string
	Remotes       []gitrepo.Remote
	User          *gitrepo.User
	Branch        string
	BranchKnown   bool
	State         gitrepo.RepositoryState
	StagedFiles   []string
	ChangedFiles  []string
	FrozenFiles   []string
	StashCount    int
}

// Collector gathers a Summary from a RepositoryInspector.
type Collector struct {
	logger *zap.Logger
}

// NewCollector constructs a Collector; a nil logger disables diagnostics.
func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

// Collect reads every summary section. Configuration and branch failures yield an
// absent user and an unknown branch; any other failure aborts collection.
func (collector *Collector) Collect(inspector RepositoryInspector, requestedPath string) (Summary, error) {
	canonicalPath, canonicalError := pathutils.Canonicalize(requestedPath)
	if canonicalError != nil {
		return Summary{}, fmt.Errorf(canonicalPathErrorTemplateConstant, canonicalError)
	}

	summary := Summary{CanonicalPath: canonicalPath}

	remotes, remotesError := inspector.Remotes()
	if remotesError != nil {
		return Summary{}, fmt.Errorf(remotesErrorTemplateConstant, remotesError)
	}
	summary.Remotes = remotes

	configuration, configurationError := inspector.Config()
	if configurationError != nil {
		collector.logger.Debug(userUnavailableMessageConstant, zap.Error(configurationError))
	} else {
		summary.User = configuration.User
	}

	stagedFiles, stagedError := inspector.StagedFiles()
	if stagedError != nil {
		return Summary{}, fmt.Errorf(stagedErrorTemplateConstant, stagedError)
	}
	summary.StagedFiles = stagedFiles

	changedFiles, changedError := inspector.ChangedFiles()
	if changedError != nil {
		return Summary{}, fmt.Errorf(changedErrorTemplateConstant, changedError)
	}
	summary.ChangedFiles = changedFiles

	frozenFiles, frozenError := inspector.FrozenFiles()
	if frozenError != nil {
		return Summary{}, fmt.Errorf(frozenErrorTemplateConstant, frozenError)
	}
	summary.FrozenFiles = frozenFiles

	branchName, branchError := inspector.CurrentBranch()
	if branchError != nil {
		collector.logger.Debug(branchUnavailableMessageConstant, zap.Error(branchError))
	} else {
		summary.Branch = branchName
		summary.BranchKnown = true
	}

	state, stateError := inspector.State()
	if stateError != nil {
		return Summary{}, fmt.Errorf(stateErrorTemplateConstant, stateError)
	}
	summary.State = state

	stashCount, stashError := inspector.StashCount()
	if stashError != nil {
		return Summary{}, fmt.Errorf(stashErrorTemplateConstant, stashError)
	}
	summary.StashCount = stashCount

	return summary, nil
}
