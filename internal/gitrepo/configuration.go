package gitrepo

import (
	"fmt"

	"github.com/go-git/go-git/v6/config"
	"go.uber.org/zap"
)

const (
	configUnavailableTemplateConstant    = "%w: %v"
	remoteListErrorTemplateConstant      = "listing remotes: %w"
	remoteSectionNameConstant            = "remote"
	configurationFallbackMessageConstant = "global configuration unavailable, using repository configuration"
	logFieldErrorConstant                = "error"
	logFieldRemoteCountConstant          = "remote_count"
	remotesEnumeratedMessageConstant     = "remotes enumerated"
	userIncompleteMessageConstant        = "user.name or user.email not configured"
)

// User is the identity configured through user.name and user.email.
type User struct {
	Name  string
	Email string
}

// Config is a read-only snapshot of the configuration relevant to reports.
type Config struct {
	// User is nil unless both user.name and user.email are set.
	User *User
}

// Remote is a configured remote and its first URL.
type Remote struct {
	Name string
	URL  string
}

// Config reads user identity from the merged repository and global configuration.
func (manager *RepositoryManager) Config() (Config, error) {
	repositoryConfiguration, scopedError := manager.repository.ConfigScoped(config.GlobalScope)
	if scopedError != nil {
		manager.logger.Debug(configurationFallbackMessageConstant, zap.String(logFieldErrorConstant, scopedError.Error()))

		var localError error
		repositoryConfiguration, localError = manager.repository.Config()
		if localError != nil {
			return Config{}, fmt.Errorf(configUnavailableTemplateConstant, ErrConfigUnavailable, localError)
		}
	}

	userName := repositoryConfiguration.User.Name
	userEmail := repositoryConfiguration.User.Email
	if len(userName) == 0 || len(userEmail) == 0 {
		manager.logger.Debug(userIncompleteMessageConstant)
		return Config{}, nil
	}

	return Config{User: &User{Name: userName, Email: userEmail}}, nil
}

// Remotes lists configured remotes in the order their sections appear in the configuration file.
func (manager *RepositoryManager) Remotes() ([]Remote, error) {
	repositoryConfiguration, configurationError := manager.repository.Config()
	if configurationError != nil {
		return nil, fmt.Errorf(remoteListErrorTemplateConstant, configurationError)
	}

	remoteSubsections := repositoryConfiguration.Raw.Section(remoteSectionNameConstant).Subsections
	remotes := make([]Remote, 0, len(remoteSubsections))
	seenRemoteNames := make(map[string]struct{}, len(remoteSubsections))

	for _, remoteSubsection := range remoteSubsections {
		remoteName := remoteSubsection.Name
		if _, alreadySeen := seenRemoteNames[remoteName]; alreadySeen {
			continue
		}
		seenRemoteNames[remoteName] = struct{}{}

		resolvedRemote, resolveError := manager.repository.Remote(remoteName)
		if resolveError != nil {
			return nil, RemoteResolutionError{RemoteName: remoteName, Cause: resolveError}
		}

		remoteURL := ""
		if remoteURLs := resolvedRemote.Config().URLs; len(remoteURLs) > 0 {
			remoteURL = remoteURLs[0]
		}

		remotes = append(remotes, Remote{Name: remoteName, URL: remoteURL})
	}

	manager.logger.Debug(remotesEnumeratedMessageConstant, zap.Int(logFieldRemoteCountConstant, len(remotes)))

	return remotes, nil
}
