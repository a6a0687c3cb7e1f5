package pathutils

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	parentDirectoryConstant            = ".."
	canonicalPathErrorTemplateConstant = "resolving %s: %w"
)

// PathSanitizer normalizes user supplied path arguments.
type PathSanitizer struct {
	homeExpander *HomeExpander
}

// NewPathSanitizer constructs a PathSanitizer using the provided expander, or the operating system home when nil.
func NewPathSanitizer(homeExpander *HomeExpander) *PathSanitizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &PathSanitizer{homeExpander: homeExpander}
}

// Sanitize trims whitespace, expands ~, cleans each path, and drops empty and repeated entries.
// The first occurrence of each path keeps its position. Nil is returned when nothing remains.
func (sanitizer *PathSanitizer) Sanitize(candidatePaths []string) []string {
	expander := sanitizer.resolveHomeExpander()

	var sanitizedPaths []string
	seenPaths := make(map[string]struct{}, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		trimmedPath := strings.TrimSpace(candidatePath)
		if len(trimmedPath) == 0 {
			continue
		}

		cleanedPath := filepath.Clean(expander.Expand(trimmedPath))
		if _, alreadySeen := seenPaths[cleanedPath]; alreadySeen {
			continue
		}
		seenPaths[cleanedPath] = struct{}{}
		sanitizedPaths = append(sanitizedPaths, cleanedPath)
	}

	return sanitizedPaths
}

func (sanitizer *PathSanitizer) resolveHomeExpander() *HomeExpander {
	if sanitizer != nil && sanitizer.homeExpander != nil {
		return sanitizer.homeExpander
	}
	return NewHomeExpander()
}

// Canonicalize returns the absolute path with symbolic links resolved.
func Canonicalize(candidatePath string) (string, error) {
	absolutePath, absoluteError := filepath.Abs(candidatePath)
	if absoluteError != nil {
		return "", fmt.Errorf(canonicalPathErrorTemplateConstant, candidatePath, absoluteError)
	}

	resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath)
	if resolveError != nil {
		return "", fmt.Errorf(canonicalPathErrorTemplateConstant, candidatePath, resolveError)
	}

	return resolvedPath, nil
}

// RelativeSlashPath expresses candidatePath relative to rootPath with forward slashes.
// The second result is false when candidatePath lies outside rootPath or equals it.
func RelativeSlashPath(rootPath string, candidatePath string) (string, bool) {
	relativePath, relativeError := filepath.Rel(rootPath, candidatePath)
	if relativeError != nil {
		return "", false
	}

	if relativePath == "." || relativePath == parentDirectoryConstant || strings.HasPrefix(relativePath, parentDirectoryConstant+string(filepath.Separator)) {
		return "", false
	}

	return filepath.ToSlash(relativePath), true
}
