// Package freeze marks tracked files as frozen, or clears the mark, through the
// gitrepo facade after validating the requested paths.
package freeze
