// Package gitrepo contains helpers for interrogating and manipulating a Git repository.
//
// It exposes RepositoryManager, a facade over go-git that returns decoded
// configuration, remotes, branch and operation state, staged and changed file
// sets, stash counts, and the frozen-file marker kept in bit 15 of each index
// entry's flag word. Every call reads the current on-disk state; nothing is
// cached between calls.
package gitrepo
