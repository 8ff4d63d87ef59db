// Package vcs resolves version-control metadata for the code under test.
package vcs

import (
	"github.com/go-git/go-git/v5"
	"github.com/rs/zerolog/log"
)

// HeadCommit returns the HEAD commit SHA of the repository containing
// path, searching parent directories. Best effort: any failure returns
// an empty string and never fails the gate.
func HeadCommit(path string) string {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("no git repository found")
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		log.Debug().Err(err).Msg("could not resolve HEAD")
		return ""
	}

	return head.Hash().String()
}
