package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository is returned when no repository encloses the given path.
var ErrNotRepository = errors.New("not inside a git repository")

const shortHashLen = 7

// Revision describes the HEAD of a repository.
type Revision struct {
	Commit string
	Short  string
	// Branch is empty for a detached HEAD.
	Branch string
	// Tag is set when a tag points exactly at HEAD.
	Tag string
}

// Label returns the tag, else the short commit hash, else fallback.
func (r Revision) Label(fallback string) string {
	switch {
	case r.Tag != "":
		return r.Tag
	case r.Short != "":
		return r.Short
	default:
		return fallback
	}
}

// Describe opens the repository enclosing path (searching parent
// directories for .git) and describes its HEAD.
func Describe(path string) (Revision, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Revision{}, ErrNotRepository
		}
		return Revision{}, fmt.Errorf("open repository at %s: %w", path, err)
	}

	head, err := repo.Head()
	if err != nil {
		return Revision{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	hash := head.Hash().String()
	rev := Revision{Commit: hash, Short: hash[:shortHashLen]}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}

	tag, err := exactTag(repo, head.Hash())
	if err != nil {
		return Revision{}, err
	}
	rev.Tag = tag
	return rev, nil
}

// exactTag returns the lexically first tag pointing at hash, peeling
// annotated tags.
func exactTag(repo *git.Repository, hash plumbing.Hash) (string, error) {
	iter, err := repo.Tags()
	if err != nil {
		return "", fmt.Errorf("list tags: %w", err)
	}
	defer iter.Close()

	var found string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if obj, err := repo.TagObject(target); err == nil {
			target = obj.Target
		}
		if target != hash {
			return nil
		}
		name := ref.Name().Short()
		if found == "" || name < found {
			found = name
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan tags: %w", err)
	}
	return found, nil
}
