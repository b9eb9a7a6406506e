package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/neontowel/gitix/internal/models"
)

// ReadOverview counts the commits reachable from HEAD and the local
// branches, and reports who authored HEAD. An unborn branch has no commits
// and no author.
func ReadOverview(ctx context.Context, r *Repo) (models.RepoOverview, error) {
	var ov models.RepoOverview
	repo, err := r.open()
	if err != nil {
		return ov, err
	}

	branches, err := repo.Branches()
	if err != nil {
		return ov, withKind(ErrRepositoryAccess, "list branches", err)
	}
	err = branches.ForEach(func(*plumbing.Reference) error {
		ov.Branches++
		return nil
	})
	if err != nil {
		return ov, withKind(ErrRepositoryAccess, "list branches", err)
	}

	head, err := headCommit(repo)
	if errors.Is(err, ErrUnbornBranch) {
		return ov, nil
	}
	if err != nil {
		return ov, err
	}
	ov.LatestAuthor = fmt.Sprintf("%s <%s>", head.Author.Name, head.Author.Email)
	when := head.Author.When
	ov.LatestWhen = &when

	ov.Commits, err = countCommits(ctx, repo, head.Hash)
	return ov, err
}

func countCommits(ctx context.Context, repo *gogit.Repository, from plumbing.Hash) (int, error) {
	iter, err := repo.Log(&gogit.LogOptions{From: from})
	if err != nil {
		return 0, withKind(ErrObjectAccess, "log "+from.String(), err)
	}
	defer iter.Close()
	n := 0
	err = iter.ForEach(func(*object.Commit) error {
		n++
		return ctx.Err()
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, withKind(ErrObjectAccess, "walk history", err)
	}
	return n, nil
}
