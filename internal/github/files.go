package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/git-pkgs/notices/internal/fetch"
)

// Filenames probed on the raw file host, in search order.
var (
	LicenseFilenames = []string{
		"LICENSE", "LICENSE.txt", "LICENSE.md", "LICENCE.md", "LICENSE.rst",
		"LICENSE.markdown", "license", "license.txt", "License", "LICENSE-MIT.txt",
	}
	NoticeFilenames = []string{"NOTICE", "NOTICE.txt"}
)

// FindLicenseFile searches account/repo for a license file and returns its
// text. It returns "" with a nil error when the repo has none.
func (c *Client) FindLicenseFile(ctx context.Context, account, repo string) (string, error) {
	return c.findFile(ctx, account, repo, "master", LicenseFilenames)
}

// FindNoticeFile searches account/repo for a NOTICE file and returns its
// text. It returns "" with a nil error when the repo has none.
func (c *Client) FindNoticeFile(ctx context.Context, account, repo string) (string, error) {
	return c.findFile(ctx, account, repo, "master", NoticeFilenames)
}

func (c *Client) findFile(ctx context.Context, account, repo, branch string, filenames []string) (string, error) {
	for _, name := range filenames {
		text, err := c.fetcher.FetchText(ctx, c.RawFileURL(account, repo, branch, name))
		if err == nil && text != "" {
			return text, nil
		}
		if err != nil && !errors.Is(err, fetch.ErrNotFound) {
			return "", err
		}
	}

	// The file may simply live on a branch not named master.
	if branch == "master" {
		r, err := c.Repo(ctx, account, repo)
		if err != nil {
			return "", err
		}
		if r.DefaultBranch != "" && r.DefaultBranch != "master" {
			return c.findFile(ctx, account, repo, r.DefaultBranch, filenames)
		}
	}

	return "", nil
}

// RawFileURL returns the raw file host URL for a file on a branch.
func (c *Client) RawFileURL(account, repo, branch, filename string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", c.rawURL, account, repo, branch, filename)
}
