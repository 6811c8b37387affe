package govendor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/git-pkgs/notices/internal/core"
)

// scanGoMod reads the direct requirements out of go.mod. It needs no
// working build, so it also covers projects the go tool can't list.
func (r *Resolver) scanGoMod(ctx context.Context, root string) ([]*core.Record, error) {
	path := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var paths []string
	for _, req := range f.Require {
		if req.Indirect {
			continue
		}
		paths = append(paths, req.Mod.Path)
	}

	var records []*core.Record
	for _, dep := range importsToDeps(strings.Join(paths, "\n"), r.env.OwnOrgs) {
		rec, err := r.resolveDep(ctx, "go.mod", "", dep, nil)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}
