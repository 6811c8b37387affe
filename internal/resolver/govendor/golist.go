package govendor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/git-pkgs/notices/internal/core"
	"github.com/git-pkgs/notices/internal/resolver"
)

// ScanRoot locates Go dependencies from the project root, using whichever
// scan method the environment selects. The vendor-dir method finds its
// input during the directory walk instead, so it reports nothing here.
func (r *Resolver) ScanRoot(ctx context.Context, root string) ([]*core.Record, error) {
	switch r.env.GoScanMethod {
	case resolver.GoScanGoList:
		return r.scanGoList(ctx, root)
	case resolver.GoScanGoMod:
		return r.scanGoMod(ctx, root)
	}
	return nil, nil
}

// scanGoList asks the go tool which vendored packages the project imports.
// Unlike the vendor-dir walk, this only reports dependencies the code
// actually reaches.
func (r *Resolver) scanGoList(ctx context.Context, root string) ([]*core.Record, error) {
	out, stderr, err := goList(ctx, root, "./...")
	if err != nil {
		return nil, fmt.Errorf("%q failed: %w: %s", "go list", err, stderr)
	}

	// Keep the project's own packages; their imports name the vendored ones.
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if line != "" && !strings.Contains(line, "/vendor/") {
			paths = append(paths, line)
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}

	args := append([]string{"-f", `{{ join .Imports "\n" }}`}, paths...)
	out, stderr, err = goList(ctx, root, args...)
	if err != nil {
		// Vendor directories holding only non-Go assets make go list
		// complain; there is nothing to report for them.
		if strings.Contains(stderr, "no buildable Go source files in") {
			r.env.Logger.Warn().Str("root", root).Msg("vendor tree has no buildable Go source files")
			return nil, nil
		}
		return nil, fmt.Errorf("%q failed: %w: %s", "go list", err, stderr)
	}

	var constraints map[string]*sourceConstraint
	if r.env.UseGopkgToml {
		constraints, err = readGopkgConstraints(filepath.Join(root, "Gopkg.toml"))
		if err != nil {
			return nil, err
		}
	}

	var records []*core.Record
	for _, dep := range importsToDeps(out, r.env.OwnOrgs) {
		rec, err := r.resolveDep(ctx, "go list", "", dep, constraints[dep])
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

func goList(ctx context.Context, dir string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(ctx, "go", append([]string{"list"}, args...)...)
	cmd.Dir = dir
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), strings.TrimSpace(errBuf.String()), err
}

// importsToDeps reduces a newline-separated list of import paths to the
// distinct dependencies behind them. Standard library imports, first-party
// imports under ownOrgs, and anything else without a hosting domain are
// dropped; the rest are cut down to their host/account/repo root.
func importsToDeps(out string, ownOrgs []string) []string {
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "/")

		if i := slices.Index(fields, "vendor"); i >= 0 {
			fields = fields[i+1:]
		} else if strings.Contains(fields[0], ".") {
			if len(fields) > 1 && slices.Contains(ownOrgs, fields[1]) {
				continue
			}
		} else {
			// Standard library.
			continue
		}
		if len(fields) == 0 || !strings.Contains(fields[0], ".") {
			continue
		}

		fields = fields[:min(3, len(fields))]
		if (fields[0] == "google.golang.org" || fields[0] == "go.uber.org") && len(fields) > 2 {
			fields = fields[:2]
		}
		seen[strings.Join(fields, "/")] = true
	}

	deps := make([]string, 0, len(seen))
	for dep := range seen {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

type gopkgManifest struct {
	Constraints []sourceConstraint `toml:"constraint"`
}

// readGopkgConstraints reads the dep tool's Gopkg.toml and indexes its
// source constraints by dependency name.
func readGopkgConstraints(path string) (map[string]*sourceConstraint, error) {
	var manifest gopkgManifest
	if _, err := toml.DecodeFile(path, &manifest); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	constraints := make(map[string]*sourceConstraint, len(manifest.Constraints))
	for i := range manifest.Constraints {
		c := &manifest.Constraints[i]
		constraints[c.Name] = c
	}
	return constraints, nil
}
