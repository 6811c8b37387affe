// Package scan walks project trees, hands recognized manifests to the
// registered resolvers, and de-dupes the resulting dependency records
// across projects.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/git-pkgs/notices/internal/core"
	"github.com/git-pkgs/notices/internal/resolver"
)

// ProjectRecord pairs a dependency record with the project it was first
// found in.
type ProjectRecord struct {
	Project string
	Record  *core.Record
}

// Result is the outcome of one scan run.
type Result struct {
	// RunID uniquely labels this run in logs.
	RunID string
	// Projects lists the scanned project names in scan order.
	Projects []string
	// ByProject holds every record found per project, duplicates included.
	ByProject map[string][]*core.Record
	// Deduped holds one entry per distinct (namespace, name), attributed to
	// the project where it was first found, sorted by namespace then name.
	Deduped []ProjectRecord
}

// Records returns the de-duped records without project attribution.
func (r *Result) Records() []*core.Record {
	records := make([]*core.Record, len(r.Deduped))
	for i, pr := range r.Deduped {
		records[i] = pr.Record
	}
	return records
}

// Scanner locates dependency manifests under one or more project roots.
type Scanner struct {
	env         *resolver.Env
	resolvers   []resolver.Resolver
	maxDepth    int
	concurrency int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxDepth bounds how deep the walk descends. Zero or negative means
// no bound.
func WithMaxDepth(n int) Option {
	return func(s *Scanner) {
		s.maxDepth = n
	}
}

// WithConcurrency bounds how many manifests resolve in parallel.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		s.concurrency = n
	}
}

// New creates a Scanner holding one resolver per registered namespace.
func New(env *resolver.Env, opts ...Option) (*Scanner, error) {
	s := &Scanner{env: env, concurrency: 4}
	for _, opt := range opts {
		opt(s)
	}

	for _, namespace := range resolver.Supported() {
		res, err := resolver.New(namespace, "", env)
		if err != nil {
			return nil, err
		}
		s.resolvers = append(s.resolvers, res)
	}
	return s, nil
}

// Run scans every root and combines the results. Each root is one project,
// named by its base name; two roots with the same base name are an error
// because reports attribute dependencies by project name.
func (s *Scanner) Run(ctx context.Context, roots []string) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		ByProject: make(map[string][]*core.Record),
	}
	s.env.Logger.Debug().Str("run_id", result.RunID).Strs("roots", roots).Msg("starting crawl")

	type key struct{ namespace, name string }
	seen := make(map[key]bool)

	for _, root := range roots {
		project := filepath.Base(filepath.Clean(root))
		if _, dup := result.ByProject[project]; dup {
			return nil, fmt.Errorf("duplicate project name %q", project)
		}

		records, err := s.ScanProject(ctx, root)
		if err != nil {
			return nil, err
		}
		result.Projects = append(result.Projects, project)
		result.ByProject[project] = records

		for _, rec := range records {
			k := key{rec.Namespace, rec.Name}
			if !seen[k] {
				seen[k] = true
				result.Deduped = append(result.Deduped, ProjectRecord{Project: project, Record: rec})
			}
		}
	}

	sort.Slice(result.Deduped, func(i, j int) bool {
		a, b := result.Deduped[i].Record, result.Deduped[j].Record
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.Name < b.Name
	})
	return result, nil
}

// task is one manifest waiting to be resolved.
type task struct {
	res        resolver.Resolver
	sourceFile string
	path       string
}

// ScanProject walks one project root and resolves every manifest found.
// Dot directories and node_modules are never descended into; recognized
// directories (vendor trees) are only dispatched at the project root.
func (s *Scanner) ScanProject(ctx context.Context, root string) ([]*core.Record, error) {
	// Never look outside the project directory.
	if slices.Contains(strings.Split(filepath.ToSlash(root), "/"), "..") {
		return nil, fmt.Errorf(`start path %q must not contain ".."`, root)
	}

	var records []*core.Record

	// Root-level scans run once, before the walk.
	for _, res := range s.resolvers {
		rs, ok := res.(resolver.RootScanner)
		if !ok {
			continue
		}
		recs, err := rs.ScanRoot(ctx, root)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	var tasks []task
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		depth := strings.Count(rel, "/")
		name := d.Name()

		if d.IsDir() {
			if strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			if s.maxDepth > 0 && depth >= s.maxDepth-1 {
				return fs.SkipDir
			}
			if name == "node_modules" {
				return fs.SkipDir
			}
			if depth == 0 {
				for _, res := range s.resolvers {
					if res.Recognize(name, true) {
						s.env.Logger.Debug().Str("path", rel).Msg("handling manifest")
						tasks = append(tasks, task{res: res, sourceFile: rel, path: path})
						return fs.SkipDir
					}
				}
			}
			return nil
		}

		for _, res := range s.resolvers {
			if res.Recognize(name, false) {
				s.env.Logger.Debug().Str("path", rel).Msg("handling manifest")
				tasks = append(tasks, task{res: res, sourceFile: rel, path: path})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolveAll(ctx, tasks)
	if err != nil {
		return nil, err
	}
	return append(records, resolved...), nil
}

// resolveAll runs the tasks with bounded parallelism, keeping the records
// in task order.
func (s *Scanner) resolveAll(ctx context.Context, tasks []task) ([]*core.Record, error) {
	g, ctx := errgroup.WithContext(ctx)
	limit := s.concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	results := make([][]*core.Record, len(tasks))
	for i, tk := range tasks {
		g.Go(func() error {
			recs, err := tk.res.Resolve(ctx, tk.sourceFile, tk.path)
			if err != nil {
				return err
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []*core.Record
	for _, recs := range results {
		records = append(records, recs...)
	}
	return records, nil
}
