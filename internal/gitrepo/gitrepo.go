// Package gitrepo acquires the repository to analyze: a local directory is
// used in place, a remote URL is cloned to a temporary directory. It also
// collects git metadata for the report header.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Local is an acquired repository on disk. Cleanup removes the clone
// directory; it is a no-op for local paths.
type Local struct {
	Path    string
	Name    string
	Cloned  bool
	Cleanup func()
}

// Meta is git metadata gathered for the report. Err is set when the
// directory is not a git repository; the analysis still proceeds.
type Meta struct {
	IsRepo   bool
	URL      string
	Branch   string
	Branches []string
	Commits  int
	Last     Commit
	Err      error
}

// Commit describes the most recent commit.
type Commit struct {
	Hash    string
	Author  string
	Email   string
	Date    string
	Subject string
}

// IsRemote reports whether src looks like a clonable URL rather than a
// local path.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") ||
		strings.HasPrefix(src, "https://") ||
		strings.HasPrefix(src, "git@") ||
		strings.HasPrefix(src, "ssh://")
}

// RepoName derives a display name from a URL or path.
func RepoName(src string) string {
	name := strings.TrimSuffix(filepath.Base(strings.TrimSuffix(src, "/")), ".git")
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" || name == "." {
		if abs, err := filepath.Abs(src); err == nil {
			name = filepath.Base(abs)
		}
	}
	return name
}

// Acquire makes the repository available on local disk. Remote sources are
// cloned shallowly under a bounded timeout; local paths are validated and
// used in place. Branch selection is best-effort for local paths: an
// explicit branch is checked out, falling back to origin/<branch>.
func Acquire(ctx context.Context, src, branch string, timeout time.Duration) (*Local, error) {
	if !IsRemote(src) {
		info, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("repository path %s: %w", src, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("repository path %s is not a directory", src)
		}
		abs, err := filepath.Abs(src)
		if err != nil {
			return nil, err
		}
		if branch != "" {
			if err := checkout(ctx, abs, branch); err != nil {
				return nil, err
			}
		}
		return &Local{Path: abs, Name: RepoName(abs), Cleanup: func() {}}, nil
	}

	dir, err := os.MkdirTemp("", "repo-analyzer-*")
	if err != nil {
		return nil, fmt.Errorf("creating clone directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	cloneCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		cloneCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := []string{"clone", "--depth", "1"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, src, dir)
	cmd := exec.CommandContext(cloneCtx, "git", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		if cloneCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("cloning %s: timed out after %s", src, timeout)
		}
		return nil, fmt.Errorf("cloning %s: %v: %s", src, err, strings.TrimSpace(string(out)))
	}
	return &Local{Path: dir, Name: RepoName(src), Cloned: true, Cleanup: cleanup}, nil
}

// checkout switches a local repository to the requested branch, trying the
// local branch first and then a remote-tracking one.
func checkout(ctx context.Context, dir, branch string) error {
	if _, err := gitOutput(ctx, dir, "checkout", branch); err == nil {
		return nil
	}
	if _, err := gitOutput(ctx, dir, "checkout", "-b", branch, "origin/"+branch); err != nil {
		return fmt.Errorf("checking out branch %s: %w", branch, err)
	}
	return nil
}

// Info gathers git metadata from an acquired repository. Failures are
// recorded in Meta.Err rather than returned: a plain directory is still
// analyzable.
func Info(ctx context.Context, dir string) Meta {
	meta := Meta{}
	if _, err := gitOutput(ctx, dir, "rev-parse", "--git-dir"); err != nil {
		meta.Err = fmt.Errorf("not a git repository: %w", err)
		return meta
	}
	meta.IsRepo = true

	if url, err := gitOutput(ctx, dir, "remote", "get-url", "origin"); err == nil {
		meta.URL = strings.TrimSpace(url)
	}
	if branch, err := gitOutput(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		meta.Branch = strings.TrimSpace(branch)
	}
	if out, err := gitOutput(ctx, dir, "branch", "--format=%(refname:short)"); err == nil {
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			if line != "" {
				meta.Branches = append(meta.Branches, line)
			}
		}
	}
	if out, err := gitOutput(ctx, dir, "rev-list", "--count", "HEAD"); err == nil {
		fmt.Sscanf(strings.TrimSpace(out), "%d", &meta.Commits)
	}
	if out, err := gitOutput(ctx, dir, "log", "-1", "--format=%H%n%an%n%ae%n%ad%n%s", "--date=iso"); err == nil {
		parts := strings.SplitN(strings.TrimRight(out, "\n"), "\n", 5)
		if len(parts) == 5 {
			meta.Last = Commit{
				Hash:    parts[0],
				Author:  parts[1],
				Email:   parts[2],
				Date:    parts[3],
				Subject: parts[4],
			}
		}
	}
	return meta
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
