package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ConfigPaths holds the configuration files found for one load. Empty
// fields mean no file was found at that level.
type ConfigPaths struct {
	// System is /etc/mdstream/config.yaml or its Windows equivalent.
	System string

	// User is $XDG_CONFIG_HOME/mdstream/config.yaml.
	User string

	// Project is the nearest .mdstream.yml above the working directory.
	Project string

	// Explicit is the file named by --config.
	Explicit string
}

// projectConfigNames are searched in order in each directory.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectConfigNames = []string{
	".mdstream.yml",
	".mdstream.yaml",
	"mdstream.yml",
	"mdstream.yaml",
}

// levelConfigNames are the file names of the system and user configs.
//
//nolint:gochecknoglobals // Read-only lookup table.
var levelConfigNames = []string{"config.yaml", "config.yml"}

// repositoryMarkers end the upward project search. A .git file marks a
// worktree.
//
//nolint:gochecknoglobals // Read-only lookup table.
var repositoryMarkers = []string{".git", ".hg", ".svn"}

// DiscoverPaths finds the system, user and project configuration files
// for a working directory.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discover config: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	return &ConfigPaths{
		System:  firstFile(systemConfigDir(), levelConfigNames),
		User:    firstFile(userConfigDir(), levelConfigNames),
		Project: project,
	}, nil
}

func systemConfigDir() string {
	if runtime.GOOS != "windows" {
		return "/etc/mdstream"
	}
	programData := os.Getenv("ProgramData")
	if programData == "" {
		programData = `C:\ProgramData`
	}
	return filepath.Join(programData, "mdstream")
}

func userConfigDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "mdstream")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mdstream")
}

// FindProjectConfig walks up from startDir to the nearest project config
// file. The walk stops at a repository root, the home directory or the
// filesystem root; reaching one without a match returns "".
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}

		if path := firstFile(dir, projectConfigNames); path != "" {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if isRepositoryRoot(dir) || dir == home || parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// firstFile returns the first of names that is a regular file in dir.
func firstFile(dir string, names []string) string {
	if dir == "" {
		return ""
	}
	for _, name := range names {
		if path := filepath.Join(dir, name); fileExists(path) {
			return path
		}
	}
	return ""
}

func isRepositoryRoot(dir string) bool {
	for _, marker := range repositoryMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// fileExists reports whether path is an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
