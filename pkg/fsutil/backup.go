package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// BackupSuffix is the suffix of sidecar backup files.
const BackupSuffix = ".bak"

// BackupPath returns the sidecar backup path of path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// Backup copies path to its sidecar backup, replacing an older backup, and
// returns the backup path. It returns the empty string when path does not
// exist.
func Backup(ctx context.Context, path string) (string, error) {
	stat, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", classify(path, err)
	}

	content, err := ReadFile(ctx, path)
	if err != nil {
		return "", err
	}

	backupPath := BackupPath(path)
	if err := WriteAtomic(ctx, backupPath, content, stat.Mode().Perm()); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return backupPath, nil
}
