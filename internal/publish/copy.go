package publish

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// copyTree recursively copies src into dst, which must not exist yet.
// Symlinks are followed, like a plain recursive copy.
func copyTree(ctx context.Context, src, dst string) (int, int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, 0, err
	}
	if err := os.Mkdir(dst, srcInfo.Mode().Perm()); err != nil {
		return 0, 0, err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, 0, err
	}

	var (
		files int
		bytes int64
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return files, bytes, err
		}
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := os.Stat(srcPath)
		if err != nil {
			return files, bytes, err
		}
		if info.IsDir() {
			f, n, err := copyTree(ctx, srcPath, dstPath)
			files += f
			bytes += n
			if err != nil {
				return files, bytes, err
			}
			continue
		}

		n, err := copyFile(srcPath, dstPath)
		if err != nil {
			return files, bytes, err
		}
		files++
		bytes += n
	}
	return files, bytes, nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return 0, err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(dstFile, srcFile)
	if closeErr := dstFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, err
	}
	return n, os.Chmod(dst, srcInfo.Mode().Perm())
}
