package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalArchive stores files under basePath/YYYY-MM/, prefixing each
// with a short unique id so repeated filenames never collide.
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates the archive directory if needed.
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &LocalArchive{basePath: basePath}, nil
}

// Store moves srcPath into the archive. A cross-device move falls
// back to copy and remove.
func (a *LocalArchive) Store(ctx context.Context, srcPath string) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stat, err := os.Stat(srcPath)
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}

	now := time.Now()
	monthDir := filepath.Join(a.basePath, now.Format("2006-01"))
	if err := os.MkdirAll(monthDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive month directory: %w", err)
	}

	id := uuid.New()
	name := sanitizeFilename(filepath.Base(srcPath))
	dst := filepath.Join(monthDir, fmt.Sprintf("%s_%s", id.String()[:8], name))

	if err := os.Rename(srcPath, dst); err != nil {
		if err := copyFile(srcPath, dst); err != nil {
			return nil, fmt.Errorf("archive file: %w", err)
		}
		if err := os.Remove(srcPath); err != nil {
			return nil, fmt.Errorf("remove archived source: %w", err)
		}
	}

	return &FileInfo{
		ID:         id,
		Name:       name,
		Size:       stat.Size(),
		Path:       dst,
		ArchivedAt: now,
	}, nil
}

// List walks the archive tree, newest first.
func (a *LocalArchive) List(ctx context.Context) ([]*FileInfo, error) {
	var files []*FileInfo
	err := filepath.WalkDir(a.basePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, &FileInfo{
			Name:       d.Name(),
			Size:       info.Size(),
			Path:       path,
			ArchivedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ArchivedAt.After(files[j].ArchivedAt)
	})
	return files, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_")
	return replacer.Replace(name)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return err
	}
	return out.Close()
}
