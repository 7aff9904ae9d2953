package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ParamDirectories lists the directories exposed to the File System server.
const ParamDirectories = "directories"

// FileSystemService exposes local directories to Claude Desktop.
type FileSystemService struct {
	BaseService
}

// NewFileSystemService creates the File System service definition.
func NewFileSystemService() *FileSystemService {
	return &FileSystemService{BaseService{
		id:          FileSystem,
		displayName: "File System",
		pkg:         "@anthropic-ai/mcp-filesystem",
		defaults:    Params{ParamDirectories: []string{}},
	}}
}

func (s *FileSystemService) IsValid(p Params) bool {
	return len(p.Strings(ParamDirectories)) > 0
}

func (s *FileSystemService) Check(p Params) []string {
	if len(p.Strings(ParamDirectories)) == 0 {
		return []string{"At least one directory must be added for File System service."}
	}
	return nil
}

// Export emits a single entry. Only the first directory is passed to the
// server, even when several are configured.
func (s *FileSystemService) Export(p Params, _ ModelParamsFunc) []Entry {
	args := []string{s.pkg}
	if dirs := p.Strings(ParamDirectories); len(dirs) > 0 {
		args = append(args, "--directory", dirs[0])
	}
	return []Entry{{Key: string(s.id), Command: "npx", Args: args}}
}

// --- Editor ---

// Directories returns the configured directories.
func Directories(p Params) []string {
	return p.Strings(ParamDirectories)
}

// AddDirectory appends dir to the directory list. The path is trimmed and
// cleaned; blank paths and duplicates are rejected.
func AddDirectory(p Params, dir string) (Params, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return p, ErrEmptyDirectory
	}
	dir = filepath.Clean(dir)

	dirs := p.Strings(ParamDirectories)
	for _, existing := range dirs {
		if filepath.Clean(existing) == dir {
			return p, fmt.Errorf("%w: %s", ErrDuplicateDirectory, dir)
		}
	}
	return p.With(ParamDirectories, append(dirs, dir)), nil
}

// RemoveDirectory drops dir from the list. Removing an absent directory is a no-op.
func RemoveDirectory(p Params, dir string) Params {
	dir = filepath.Clean(strings.TrimSpace(dir))
	dirs := p.Strings(ParamDirectories)
	kept := make([]string, 0, len(dirs))
	for _, existing := range dirs {
		if filepath.Clean(existing) != dir {
			kept = append(kept, existing)
		}
	}
	return p.With(ParamDirectories, kept)
}

// DirectoryLister lists candidate directories under root for the browse dialog.
type DirectoryLister interface {
	List(ctx context.Context, root string) ([]string, error)
}

// Browse asks the lister for directories under root.
func Browse(ctx context.Context, lister DirectoryLister, root string) ([]string, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		root = home
	}
	dirs, err := lister.List(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	return dirs, nil
}

// OSDirectoryLister lists the visible subdirectories of root on the local disk.
type OSDirectoryLister struct {
	ShowHidden bool
}

func (l OSDirectoryLister) List(ctx context.Context, root string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if !l.ShowHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dirs = append(dirs, filepath.Join(root, e.Name()))
	}
	sort.Strings(dirs)
	return dirs, nil
}
