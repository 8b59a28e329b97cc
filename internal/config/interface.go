package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/initr/internal/ctxlog"
	"github.com/vk/initr/internal/fsutil"
)

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads the manifest at path and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, path string) (*Model, error)
}

// Loaders dispatches to a Loader by file extension (".hcl", ".yaml", ...).
type Loaders map[string]Loader

// Load implements Loader. When path is a directory every manifest below it
// is loaded, in lexical order, and the results are merged.
func (l Loaders) Load(ctx context.Context, path string) (*Model, error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return l.loadDir(ctx, path)
	}
	return l.loadFile(ctx, path)
}

func (l Loaders) loadFile(ctx context.Context, path string) (*Model, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := l[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported manifest format %q for %s (supported: %s)", ext, path, strings.Join(l.extensions(), ", "))
	}
	return loader.Load(ctx, path)
}

func (l Loaders) loadDir(ctx context.Context, dir string) (*Model, error) {
	files, err := fsutil.FindFilesByExtension(dir, l.extensions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no manifests found in %s (supported: %s)", dir, strings.Join(l.extensions(), ", "))
	}
	ctxlog.FromContext(ctx).Debug("Found manifests.", "dir", dir, "files", files)

	merged := &Model{}
	settingsFrom := ""
	for _, file := range files {
		m, err := l.loadFile(ctx, file)
		if err != nil {
			return nil, err
		}
		if m.Settings != (Settings{}) {
			if settingsFrom != "" {
				return nil, fmt.Errorf("settings declared in both %s and %s", settingsFrom, file)
			}
			settingsFrom = file
			merged.Settings = m.Settings
		}
		merged.Dependencies = append(merged.Dependencies, m.Dependencies...)
	}
	if err := merged.checkHandles(); err != nil {
		return nil, err
	}
	return merged, nil
}

func (l Loaders) extensions() []string {
	exts := make([]string, 0, len(l))
	for ext := range l {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
