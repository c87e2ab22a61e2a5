package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	billyutil "github.com/go-git/go-billy/v5/util"

	"github.com/stackvity/json-mirror/pkg/util"
)

// Walker traverses an input directory and collects the regular files whose
// suffix is in the configured extension set.
type Walker struct {
	fs         billy.Filesystem
	root       string
	extensions ExtensionSet
	logger     *slog.Logger
}

// NewWalker creates a new Walker instance. An empty extension set selects
// DefaultExtensions.
func NewWalker(fsys billy.Filesystem, root string, extensions ExtensionSet, loggerHandler slog.Handler) *Walker {
	if len(extensions) == 0 {
		extensions = NewExtensionSet(DefaultExtensions...)
	}
	return &Walker{
		fs:         fsys,
		root:       root,
		extensions: extensions,
		logger:     slog.New(loggerHandler).With(slog.String("component", "walker")),
	}
}

// Discover returns the absolute paths of every matching file below the root,
// at any depth, in traversal order. Directories are never returned. The root
// may itself be a symbolic link to a directory. Below the root, links to
// regular files are returned under the link's own name and links to
// directories are not descended.
//
// It fails with ErrInvalidInput when the root does not exist or is not a directory.
// Sub-directories that cannot be read are logged and skipped.
func (w *Walker) Discover(ctx context.Context) ([]string, error) {
	root, err := filepath.Abs(w.root)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot resolve input directory %q: %w", ErrInvalidInput, w.root, err)
	}

	info, err := w.fs.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: input directory %q does not exist", ErrInvalidInput, root)
		}
		return nil, fmt.Errorf("%w: cannot access input directory %q: %w", ErrInvalidInput, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: input path %q is not a directory", ErrInvalidInput, root)
	}

	w.logger.Debug("Starting directory walk", slog.String("path", root), slog.Any("extensions", w.extensions.Sorted()))

	// billyutil.Walk uses Lstat on its root, so the top level is listed here
	// through ReadDir, which follows a symlinked root.
	entries, err := w.fs.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read input directory %q: %w", ErrInvalidInput, root, err)
	}

	var files []string
	visit := func(path string, fi os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			w.logger.Warn("Error accessing path during walk", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		mode := fi.Mode()
		if mode&os.ModeSymlink != 0 {
			target, statErr := w.fs.Stat(path)
			if statErr != nil {
				w.logger.Warn("Skipping broken symbolic link", slog.String("path", path), slog.String("error", statErr.Error()))
				return nil
			}
			if !target.Mode().IsRegular() {
				w.logger.Debug("Skipping symbolic link", slog.String("path", path))
				return nil
			}
			mode = target.Mode()
		}
		if !mode.IsRegular() {
			return nil
		}
		if w.extensions.Contains(util.FileSuffix(path)) {
			files = append(files, path)
		}
		return nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if walkErr := billyutil.Walk(w.fs, filepath.Join(root, entry.Name()), visit); walkErr != nil {
			if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
				w.logger.Info("Directory walk cancelled", slog.String("reason", walkErr.Error()))
			}
			return nil, walkErr
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		w.logger.Info("Directory walk cancelled", slog.String("reason", ctxErr.Error()))
		return nil, ctxErr
	}

	w.logger.Debug("Directory walk completed", slog.Int("matched", len(files)))
	return files, nil
}

// Discover is a convenience wrapper that walks root on fsys without logging.
func Discover(fsys billy.Filesystem, root string, extensions ExtensionSet) ([]string, error) {
	return NewWalker(fsys, root, extensions, slog.DiscardHandler).Discover(context.Background())
}
