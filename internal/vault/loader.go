// Package vault reads markdown notes from disk into document snapshots.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Paintersrp/vaultlens/internal/note"
	"github.com/Paintersrp/vaultlens/internal/parser"
	"github.com/Paintersrp/vaultlens/internal/pathutil"
)

var (
	createdKeys  = []string{"created", "created_at", "date"}
	modifiedKeys = []string{"modified", "updated", "updated_at", "last_modified"}
)

// Loader walks a vault directory and builds a Corpus of its markdown notes.
type Loader struct {
	fs     afero.Fs
	root   string
	ignore []string
	log    zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithFs swaps the filesystem, mainly for tests.
func WithFs(fsys afero.Fs) Option {
	return func(l *Loader) { l.fs = fsys }
}

// WithIgnore skips notes matching any pattern. A pattern is either a folder
// name matched against every path segment, or a doublestar glob matched
// against the vault-relative path.
func WithIgnore(patterns ...string) Option {
	return func(l *Loader) { l.ignore = append(l.ignore, patterns...) }
}

// WithLogger attaches a logger for skipped notes.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// NewLoader returns a loader rooted at root on the OS filesystem.
func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		fs:   afero.NewOsFs(),
		root: pathutil.NormalizePath(root),
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the normalized vault directory.
func (l *Loader) Root() string {
	return l.root
}

// Paths returns the vault-relative, slash-separated paths of every markdown
// note, sorted. Hidden directories and ignored paths are skipped.
func (l *Loader) Paths() ([]string, error) {
	if l.root == "" {
		return nil, errors.New("vault: directory cannot be empty")
	}

	var paths []string
	err := afero.Walk(l.fs, l.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := pathutil.VaultRelative(l.root, p)
		if relErr != nil {
			return relErr
		}

		if info.IsDir() {
			if p == l.root {
				return nil
			}
			if strings.HasPrefix(info.Name(), ".") || l.ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(p), ".md") || l.ignored(rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vault: walk %s: %w", l.root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Load reads every note into a fresh Corpus. Notes that cannot be read or
// parsed are logged and left out.
func (l *Loader) Load() (*Corpus, error) {
	paths, err := l.Paths()
	if err != nil {
		return nil, err
	}

	docs := make([]*note.Document, 0, len(paths))
	for _, rel := range paths {
		doc, err := l.LoadDocument(rel)
		if err != nil {
			l.log.Warn().Err(err).Str("note", rel).Msg("skipping note")
			continue
		}
		docs = append(docs, doc)
	}
	corpus := NewCorpus(docs)
	corpus.skipped = len(paths) - len(docs)
	return corpus, nil
}

// LoadDocument reads one note by vault-relative path.
func (l *Loader) LoadDocument(rel string) (*note.Document, error) {
	full := filepath.Join(l.root, filepath.FromSlash(rel))

	info, err := l.fs.Stat(full)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(l.fs, full)
	if err != nil {
		return nil, err
	}

	snap, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("vault: %s: %w", rel, err)
	}
	tagSet, links := parser.Extract(snap)

	id := filepath.ToSlash(rel)
	modTime := info.ModTime().UTC()
	created, ok := frontMatterTime(snap.FrontMatter, createdKeys)
	if !ok {
		created = modTime
	}
	modified, ok := frontMatterTime(snap.FrontMatter, modifiedKeys)
	if !ok {
		modified = modTime
	}

	return &note.Document{
		ID:       id,
		Title:    parser.Title(snap, strings.TrimSuffix(path.Base(id), path.Ext(id))),
		Tags:     tagSet,
		Links:    links,
		Created:  created,
		Modified: modified,
	}, nil
}

func (l *Loader) ignored(rel string) bool {
	if len(l.ignore) == 0 {
		return false
	}
	segments := strings.Split(rel, "/")
	for _, pattern := range l.ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !strings.ContainsAny(pattern, "*?[{/") {
			for _, segment := range segments {
				if strings.EqualFold(segment, pattern) {
					return true
				}
			}
			continue
		}
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

func frontMatterTime(fm map[string]any, keys []string) (time.Time, bool) {
	for _, key := range keys {
		switch v := fm[key].(type) {
		case time.Time:
			return v.UTC(), true
		case string:
			if t, err := dateparse.ParseAny(strings.TrimSpace(v)); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}
