package fzf

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"

	"github.com/Paintersrp/vaultlens/internal/note"
)

// ErrNoSelection is returned when the finder is closed without a choice.
var ErrNoSelection = errors.New("no note selected")

// FuzzyFinder lets the user pick a note of the vault interactively.
type FuzzyFinder struct {
	vaultDir string
	Header   string
	docs     []*note.Document
	fs       afero.Fs
	profile  termenv.Profile
}

func NewFuzzyFinder(vaultDir, header string, docs []*note.Document) *FuzzyFinder {
	return &FuzzyFinder{
		vaultDir: vaultDir,
		Header:   header,
		docs:     docs,
		fs:       afero.NewOsFs(),
		profile:  termenv.ANSI256,
	}
}

// Run opens the finder and returns the ID of the chosen note.
func (f *FuzzyFinder) Run(query string) (string, error) {
	if len(f.docs) == 0 {
		return "", fmt.Errorf("vault has no notes to choose from")
	}

	idx, err := fuzzyfinder.Find(f.docs, f.label, f.options(query)...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", ErrNoSelection
		}
		return "", fmt.Errorf("error selecting note: %w", err)
	}

	return f.docs[idx].ID, nil
}

func (f *FuzzyFinder) options(query string) []fuzzyfinder.Option {
	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(f.renderMarkdownPreview),
	}

	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}

	if f.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(f.Header))
	}

	return options
}

func (f *FuzzyFinder) label(i int) string {
	doc := f.docs[i]
	title := doc.Title
	if title == "" {
		title = doc.Name()
	}

	if len(doc.Tags) == 0 {
		return fmt.Sprintf("%s [No tags] ", title)
	}
	return fmt.Sprintf("%s [Tags: %s] ", title, strings.Join(doc.Tags, ", "))
}

func (f *FuzzyFinder) renderMarkdownPreview(i, w, h int) string {
	if i < 0 || i >= len(f.docs) {
		return ""
	}

	path := filepath.Join(f.vaultDir, filepath.FromSlash(f.docs[i].ID))
	content, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return "Error reading file"
	}

	wrap := 100
	if w > 4 && w-4 < wrap {
		wrap = w - 4
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(wrap),
		glamour.WithColorProfile(f.profile),
	)
	if err != nil {
		return "Error rendering markdown"
	}

	markdown, err := r.Render(string(content))
	if err != nil {
		return "Error rendering markdown"
	}

	return markdown
}
