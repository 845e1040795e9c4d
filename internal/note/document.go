// Package note defines the read-only document snapshot shared by the
// relatedness scorer and the tag hierarchy.
package note

import (
	"path"
	"strings"
	"time"
)

// Document is a snapshot of one note in the vault. The analytical packages
// only read documents; the vault loader owns their construction.
type Document struct {
	// ID is the vault-relative path using forward slashes, e.g. "projects/plan.md".
	ID       string
	Title    string
	Tags     []string
	Links    []Link
	// Targets holds the IDs of the documents Links resolve to. The corpus
	// fills it in; unresolved links leave no entry.
	Targets  []string
	Created  time.Time
	Modified time.Time
}

// Link is one outbound reference as written in the note.
type Link struct {
	Target   string
	// Relative marks markdown links, which resolve against the folder of the
	// linking note. Wikilinks name a vault path, a file name or a title.
	Relative bool
}

// Name returns the base file name without its extension.
func (d *Document) Name() string {
	if d == nil {
		return ""
	}
	base := path.Base(d.ID)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// AtRoot reports whether the document lives directly in the vault root.
func (d *Document) AtRoot() bool {
	if d == nil {
		return true
	}
	dir := path.Dir(d.ID)
	return dir == "." || dir == "/" || dir == ""
}

// LinksTo reports whether one of d's resolved links points at id.
func (d *Document) LinksTo(id string) bool {
	if d == nil || id == "" {
		return false
	}
	for _, target := range d.Targets {
		if target == id {
			return true
		}
	}
	return false
}

// References reports whether d links to other.
func (d *Document) References(other *Document) bool {
	if other == nil {
		return false
	}
	return d.LinksTo(other.ID)
}
