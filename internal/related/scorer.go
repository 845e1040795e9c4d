// Package related ranks the notes of a vault by how closely they relate to a
// focused note.
//
// A candidate's score is the weighted sum of four factors:
//
//	tag   number of tag prefix segments shared with the focus
//	title edit-distance similarity of the lowercase titles
//	path  edit-distance similarity of the vault paths (nested notes only)
//	link  1 per direction of resolved reference between the two notes (max 2)
package related

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Paintersrp/vaultlens/internal/cache"
	"github.com/Paintersrp/vaultlens/internal/note"
	"github.com/Paintersrp/vaultlens/internal/similarity"
	"github.com/Paintersrp/vaultlens/internal/tags"
)

// Corpus exposes the documents visible during one computation.
type Corpus interface {
	IDs() []string
	Document(id string) (*note.Document, bool)
}

// Weights scale each factor of the relatedness score.
type Weights struct {
	Tag   float64 `yaml:"tag"   json:"tag"   mapstructure:"tag"   validate:"gte=0"`
	Title float64 `yaml:"title" json:"title" mapstructure:"title" validate:"gte=0"`
	Path  float64 `yaml:"path"  json:"path"  mapstructure:"path"  validate:"gte=0"`
	Link  float64 `yaml:"link"  json:"link"  mapstructure:"link"  validate:"gte=0"`
}

// DefaultWeights weighs every factor equally.
func DefaultWeights() Weights {
	return Weights{Tag: 1, Title: 1, Path: 1, Link: 1}
}

// Breakdown holds the weighted contribution of each factor.
type Breakdown struct {
	Tag   float64
	Title float64
	Path  float64
	Link  float64
}

// Result is one ranked candidate.
type Result struct {
	ID        string
	Score     float64
	Breakdown Breakdown
}

// Scorer ranks a corpus against a focus document.
type Scorer struct {
	weights Weights
	cache   *cache.TagSegments
	log     zerolog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLogger attaches a logger for skipped candidates.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scorer) { s.log = log }
}

// NewScorer builds a scorer reading prefix segments from segments. A nil
// cache expands tags on every call.
func NewScorer(weights Weights, segments *cache.TagSegments, opts ...Option) *Scorer {
	s := &Scorer{weights: weights, cache: segments, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the configured factor weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Rank scores every document of corpus except focusID and returns them sorted
// by descending score, ties broken by ascending ID. An unknown focus yields
// an empty result; candidates without a snapshot are skipped.
func (s *Scorer) Rank(focusID string, corpus Corpus) []Result {
	if corpus == nil {
		return nil
	}
	focus, ok := corpus.Document(focusID)
	if !ok || focus == nil {
		s.log.Debug().Str("focus", focusID).Msg("focus document unavailable")
		return []Result{}
	}

	f := s.profile(focus)
	ids := corpus.IDs()
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		if id == focus.ID {
			continue
		}
		candidate, ok := corpus.Document(id)
		if !ok || candidate == nil {
			s.log.Debug().Str("candidate", id).Msg("skipping candidate without snapshot")
			continue
		}
		results = append(results, s.score(f, s.profile(candidate)))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	return results
}

// Score computes the result for a single candidate against focus.
func (s *Scorer) Score(focus, candidate *note.Document) Result {
	return s.score(s.profile(focus), s.profile(candidate))
}

type profile struct {
	doc      *note.Document
	segments tags.SegmentSet
	title    string
}

func (s *Scorer) profile(doc *note.Document) profile {
	return profile{
		doc:      doc,
		segments: s.cache.Segments(doc),
		title:    strings.ToLower(doc.Title),
	}
}

func (s *Scorer) score(focus, candidate profile) Result {
	overlap := float64(focus.segments.Overlap(candidate.segments))
	titleSim := similarity.Similarity(focus.title, candidate.title)

	var pathSim float64
	if !focus.doc.AtRoot() && !candidate.doc.AtRoot() {
		pathSim = similarity.Similarity(focus.doc.ID, candidate.doc.ID)
	}

	var link float64
	if candidate.doc.References(focus.doc) {
		link++
	}
	if focus.doc.References(candidate.doc) {
		link++
	}

	b := Breakdown{
		Tag:   s.weights.Tag * overlap,
		Title: s.weights.Title * titleSim,
		Path:  s.weights.Path * pathSim,
		Link:  s.weights.Link * link,
	}
	return Result{
		ID:        candidate.doc.ID,
		Score:     b.Tag + b.Title + b.Path + b.Link,
		Breakdown: b,
	}
}

// Threshold keeps results scoring at least minScore, capped at limit when
// limit is positive.
func Threshold(results []Result, minScore float64, limit int) []Result {
	kept := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Score < minScore {
			continue
		}
		kept = append(kept, r)
		if limit > 0 && len(kept) == limit {
			break
		}
	}
	return kept
}
