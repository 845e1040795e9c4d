package index

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/Paintersrp/vaultlens/internal/cache"
	"github.com/Paintersrp/vaultlens/internal/hierarchy"
	"github.com/Paintersrp/vaultlens/internal/metrics"
	"github.com/Paintersrp/vaultlens/internal/pathutil"
	"github.com/Paintersrp/vaultlens/internal/related"
	"github.com/Paintersrp/vaultlens/internal/vault"
)

// ErrClosed signals that the index service has been shut down and cannot be
// used to produce new results.
var ErrClosed = errors.New("index service closed")

// ErrUnavailable indicates that the corpus has not been built yet.
var ErrUnavailable = errors.New("vault corpus unavailable")

// Stats captures lightweight instrumentation about the shared corpus.
type Stats struct {
	LastRebuild time.Time
	Documents   int
	Skipped     int
	// Generation counts successful rebuilds.
	Generation int
}

// Service owns the corpus of a workspace and the scorer and tag cache
// derived from it. Every rebuild replaces all three at once; computations
// run against the snapshot current when they start.
type Service struct {
	mu          sync.RWMutex
	vault       string
	corpus      *vault.Corpus
	segments    *cache.TagSegments
	scorer      *related.Scorer
	lastRebuild time.Time
	generation  int
	closed      bool

	weights related.Weights
	ignore  []string
	fs      afero.Fs
	sorter  *hierarchy.Sorter
	now     func() time.Time
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithWeights overrides the relatedness weights.
func WithWeights(w related.Weights) Option {
	return func(s *Service) { s.weights = w }
}

// WithIgnore forwards ignore patterns to the vault loader.
func WithIgnore(patterns ...string) Option {
	return func(s *Service) { s.ignore = append(s.ignore, patterns...) }
}

// WithFs reads the vault from fsys instead of the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(s *Service) { s.fs = fsys }
}

// WithLocale selects the collation locale for alphabetical sorting.
func WithLocale(locale string) Option {
	return func(s *Service) { s.sorter = hierarchy.NewSorter(locale) }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMetrics records rebuilds and computations on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs a workspace-scoped index service rooted at the vault.
func NewService(vaultDir string, opts ...Option) *Service {
	s := &Service{
		vault:   pathutil.NormalizePath(vaultDir),
		weights: related.DefaultWeights(),
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sorter == nil {
		s.sorter = hierarchy.NewSorter("")
	}
	return s
}

// Vault returns the normalized vault directory.
func (s *Service) Vault() string {
	if s == nil {
		return ""
	}
	return s.vault
}

// Rebuild reloads the whole vault and swaps in a new corpus, tag cache and
// scorer.
func (s *Service) Rebuild() error {
	if s == nil {
		return ErrUnavailable
	}

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	start := s.now()
	opts := []vault.Option{vault.WithIgnore(s.ignore...), vault.WithLogger(s.log)}
	if s.fs != nil {
		opts = append(opts, vault.WithFs(s.fs))
	}
	corpus, err := vault.NewLoader(s.vault, opts...).Load()
	if err != nil {
		s.metrics.RecordRebuild(0, 0, s.now().Sub(start), err)
		return fmt.Errorf("rebuild vault corpus: %w", err)
	}

	segments := cache.NewTagSegments()
	segments.Rebuild(corpus.Documents())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	scorer := related.NewScorer(s.weights, segments, related.WithLogger(s.log))
	s.corpus = corpus
	s.segments = segments
	s.scorer = scorer
	s.lastRebuild = s.now()
	s.generation++
	s.mu.Unlock()

	elapsed := s.now().Sub(start)
	s.metrics.RecordRebuild(corpus.Len(), corpus.Skipped(), elapsed, nil)
	s.log.Debug().
		Int("documents", corpus.Len()).
		Int("skipped", corpus.Skipped()).
		Dur("duration", elapsed).
		Msg("vault corpus rebuilt")
	return nil
}

// SetWeights replaces the relatedness weights. The current tag cache is
// reused, so no rebuild happens.
func (s *Service) SetWeights(w related.Weights) {
	if s == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.weights = w
	if s.segments != nil {
		s.scorer = related.NewScorer(w, s.segments, related.WithLogger(s.log))
	}
}

// Weights returns the relatedness weights in use.
func (s *Service) Weights() related.Weights {
	if s == nil {
		return related.DefaultWeights()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights
}

// Corpus returns the current corpus, building it on first use.
func (s *Service) Corpus() (*vault.Corpus, error) {
	corpus, _, err := s.snapshot()
	return corpus, err
}

// Resolve maps a note reference (path, name or title) to a document ID.
// Absolute paths inside the vault are accepted too.
func (s *Service) Resolve(ref string) (string, error) {
	corpus, err := s.Corpus()
	if err != nil {
		return "", err
	}

	trimmed := strings.TrimSpace(ref)
	if id, ok := corpus.Resolve(trimmed); ok {
		return id, nil
	}
	if rel, ok := pathutil.InVault(s.vault, trimmed); ok {
		if id, ok := corpus.Resolve(rel); ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("note %q not found in vault", ref)
}

// ComputeRelatedNotes ranks every other document against focusID. An unknown
// focus yields an empty slice.
func (s *Service) ComputeRelatedNotes(focusID string) ([]related.Result, error) {
	corpus, scorer, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	start := s.now()
	results := scorer.Rank(focusID, corpus)
	s.metrics.RecordRelated(len(results), s.now().Sub(start))
	return results, nil
}

// BuildTagHierarchy builds the tag tree of the current corpus.
func (s *Service) BuildTagHierarchy() (*hierarchy.Tree, error) {
	corpus, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	start := s.now()
	tree := hierarchy.Build(corpus.Documents())
	s.metrics.RecordHierarchy("build", s.now().Sub(start))
	return tree, nil
}

// FilterHierarchy narrows tree to query under scope. The input tree is left
// untouched.
func (s *Service) FilterHierarchy(tree *hierarchy.Tree, query string, scope hierarchy.Scope) *hierarchy.Tree {
	start := time.Now()
	filtered := hierarchy.Filter(tree, query, scope)
	if s != nil {
		s.metrics.RecordHierarchy("filter", time.Since(start))
	}
	return filtered
}

// SortHierarchy returns a copy of tree ordered by mode at every level.
func (s *Service) SortHierarchy(tree *hierarchy.Tree, mode hierarchy.Mode) *hierarchy.Tree {
	if s == nil {
		return hierarchy.Sort(tree, mode)
	}
	start := time.Now()
	sorted := s.sorter.Sort(tree, mode)
	s.metrics.RecordHierarchy("sort", time.Since(start))
	return sorted
}

// Stats returns instrumentation about the corpus lifecycle.
func (s *Service) Stats() Stats {
	if s == nil {
		return Stats{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		LastRebuild: s.lastRebuild,
		Documents:   s.corpus.Len(),
		Skipped:     s.corpus.Skipped(),
		Generation:  s.generation,
	}
}

// Close releases the service. Subsequent calls return ErrClosed.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.corpus = nil
	s.segments = nil
	s.scorer = nil
	return nil
}

func (s *Service) snapshot() (*vault.Corpus, *related.Scorer, error) {
	if s == nil {
		return nil, nil, ErrUnavailable
	}

	s.mu.RLock()
	closed := s.closed
	needsRebuild := s.corpus == nil
	s.mu.RUnlock()

	if closed {
		return nil, nil, ErrClosed
	}
	if needsRebuild {
		if err := s.Rebuild(); err != nil {
			return nil, nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, nil, ErrClosed
	}
	if s.corpus == nil {
		return nil, nil, ErrUnavailable
	}
	return s.corpus, s.scorer, nil
}
