package watch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/vaultlens/internal/debounce"
	"github.com/Paintersrp/vaultlens/internal/logger"
	"github.com/Paintersrp/vaultlens/internal/metrics"
	"github.com/Paintersrp/vaultlens/internal/related"
	"github.com/Paintersrp/vaultlens/internal/render"
	"github.com/Paintersrp/vaultlens/internal/state"
	"github.com/Paintersrp/vaultlens/internal/vault"
)

const shutdownTimeout = 2 * time.Second

type options struct {
	focus string
	plain bool
}

func NewCmdWatch(s *state.State) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep related notes up to date while the vault changes.",
		Long: heredoc.Doc(`
			Watches the vault and prints the notes related to the focus note
			whenever a note changes on disk. Each line read from standard input
			becomes the new focus, so an editor plugin can pipe the path of the
			open buffer into this command.

			Bursts of changes are coalesced: the index is rebuilt once the vault
			has been quiet for the debounce delay.
		`),
		Example: heredoc.Doc(`
			vaultlens watch --focus projects/parser.md
			vaultlens watch --debounce-ms 300 --metrics-addr localhost:9464
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, s, o)
		},
	}

	cmd.Flags().StringVarP(&o.focus, "focus", "f", "", "Initial focus note")
	cmd.Flags().Int("debounce-ms", 0, "Quiet period before recomputing, in milliseconds")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this host:port")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "Disable colors")

	viper.BindPFlag("watch.debounce_ms", cmd.Flags().Lookup("debounce-ms"))
	viper.BindPFlag("watch.metrics_addr", cmd.Flags().Lookup("metrics-addr"))

	return cmd
}

func run(cmd *cobra.Command, s *state.State, o *options) error {
	if s.Index == nil || s.Workspace == nil {
		return errors.New("vault is not open")
	}
	settings := s.Workspace.Watch
	log := logger.Component(s.Logger, "watch")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := vault.NewWatcher(s.Vault)
	if err != nil {
		return fmt.Errorf("watch vault: %w", err)
	}
	defer watcher.Close()
	watcher.Start()

	debouncer := debounce.New(time.Duration(settings.DebounceMs) * time.Millisecond)
	defer debouncer.Stop()

	if settings.MetricsAddr != "" {
		srv := serveMetrics(settings.MetricsAddr, s.Metrics, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("metrics server shutdown")
			}
		}()
	}

	sess := &session{
		state:    s,
		out:      cmd.OutOrStdout(),
		renderer: render.Auto(cmd.OutOrStdout(), o.plain),
		focus:    strings.TrimSpace(o.focus),
		limit:    s.Workspace.Related.Limit,
		minScore: s.Workspace.Related.MinScore,
		log:      log,
	}
	if err := sess.refresh(); err != nil {
		return err
	}

	lines := readLines(ctx, cmd.InOrStdin())
	errs := watcher.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil

		case rel, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			log.Debug().Str("path", rel).Msg("vault changed")
			sess.dirty = true
			s.Metrics.RecordTrigger("vault")
			debouncer.Trigger("vault")

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warn().Err(err).Msg("watcher error")

		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			sess.focus = line
			s.Metrics.RecordTrigger("focus")
			debouncer.Trigger("focus")

		case key, ok := <-debouncer.C():
			if !ok {
				return nil
			}
			log.Debug().Str("trigger", key).Msg("recomputing")
			if err := sess.refresh(); err != nil {
				return err
			}
		}
	}
}

// session holds the state of one watch loop. It is only touched from the
// loop goroutine.
type session struct {
	state    *state.State
	out      io.Writer
	renderer *render.Renderer
	focus    string
	dirty    bool
	limit    int
	minScore float64
	log      zerolog.Logger
}

// refresh rebuilds the index when the vault changed and prints the related
// notes of the current focus. Failures that a later change can fix are
// reported and the loop carries on.
func (w *session) refresh() error {
	idx := w.state.Index

	if w.dirty {
		if err := idx.Rebuild(); err != nil {
			w.log.Error().Err(err).Msg("rebuild failed, keeping previous index")
		} else {
			w.dirty = false
		}
	}

	corpus, err := idx.Corpus()
	if err != nil {
		return err
	}
	status := w.state.IndexStatus()

	if w.focus == "" {
		_, err := fmt.Fprintln(w.out, status)
		return err
	}

	id, err := idx.Resolve(w.focus)
	if err != nil {
		_, werr := fmt.Fprintf(w.out, "\n%s  [%s]\n%v\n", w.focus, status, err)
		return werr
	}

	results, err := idx.ComputeRelatedNotes(id)
	if err != nil {
		return err
	}
	results = related.Threshold(results, w.minScore, w.limit)

	if _, err := fmt.Fprintf(w.out, "\n%s  [%s]\n", id, status); err != nil {
		return err
	}
	return w.renderer.Related(results, func(id string) string {
		if doc, ok := corpus.Document(id); ok {
			return doc.Title
		}
		return ""
	}, false)
}

func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func serveMetrics(addr string, m *metrics.Metrics, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	return srv
}
