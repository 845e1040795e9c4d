/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package related

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/vaultlens/internal/fzf"
	relatedsvc "github.com/Paintersrp/vaultlens/internal/related"
	"github.com/Paintersrp/vaultlens/internal/render"
	"github.com/Paintersrp/vaultlens/internal/state"
)

type options struct {
	limit    int
	minScore float64
	explain  bool
	copy     bool
	plain    bool
	weights  relatedsvc.Weights
}

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

func NewCmdRelated(s *state.State) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:     "related [note]",
		Aliases: []string{"rel", "r"},
		Short:   "Rank the notes most related to a focus note.",
		Long: heredoc.Doc(`
			Scores every other note of the vault against the focus note using
			shared tag prefixes, title similarity, folder similarity and direct
			links, then prints them best first.

			The note can be given as a vault relative path, a file name or a
			title. Without an argument a fuzzy finder is opened when running in
			a terminal.
		`),
		Example: heredoc.Doc(`
			vaultlens related projects/parser.md
			vaultlens related "Parser Design" --limit 5 --explain
			vaultlens related parser --weight-link 2 --weight-path 0
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.resolveDefaults(cmd, s)
			return run(cmd, s, o, args)
		},
	}

	defaults := relatedsvc.DefaultWeights()
	cmd.Flags().IntVarP(&o.limit, "limit", "n", 10, "Maximum number of notes to show (0 for all)")
	cmd.Flags().Float64Var(&o.minScore, "min-score", 0, "Hide notes scoring below this value")
	cmd.Flags().BoolVarP(&o.explain, "explain", "e", false, "Show the per-factor score breakdown")
	cmd.Flags().BoolVarP(&o.copy, "copy", "c", false, "Copy the ranked note paths to the clipboard")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "Disable colors")
	cmd.Flags().Float64Var(&o.weights.Tag, "weight-tag", defaults.Tag, "Weight of shared tag prefixes")
	cmd.Flags().Float64Var(&o.weights.Title, "weight-title", defaults.Title, "Weight of title similarity")
	cmd.Flags().Float64Var(&o.weights.Path, "weight-path", defaults.Path, "Weight of folder similarity")
	cmd.Flags().Float64Var(&o.weights.Link, "weight-link", defaults.Link, "Weight of direct links")

	return cmd
}

// resolveDefaults fills every flag the user left alone from the active
// workspace, which is only known once the vault is open.
func (o *options) resolveDefaults(cmd *cobra.Command, s *state.State) {
	if s.Workspace == nil {
		return
	}
	cfg := s.Workspace.Related
	flags := cmd.Flags()

	if !flags.Changed("limit") {
		o.limit = cfg.Limit
	}
	if !flags.Changed("min-score") {
		o.minScore = cfg.MinScore
	}
	if !flags.Changed("weight-tag") {
		o.weights.Tag = cfg.Weights.Tag
	}
	if !flags.Changed("weight-title") {
		o.weights.Title = cfg.Weights.Title
	}
	if !flags.Changed("weight-path") {
		o.weights.Path = cfg.Weights.Path
	}
	if !flags.Changed("weight-link") {
		o.weights.Link = cfg.Weights.Link
	}
}

func run(cmd *cobra.Command, s *state.State, o *options, args []string) error {
	if s.Index == nil {
		return errors.New("vault is not open")
	}
	if o.limit < 0 || o.minScore < 0 {
		return errors.New("--limit and --min-score must not be negative")
	}
	if o.weights.Tag < 0 || o.weights.Title < 0 || o.weights.Path < 0 || o.weights.Link < 0 {
		return errors.New("weights must not be negative")
	}

	focus, err := pickFocus(cmd, s, args)
	if err != nil {
		return err
	}

	s.Index.SetWeights(o.weights)
	results, err := s.Index.ComputeRelatedNotes(focus)
	if err != nil {
		return err
	}
	results = relatedsvc.Threshold(results, o.minScore, o.limit)

	corpus, err := s.Index.Corpus()
	if err != nil {
		return err
	}
	title := func(id string) string {
		if doc, ok := corpus.Document(id); ok {
			return doc.Title
		}
		return ""
	}

	out := cmd.OutOrStdout()
	r := render.Auto(out, o.plain)
	if err := r.Related(results, title, o.explain); err != nil {
		return err
	}

	if o.copy && len(results) > 0 {
		ids := make([]string, 0, len(results))
		for _, res := range results {
			ids = append(ids, res.ID)
		}
		if err := copyToClipboard(strings.Join(ids, "\n")); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Copied %d note paths to the clipboard\n", len(ids))
	}

	return nil
}

func pickFocus(cmd *cobra.Command, s *state.State, args []string) (string, error) {
	if len(args) == 1 {
		return s.Index.Resolve(args[0])
	}

	if !render.IsTerminal(os.Stdin) || !render.IsTerminal(cmd.OutOrStdout()) {
		return "", errors.New("a focus note is required when not running in a terminal")
	}

	corpus, err := s.Index.Corpus()
	if err != nil {
		return "", err
	}
	finder := fzf.NewFuzzyFinder(s.Vault, "Pick a focus note", corpus.Documents())
	return finder.Run("")
}
