package tree

import (
	"errors"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/vaultlens/internal/hierarchy"
	"github.com/Paintersrp/vaultlens/internal/render"
	"github.com/Paintersrp/vaultlens/internal/state"
)

type options struct {
	filter     string
	noCollapse bool
	files      bool
	plain      bool
}

func NewCmdTree(s *state.State) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the tag hierarchy of the vault.",
		Long: heredoc.Doc(`
			Builds a tree out of nested tags. A note tagged project/cli/parser
			sits under project, then cli, then parser; notes without tags are
			grouped under (untagged).

			Scopes decide what --filter matches against:
			  tags-and-files  tag paths and note names
			  tags-only       tag paths only
			  files-only      note names only

			Sort modes: alphabetical, count, created-newest, created-oldest,
			modified-newest, modified-oldest.
		`),
		Example: heredoc.Doc(`
			vaultlens tree
			vaultlens tree --filter parser --files
			vaultlens tree --sort count --no-collapse
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, s, o)
		},
	}

	cmd.Flags().StringVarP(&o.filter, "filter", "f", "", "Only show branches matching this text")
	cmd.Flags().String("scope", "", "Filter scope (tags-and-files, tags-only, files-only)")
	cmd.Flags().String("sort", "", "Sort mode for every level of the tree")
	cmd.Flags().BoolVar(&o.noCollapse, "no-collapse", false, "Keep single-child tag chains expanded")
	cmd.Flags().BoolVar(&o.files, "files", false, "List the notes under each tag")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "Disable colors")

	viper.BindPFlag("tree.scope", cmd.Flags().Lookup("scope"))
	viper.BindPFlag("tree.sort", cmd.Flags().Lookup("sort"))

	return cmd
}

func run(cmd *cobra.Command, s *state.State, o *options) error {
	if s.Index == nil || s.Workspace == nil {
		return errors.New("vault is not open")
	}
	settings := s.Workspace.Tree

	scope, err := hierarchy.ParseScope(settings.Scope)
	if err != nil {
		return err
	}
	mode, err := hierarchy.ParseMode(settings.Sort)
	if err != nil {
		return err
	}

	tree, err := s.Index.BuildTagHierarchy()
	if err != nil {
		return err
	}
	tree = s.Index.FilterHierarchy(tree, o.filter, scope)
	tree = s.Index.SortHierarchy(tree, mode)

	collapse := settings.CollapseEnabled() && !o.noCollapse
	showFiles := o.files || (o.filter != "" && scope != hierarchy.TagsOnly)

	return render.Auto(cmd.OutOrStdout(), o.plain).Tree(hierarchy.Display(tree, collapse), showFiles)
}
