package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/vaultlens/internal/constants"
	"github.com/Paintersrp/vaultlens/internal/state"
	"github.com/Paintersrp/vaultlens/pkg/cmd/related"
	"github.com/Paintersrp/vaultlens/pkg/cmd/tags"
	"github.com/Paintersrp/vaultlens/pkg/cmd/tree"
	"github.com/Paintersrp/vaultlens/pkg/cmd/watch"
	"github.com/Paintersrp/vaultlens/pkg/cmd/workspace"
)

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	var workspaceName string

	cmd := &cobra.Command{
		Use:   "vaultlens",
		Short: "Find related notes and browse the tag hierarchy of a markdown vault.",
		Long: heredoc.Doc(`
			Reads every markdown note of a vault, ranks the notes most related to
			a focus note and builds a hierarchy out of nested tags such as
			project/cli/parser.

			  vaultlens related projects/parser.md --explain
			  vaultlens tree --filter parser --sort count
			  vaultlens watch --focus projects/parser.md
		`),
		Version:      constants.Version,
		SilenceUsage: true,
		// Every command except workspace management needs an open vault.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.Open(workspaceName)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("vault", "", "Vault directory, overriding the workspace setting")
	flags.StringVarP(&workspaceName, "workspace", "w", "", "Workspace to use for this command")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error, off)")
	flags.Bool("log-pretty", false, "Human readable log output")

	viper.BindPFlag("vaultdir", flags.Lookup("vault"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.pretty", flags.Lookup("log-pretty"))

	cmd.AddCommand(
		related.NewCmdRelated(s),
		tree.NewCmdTree(s),
		tags.NewCmdTags(s),
		watch.NewCmdWatch(s),
		workspace.NewCmdWorkspace(s),
	)

	return cmd, nil
}
