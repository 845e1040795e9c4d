package workspace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/vaultlens/internal/config"
	"github.com/Paintersrp/vaultlens/internal/pathutil"
	"github.com/Paintersrp/vaultlens/internal/state"
)

func NewCmdWorkspace(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Manage the vaults vaultlens can open.",
		Long: heredoc.Doc(`
			A workspace pairs a vault directory with its ignore patterns and its
			related, tree and watch settings. Commands run against the current
			workspace unless --workspace names another one.
		`),
		Example: heredoc.Doc(`
			vaultlens workspace add research ~/notes/research --use
			vaultlens workspace list
			vaultlens workspace use default
		`),
		// These commands edit the config file and never open a vault.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}

	cmd.AddCommand(
		newCmdList(s),
		newCmdUse(s),
		newCmdAdd(s),
		newCmdRemove(s),
	)
	return cmd
}

func newCmdList(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workspaces and their vaults; * marks the current one.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := s.Config.WorkspaceNames()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No workspaces configured")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), describe(name, s.Config))
			}
			return nil
		},
	}
}

func describe(name string, cfg *config.Config) string {
	marker := " "
	if name == cfg.CurrentWorkspace {
		marker = "*"
	}
	ws := cfg.Workspaces[name]
	vault := "(no vault)"
	if ws != nil && ws.VaultDir != "" {
		vault = ws.VaultDir
	}
	line := fmt.Sprintf("%s %s\t%s", marker, name, vault)
	if ws != nil && len(ws.Ignore) > 0 {
		line += fmt.Sprintf("\tignoring %s", strings.Join(ws.Ignore, ", "))
	}
	return line
}

func newCmdUse(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Aliases: []string{"switch"},
		Short:   "Make a workspace the current one.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := workspaceName(args[0])
			if err != nil {
				return err
			}
			if err := s.Config.SwitchWorkspace(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Now using workspace %q\n", name)
			return nil
		},
	}
}

func newCmdAdd(s *state.State) *cobra.Command {
	var use bool
	var ignore []string

	cmd := &cobra.Command{
		Use:   "add <name> <vault-dir>",
		Short: "Register a vault under a new workspace name.",
		Long: heredoc.Doc(`
			Registers a vault directory. Ranking weights, tree and watch settings
			are copied from the current workspace so the new one behaves the same
			until edited.
		`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := workspaceName(args[0])
			if err != nil {
				return err
			}
			vault := pathutil.NormalizePath(strings.TrimSpace(args[1]))
			if vault == "" || vault == "." {
				return errors.New("vault directory is required")
			}

			ws := s.Workspace.Clone()
			ws.VaultDir = vault
			if cmd.Flags().Changed("ignore") {
				ws.Ignore = ignore
			}

			if err := s.Config.AddWorkspace(name, ws, use); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added workspace %q for %s\n", name, vault)
			return nil
		},
	}

	cmd.Flags().BoolVar(&use, "use", false, "Make the new workspace current")
	cmd.Flags().StringSliceVar(&ignore, "ignore", nil, "Folders or globs to skip (replaces the copied list)")
	return cmd
}

func newCmdRemove(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Forget a workspace. The vault on disk is not touched.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := workspaceName(args[0])
			if err != nil {
				return err
			}
			if err := s.Config.RemoveWorkspace(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed workspace %q\n", name)
			return nil
		},
	}
}

func workspaceName(arg string) (string, error) {
	name := strings.TrimSpace(arg)
	if name == "" {
		return "", errors.New("workspace name cannot be empty")
	}
	return name, nil
}
