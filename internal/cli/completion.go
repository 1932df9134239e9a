package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storeshots/pkg/catalog"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for storeshots.

To load completions:

Bash:
  $ source <(storeshots completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ storeshots completion bash > /etc/bash_completion.d/storeshots
  # macOS:
  $ storeshots completion bash > $(brew --prefix)/etc/bash_completion.d/storeshots

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ storeshots completion zsh > "${fpath[1]}/_storeshots"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ storeshots completion fish | source

  # To load completions for each session, execute once:
  $ storeshots completion fish > ~/.config/fish/completions/storeshots.fish

PowerShell:
  PS> storeshots completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> storeshots completion powershell > storeshots.ps1
  # and source this file from your PowerShell profile.

Project ids and the --layout, --device and --size flags complete from
the projects file and the catalogs.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// registerCompletions attaches dynamic completions to every command under
// root: project ids for commands taking an id, and catalog ids for the
// --layout, --device and --size flags.
func (c *CLI) registerCompletions(root *cobra.Command) {
	flags := map[string]func() []string{
		"layout": catalog.LayoutIDs,
		"device": func() []string {
			var ids []string
			for _, d := range catalog.Devices() {
				ids = append(ids, d.ID+"\t"+d.Name)
			}
			return ids
		},
		"size": func() []string {
			var ids []string
			for _, s := range catalog.Sizes() {
				ids = append(ids, s.ID+"\t"+s.Name)
			}
			return ids
		},
	}

	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		if strings.Contains(cmd.Use, "[id") || strings.Contains(cmd.Use, "<id>") {
			cmd.ValidArgsFunction = c.completeProjectIDs
		}
		for name, list := range flags {
			if cmd.Flags().Lookup(name) != nil {
				_ = cmd.RegisterFlagCompletionFunc(name, completeFrom(list))
			}
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}

// completeFrom filters the candidates of list by the typed prefix.
// Candidates may carry a tab-separated description.
func completeFrom(list func() []string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, prefix string) ([]string, cobra.ShellCompDirective) {
		return filterPrefix(list(), prefix), cobra.ShellCompDirectiveNoFileComp
	}
}

// completeProjectIDs lists the ids in the projects file, with titles.
func (c *CLI) completeProjectIDs(cmd *cobra.Command, args []string, prefix string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 && !strings.HasPrefix(cmd.Use, "export-all") {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pf, err := c.projects(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer pf.close()

	var ids []string
	for _, p := range pf.store.List() {
		ids = append(ids, p.ID+"\t"+truncate(p.Title, 40))
	}
	return filterPrefix(ids, prefix), cobra.ShellCompDirectiveNoFileComp
}

func filterPrefix(candidates []string, prefix string) []string {
	var out []string
	for _, s := range candidates {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
		}
	}
	return out
}
