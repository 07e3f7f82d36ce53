package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for mpl-builtins.

To load completions:

Bash:
  $ source <(mpl-builtins completion bash)
  # To load permanently:
  $ mpl-builtins completion bash > /etc/bash_completion.d/mpl-builtins

Zsh:
  $ mpl-builtins completion zsh > "${fpath[1]}/_mpl-builtins"
  $ compinit

Fish:
  $ mpl-builtins completion fish | source
  # To load permanently:
  $ mpl-builtins completion fish > ~/.config/fish/completions/mpl-builtins.fish

PowerShell:
  PS> mpl-builtins completion powershell | Out-String | Invoke-Expression
  # To load permanently, add to your PowerShell profile
`,
	ValidArgs:         []string{"bash", "zsh", "fish", "powershell"},
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}
