package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for ssp-host.

To load completions:

Bash:
  $ source <(ssp-host completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ ssp-host completion bash > /etc/bash_completion.d/ssp-host
  # macOS:
  $ ssp-host completion bash > $(brew --prefix)/etc/bash_completion.d/ssp-host

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ ssp-host completion zsh > "${fpath[1]}/_ssp-host"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ ssp-host completion fish | source

  # To load completions for each session, execute once:
  $ ssp-host completion fish > ~/.config/fish/completions/ssp-host.fish

PowerShell:
  PS> ssp-host completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> ssp-host completion powershell > ssp-host.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
