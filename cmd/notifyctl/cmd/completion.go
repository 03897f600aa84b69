package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script",
	Long: `To load completions:

Bash:

  $ source <(notifyctl completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ notifyctl completion bash > /etc/bash_completion.d/notifyctl
  # macOS:
  $ notifyctl completion bash > $(brew --prefix)/etc/bash_completion.d/notifyctl

Zsh:

  # To load completions for each session, execute once:
  $ notifyctl completion zsh > "${fpath[1]}/_notifyctl"

Fish:

  $ notifyctl completion fish | source

  # To load completions for each session, execute once:
  $ notifyctl completion fish > ~/.config/fish/completions/notifyctl.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
