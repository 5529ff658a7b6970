package cli

import (
	"github.com/spf13/cobra"

	"github.com/andreiciceu/sir/internal/prompt"
)

var storytellerPrompt string

var storytellerCmd = &cobra.Command{
	Use:   "storyteller",
	Short: "Generate or refresh the user stories document",
	Long: `Asks the agent to derive user stories with acceptance criteria from
the requirements and task list.

Example:
  sir storyteller
  sir storyteller --prompt "focus on the admin persona"`,
	RunE: runStoryteller,
}

func init() {
	storytellerCmd.Flags().StringVarP(&storytellerPrompt, "prompt", "p", "", "extra guidance for story generation")
	rootCmd.AddCommand(storytellerCmd)
}

func runStoryteller(cmd *cobra.Command, args []string) error {
	h, err := setup()
	if err != nil {
		return err
	}

	return h.runOnce(cmdContext(cmd), prompt.Stories(h.cfg, storytellerPrompt))
}
