package cli

import (
	"github.com/spf13/cobra"

	"github.com/andreiciceu/sir/internal/prompt"
)

var guidarDir string

var guidarCmd = &cobra.Command{
	Use:   "guidar",
	Short: "Generate or refresh the guidelines document",
	Long: `Asks the agent to infer engineering conventions from the codebase and
write them to the guidelines document.

Example:
  sir guidar
  sir guidar --dir ./src`,
	RunE: runGuidar,
}

func init() {
	guidarCmd.Flags().StringVarP(&guidarDir, "dir", "d", "", "directory for the agent to scan")
	rootCmd.AddCommand(guidarCmd)
}

func runGuidar(cmd *cobra.Command, args []string) error {
	if err := checkDirFlag(guidarDir); err != nil {
		return err
	}

	h, err := setup()
	if err != nil {
		return err
	}

	return h.runOnce(cmdContext(cmd), prompt.Guidelines(h.cfg, guidarDir))
}
