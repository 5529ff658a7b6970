package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andreiciceu/sir/internal/prompt"
)

var projectorCmd = &cobra.Command{
	Use:   "projector",
	Short: "Reconcile the inbox into project memory",
	Long: `Asks the agent to fold new inbox files (notes, transcripts) into the
requirements, task list and stories, recording each processed filename.

With an empty inbox this is a no-op.`,
	RunE: runProjector,
}

func init() {
	rootCmd.AddCommand(projectorCmd)
}

func runProjector(cmd *cobra.Command, args []string) error {
	h, err := setup()
	if err != nil {
		return err
	}

	names, err := h.store.ListInbox()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("Inbox is empty (%s), nothing to reconcile.\n", h.cfg.InboxPath())
		return nil
	}

	// The set difference is advisory; the agent is the authority on what
	// has actually been folded in.
	fresh, err := h.store.UnprocessedInbox()
	if err != nil {
		return err
	}
	fmt.Printf("Inbox: %d file(s), %d not yet processed.\n", len(names), len(fresh))

	return h.runOnce(cmdContext(cmd), prompt.Reconcile(h.cfg, fresh))
}
