package cli

import (
	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Matchmaking queue commands",
	}

	cmd.AddCommand(newQueueJoinCmd())
	cmd.AddCommand(newQueueLeaveCmd())

	return cmd
}

func newQueueJoinCmd() *cobra.Command {
	var unranked bool

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join the matchmaking queue",
		Long: `Join the matchmaking queue and wait to be paired with an opponent.

Pairing and duel lifecycle notifications arrive on the event stream;
run 'hduel events' in another terminal to follow them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]bool{"ranked": !unranked}
			var result QueueStatus

			if err := client.Post("/api/v1/queue/join", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unranked, "unranked", false, "Queue for a casual duel that does not affect ratings")

	return cmd
}

func newQueueLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the matchmaking queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/queue/leave", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Left the queue")
			return nil
		},
	}
}
