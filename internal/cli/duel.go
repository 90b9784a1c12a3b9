package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newDuelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duel",
		Short: "Duel session commands",
	}

	cmd.AddCommand(newDuelGetCmd())
	cmd.AddCommand(newDuelSubmitCmd())
	cmd.AddCommand(newDuelProgressCmd())

	return cmd
}

func newDuelGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Show the current state of a duel you are part of",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result DuelSession
			if err := client.Get("/api/v1/duels/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newDuelSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <session-id> <expression>",
		Short: "Submit a solution expression",
		Long: `Submit an arithmetic expression as a solution attempt.

The expression must use each puzzle digit exactly once, in order, and
evaluate to the target. Quote the expression to protect it from the
shell, e.g.:

  hduel duel submit <session-id> '1+(2+3+4)*(5+6)'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"text": args[1]}
			var result SubmitVerdict

			if err := client.Post("/api/v1/duels/"+args[0]+"/submit", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newDuelProgressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <session-id> <percent>",
		Short: "Report a progress estimate to your opponent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("progress must be a number: %w", err)
			}

			req := map[string]int{"progress": pct}
			if err := client.Post("/api/v1/duels/"+args[0]+"/progress", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Progress reported")
			return nil
		},
	}
}
