package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"studybuddy-service/internal/domain"
	"studybuddy-service/internal/responder"
)

// NewRespondCmd prints the canned assistant answer for a question.
func NewRespondCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "respond [question]",
		Short: "Print the assistant's answer to a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), responder.Respond(strings.Join(args, " "), subject))
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", domain.DefaultChatSubject, "subject used by the generic answer")
	return cmd
}
