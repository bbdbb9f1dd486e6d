package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/learnpath/internal/chat"
	"github.com/rcliao/learnpath/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat <message...>",
		Short: "Ask the learning companion a question",
		Long:  "Ask a one-shot question. The active plan, or --plan, is sent as context.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runChat,
	}

	cmd.Flags().StringP("plan", "p", "", "Plan id to discuss (default: active plan)")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	planID, _ := cmd.Flags().GetString("plan")
	message := strings.Join(args, " ")

	e := setup(cmd.Context())
	defer e.Close()

	if planID == "" {
		planID = e.store.GetActivePlanID(cmd.Context())
	}
	var planCtx *model.Plan
	if planID != "" {
		rec := mustPlan(e, cmd, planID)
		planCtx = &rec.Plan
	}

	svc := newService(e.cfg, e.log)
	session := chat.NewSession(func(ctx context.Context, history []chat.Message, msg string) (string, error) {
		return svc.Chat(ctx, history, msg, planCtx)
	})
	reply, err := session.Send(cmd.Context(), message)
	if err != nil {
		exitErr("chat", err)
	}

	output(cmd.OutOrStdout(), reply, func(w io.Writer) { fmt.Fprintln(w, reply.Content) })
}
