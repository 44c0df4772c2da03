package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/smsledger/internal/model"
	"github.com/cleared-dev/smsledger/internal/pipeline"
)

func newParseCommand(configPath *string) *cobra.Command {
	var senderID, body, receivedAt string

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse one notification and print the record as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(cmd, *configPath)
			if err != nil {
				return err
			}
			return runParse(cmd, ws, senderID, body, receivedAt)
		},
	}

	cmd.Flags().StringVar(&senderID, "sender", "", "sender ID, e.g. VM-HDFCBK (required)")
	cmd.Flags().StringVar(&body, "body", "", "message text (required)")
	cmd.Flags().StringVar(&receivedAt, "received-at", "", "receive time in RFC 3339 (default now)")
	_ = cmd.MarkFlagRequired("sender")
	_ = cmd.MarkFlagRequired("body")

	return cmd
}

func runParse(cmd *cobra.Command, ws *workspace, senderID, body, receivedAt string) error {
	at := time.Now().UTC()
	if receivedAt != "" {
		var err error
		at, err = time.Parse(time.RFC3339, receivedAt)
		if err != nil {
			return fmt.Errorf("parsing --received-at: %w", err)
		}
	}

	rec, err := ws.pipe.ParseOne(model.RawEvent{SenderID: senderID, Body: body, ReceivedAt: at})
	if pipeline.ReasonOf(err) != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "discarded: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	if rec.NeedsReview(ws.pipe.MinDisplay()) {
		fmt.Fprintf(cmd.ErrOrStderr(), "confidence %.2f is below min_display %.2f; review suggested\n", rec.Confidence, ws.pipe.MinDisplay())
	}
	return nil
}
