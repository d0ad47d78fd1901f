package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"intake-triage/internal/repository"
)

// newEventReader is replaced in tests.
var newEventReader = func(ctx context.Context, table string) (repository.EventReader, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return repository.New(awsdynamodb.NewFromConfig(cfg), table)
}

type eventView struct {
	OccurredAt string `json:"occurred_at"`
	Kind       string `json:"kind"`
	Step       string `json:"step"`
	Topic      string `json:"topic,omitempty"`
	Level      int    `json:"level,omitempty"`
	ZipCode    string `json:"zip_code,omitempty"`
}

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recorded intake events for a session",
		Args:  cobra.NoArgs,
		RunE:  runEvents,
	}
	cmd.Flags().String("table", "", "DynamoDB event table (required)")
	cmd.Flags().String("session", "", "Session id (required)")
	cmd.Flags().IntP("limit", "n", 0, "Max events to show (0 = all)")
	cmd.Flags().Bool("json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func runEvents(cmd *cobra.Command, _ []string) error {
	table, _ := cmd.Flags().GetString("table")
	session, _ := cmd.Flags().GetString("session")
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx := cmd.Context()
	reader, err := newEventReader(ctx, table)
	if err != nil {
		return err
	}
	evs, err := reader.ListEvents(ctx, session, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		views := make([]eventView, len(evs))
		for i, ev := range evs {
			views[i] = eventView{
				OccurredAt: ev.OccurredAt,
				Kind:       string(ev.Kind),
				Step:       ev.Step,
				Topic:      ev.Topic,
				Level:      ev.Level,
				ZipCode:    ev.ZipCode,
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	if len(evs) == 0 {
		fmt.Fprintf(out, "no events for session %s\n", session)
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tSTEP\tTOPIC\tLEVEL\tZIP")
	for _, ev := range evs {
		level := "-"
		if ev.Level > 0 {
			level = fmt.Sprint(ev.Level)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", ev.OccurredAt, ev.Kind, ev.Step, dash(ev.Topic), level, dash(ev.ZipCode))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
