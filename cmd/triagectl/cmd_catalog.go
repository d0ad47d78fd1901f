package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"intake-triage/internal/domain"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect referral catalogs",
	}
	cmd.AddCommand(newCatalogValidateCmd(), newCatalogShowCmd())
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a catalog document (default: embedded catalog)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCatalogValidate,
	}
}

func newCatalogShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the referrals for one topic and level",
		Args:  cobra.NoArgs,
		RunE:  runCatalogShow,
	}
	cmd.Flags().String("file", "", "Catalog file (default: embedded catalog)")
	cmd.Flags().String("topic", "", "Topic, e.g. housing (required)")
	cmd.Flags().Int("level", 0, "Level 1-3 (required)")
	cmd.Flags().Bool("json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	cat, err := loadCatalog(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total := 0
	for _, topic := range cat.Topics() {
		counts := make([]string, 0, 3)
		for _, level := range []domain.Level{domain.LevelGeneralInfo, domain.LevelSelfHelp, domain.LevelDirectService} {
			n := len(cat.Lookup(topic, level))
			total += n
			counts = append(counts, level.Key()+"="+strconv.Itoa(n))
		}
		fmt.Fprintf(out, "%-14s %v\n", topic, counts)
	}
	fmt.Fprintf(out, "ok: %d topics, %d referrals\n", len(cat.Topics()), total)
	return nil
}

func runCatalogShow(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	topicFlag, _ := cmd.Flags().GetString("topic")
	levelFlag, _ := cmd.Flags().GetInt("level")
	asJSON, _ := cmd.Flags().GetBool("json")

	topic := domain.Topic(topicFlag)
	if !topic.Valid() {
		return fmt.Errorf("unknown topic %q", topicFlag)
	}
	level := domain.Level(levelFlag)
	if !level.Valid() {
		return fmt.Errorf("level must be 1, 2 or 3, got %d", levelFlag)
	}
	cat, err := loadCatalog(path)
	if err != nil {
		return err
	}

	records := cat.Lookup(topic, level)
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		fmt.Fprintf(out, "no referrals for %s/%s\n", topic, level.Key())
		return nil
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode referrals: %w", err)
	}
	return enc.Close()
}
