// triagectl is the operator CLI for the intake triage service.
//
// Usage:
//
//	triagectl chat [--catalog=<file>] [--lang=en|es] [--show-state]
//	triagectl catalog validate [file]
//	triagectl catalog show --topic=<topic> --level=<1-3> [--file=<file>] [--json]
//	triagectl events --table=<name> --session=<id> [--limit=N] [--json]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "triagectl",
		Short:         "Operate the legal intake triage service",
		Long:          "triagectl runs the triage questionnaire locally, checks referral catalogs\nand lists recorded intake events.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	cmd.AddCommand(
		newChatCmd(),
		newCatalogCmd(),
		newEventsCmd(),
	)
	return cmd
}
