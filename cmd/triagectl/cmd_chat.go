package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"intake-triage/internal/catalog"
	"intake-triage/internal/repository"
	"intake-triage/internal/triage"
	"intake-triage/internal/usecase"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run the triage questionnaire on stdin",
		Args:  cobra.NoArgs,
		RunE:  runChat,
	}
	cmd.Flags().String("catalog", "", "Catalog file (default: embedded catalog)")
	cmd.Flags().String("lang", "en", "Prompt language: en or es")
	cmd.Flags().Bool("show-state", false, "Print conversation_state after every turn")
	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("catalog")
	lang, _ := cmd.Flags().GetString("lang")
	showState, _ := cmd.Flags().GetBool("show-state")

	cat, err := loadCatalog(path)
	if err != nil {
		return err
	}
	machine, err := triage.New(cat)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := usecase.NewTriageService(machine, repository.Noop{}, logger, 0)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	in := usecase.TriageInput{Language: lang}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		res, err := svc.Triage(cmd.Context(), in)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		} else {
			printTurn(out, res, showState)
			in.State = res.ConversationState
		}

		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		in.Message = line
	}
}

func printTurn(w io.Writer, res usecase.TriageOutput, showState bool) {
	fmt.Fprintln(w, res.Response)
	for i, r := range res.Referrals {
		fmt.Fprintf(w, "  %d. %s", i+1, r.Name)
		if r.IsNFP {
			fmt.Fprint(w, " [NFP]")
		}
		fmt.Fprintln(w)
		if r.Phone != "" {
			fmt.Fprintf(w, "     phone: %s\n", r.Phone)
		}
		if r.URL != "" {
			fmt.Fprintf(w, "     %s\n", r.URL)
		}
	}
	if len(res.Options) > 0 {
		fmt.Fprintf(w, "[%s]\n", strings.Join(res.Options, " | "))
	}
	fmt.Fprintf(w, "(%d/%d %s)\n", res.Progress.Current, res.Progress.Total, res.Progress.Label)
	if showState {
		fmt.Fprintf(w, "state: %s\n", res.ConversationState)
	}
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
