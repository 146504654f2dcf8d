package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
)

// asker is what the interactive loop needs from the chat service.
type asker interface {
	Ask(ctx context.Context, analysis *offense.ComprehensiveAnalysis, history []offense.ChatMessage, userMessage string) (string, error)
}

func newChatCmd() *cobra.Command {
	var analysisFile string

	cmd := &cobra.Command{
		Use:   "chat --analysis FILE",
		Short: "Interactive follow-up chat grounded in a saved analysis",
		Long: "Starts an interactive session answering questions about a previously saved\n" +
			"analysis (produced by \"k12check analyze --file\"). The transcript lives only\n" +
			"in this process; nothing is persisted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			defer cliCtx.Close()

			analysis, err := loadAnalysis(analysisFile)
			if err != nil {
				return err
			}

			application, err := cliCtx.App(cmd.Context())
			if err != nil {
				return err
			}

			return runChatLoop(cmd, application.Chat, analysis)
		},
	}

	cmd.Flags().StringVar(&analysisFile, "analysis", "", "path to the saved analysis JSON [REQUIRED]")
	_ = cmd.MarkFlagRequired("analysis")
	return cmd
}

func loadAnalysis(path string) (*offense.ComprehensiveAnalysis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis file: %w", err)
	}
	var analysis offense.ComprehensiveAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis file: %w", err)
	}
	if len(analysis.Codes) == 0 {
		return nil, fmt.Errorf("analysis file %s contains no classified codes", path)
	}
	return &analysis, nil
}

func runChatLoop(cmd *cobra.Command, svc asker, analysis *offense.ComprehensiveAnalysis) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Grounded in analysis %s (%d codes, overall: %s).\n",
		analysis.ID, analysis.Summary.TotalCodes, analysis.Summary.OverallStatus)
	fmt.Fprintln(out, `Ask about the codes and their K-12 impact. Type "exit" to leave.`)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	var history []offense.ChatMessage

	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		reply, err := svc.Ask(cmd.Context(), analysis, history, line)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
			continue
		}

		fmt.Fprintf(out, "\n%s\n", reply)

		now := time.Now().UTC()
		history = append(history,
			offense.ChatMessage{ID: uuid.NewString(), Role: offense.RoleUser, Content: line, Timestamp: now},
			offense.ChatMessage{ID: uuid.NewString(), Role: offense.RoleAssistant, Content: reply, Timestamp: now},
		)
	}
}
