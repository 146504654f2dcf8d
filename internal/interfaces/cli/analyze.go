package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/domain/offense"
)

func newAnalyzeCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "analyze CODE [CODE...]",
		Short: "Classify offense codes for K-12 employment eligibility",
		Long: "Runs the full verification and classification pipeline over the given\n" +
			"offense codes (e.g. \"211 PC\", \"484\", \"2404\") and prints the aggregate\n" +
			"analysis. Save the JSON output with --file to ground a later chat session.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			defer cliCtx.Close()

			application, err := cliCtx.App(cmd.Context())
			if err != nil {
				return err
			}

			extracted := make([]offense.ExtractedCode, len(args))
			for i, raw := range args {
				extracted[i] = offense.ExtractedCode{Code: raw}
			}

			analysis, err := application.Orchestrator.Analyze(cmd.Context(), extracted)
			if err != nil {
				return err
			}

			if outputFile != "" {
				raw, err := json.MarshalIndent(analysis, "", "  ")
				if err != nil {
					return fmt.Errorf("encode analysis: %w", err)
				}
				if err := os.WriteFile(outputFile, raw, 0o644); err != nil {
					return fmt.Errorf("write analysis file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Analysis written to %s\n", outputFile)
			}

			switch strings.ToLower(cliCtx.OutputFormat) {
			case "json":
				return printJSON(cmd, analysis)
			case "table":
				fmt.Fprint(cmd.OutOrStdout(), recordTable(analysis.Codes))
				return nil
			default:
				printAnalysisText(cmd, analysis)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&outputFile, "file", "", "also write the analysis as JSON to this path")
	return cmd
}

func recordTable(records []offense.OffenseRecord) string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Code,
			r.Category,
			string(r.K12Impact),
			string(r.VerificationSource),
			string(r.VerificationConfidence),
		}
	}
	return formatTable([]string{"CODE", "CATEGORY", "K12 IMPACT", "SOURCE", "CONFIDENCE"}, rows)
}

func printAnalysisText(cmd *cobra.Command, analysis *offense.ComprehensiveAnalysis) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Overall status: %s\n", analysis.Summary.OverallStatus)
	fmt.Fprintf(out, "Codes: %d total, %d mandatory disqualifiers, %d with exemption path, %d non-disqualifying\n\n",
		analysis.Summary.TotalCodes,
		analysis.Summary.MandatoryDisqualifiers,
		analysis.Summary.HasExemptionPath,
		analysis.Summary.NonDisqualifying)

	for i, r := range analysis.Codes {
		fmt.Fprintf(out, "%d. %s - %s\n", i+1, r.Code, r.Description)
		fmt.Fprintf(out, "   Category:   %s\n", r.Category)
		fmt.Fprintf(out, "   K12 impact: %s\n", r.K12Impact)
		fmt.Fprintf(out, "   Verified:   %v (%s, %s confidence)\n", r.Verified, r.VerificationSource, r.VerificationConfidence)
		if r.Explanation != "" {
			fmt.Fprintf(out, "   Why:        %s\n", r.Explanation)
		}
		if len(r.ExemptionPathways) > 0 {
			fmt.Fprintf(out, "   Exemptions: %s\n", strings.Join(r.ExemptionPathways, "; "))
		}
		if len(r.Citations) > 0 {
			fmt.Fprintf(out, "   Citations:  %s\n", strings.Join(r.Citations, "; "))
		}
		fmt.Fprintln(out)
	}

	if analysis.Summary.OverallRecommendation != "" {
		fmt.Fprintf(out, "Recommendation:\n%s\n", analysis.Summary.OverallRecommendation)
	}
}
