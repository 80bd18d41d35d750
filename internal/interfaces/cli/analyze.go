package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// analyzeSummary is the printable outcome of one ambiguity pass.
type analyzeSummary struct {
	ContractID       string   `json:"contract_id"`
	ClausesAnalyzed  int      `json:"clauses_analyzed"`
	AmbiguousClauses int      `json:"ambiguous_clauses"`
	Interpretations  []string `json:"interpretations,omitempty"`
}

func (s analyzeSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyzed %d clauses, %d ambiguous", s.ClausesAnalyzed, s.AmbiguousClauses)
	for _, in := range s.Interpretations {
		b.WriteString("\n  - ")
		b.WriteString(in)
	}
	return b.String()
}

func newAnalyzeCmd(factory appFactory, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <contract-id>",
		Short: "Score clause ambiguity and assign risk levels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Analysis.AnalyzeAllClauses(cmd.Context(), types.ID(args[0]))
			if err != nil {
				return err
			}

			summary := analyzeSummary{
				ContractID:       report.ContractID.String(),
				ClausesAnalyzed:  report.ClausesAnalyzed,
				AmbiguousClauses: report.AmbiguousClauses,
			}
			for _, in := range report.Interpretations {
				summary.Interpretations = append(summary.Interpretations, in.InterpretationText)
			}
			return printResult(cmd, opts, summary)
		},
	}
}

// conflictSummary is one printable detected conflict.
type conflictSummary struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// conflictsReport is the printable outcome of a conflict scan.
type conflictsReport struct {
	ContractID string            `json:"contract_id"`
	Conflicts  []conflictSummary `json:"conflicts"`
}

func (r conflictsReport) String() string {
	if len(r.Conflicts) == 0 {
		return "No conflicts detected"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d conflict(s) detected:", len(r.Conflicts))
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "\n  [%s/%s] %s", c.Type, c.Severity, c.Description)
	}
	return b.String()
}

func newConflictsCmd(factory appFactory, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts <contract-id>",
		Short: "Detect clause conflicts within and across contract versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			found, err := app.Analysis.DetectConflicts(cmd.Context(), types.ID(args[0]))
			if err != nil {
				return err
			}

			report := conflictsReport{ContractID: args[0]}
			for _, c := range found {
				report.Conflicts = append(report.Conflicts, conflictSummary{
					ID:          c.ID.String(),
					Type:        string(c.Type),
					Severity:    string(c.Severity),
					Confidence:  c.ConfidenceScore,
					Description: c.Description,
				})
			}
			return printResult(cmd, opts, report)
		},
	}
}
