package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	domain "github.com/clauselens/clauselens/internal/domain/contract"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// answerView is the printable form of one answered question.
type answerView struct {
	Answer         string         `json:"answer"`
	Confidence     float64        `json:"confidence"`
	RequiresReview bool           `json:"requires_review"`
	Ambiguities    []string       `json:"ambiguities,omitempty"`
	Conflicts      int            `json:"conflicts"`
	Evidence       []evidenceView `json:"evidence,omitempty"`
}

type evidenceView struct {
	ClauseID  string  `json:"clause_id"`
	Contract  string  `json:"contract"`
	Section   string  `json:"section"`
	Relevance float64 `json:"relevance"`
}

func (v answerView) String() string {
	var b strings.Builder
	b.WriteString(v.Answer)
	fmt.Fprintf(&b, "\n\nConfidence: %.0f%%", v.Confidence*100)
	if v.RequiresReview {
		b.WriteString("\nThis answer requires legal review.")
	}
	for _, a := range v.Ambiguities {
		b.WriteString("\nNote: ")
		b.WriteString(a)
	}
	if v.Conflicts > 0 {
		fmt.Fprintf(&b, "\nWarning: %d conflict(s) involve the cited clauses.", v.Conflicts)
	}
	return b.String()
}

func newAnswerView(answer *domain.Answer) answerView {
	view := answerView{
		Answer:         answer.Text,
		Confidence:     answer.Confidence,
		RequiresReview: answer.RequiresReview,
		Ambiguities:    answer.Ambiguities,
		Conflicts:      len(answer.Conflicts),
	}
	for _, ev := range answer.Evidence {
		view.Evidence = append(view.Evidence, evidenceView{
			ClauseID:  ev.Clause.ID.String(),
			Contract:  ev.ContractName,
			Section:   ev.Clause.SectionNumber,
			Relevance: ev.Relevance,
		})
	}
	return view
}

func newAskCmd(factory appFactory, opts *RootOptions) *cobra.Command {
	var (
		contract string
		topK     int
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question with clause-level evidence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			app, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			var contractID *types.ID
			if contract != "" {
				id := types.ID(contract)
				contractID = &id
			}

			answer, err := app.QA.AnswerQuestion(cmd.Context(), question, contractID, topK)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, newAnswerView(answer))
		},
	}

	cmd.Flags().StringVar(&contract, "contract", "", "restrict the search to one contract ID")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of evidence clauses to retrieve (default: from config)")

	return cmd
}

// similarView is one printable similar-question entry.
type similarView struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Similarity float64 `json:"similarity"`
}

type similarList []similarView

func (l similarList) String() string {
	if len(l) == 0 {
		return "No similar questions found"
	}
	var b strings.Builder
	for i, s := range l {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%.2f  %s", s.Similarity, s.Question)
	}
	return b.String()
}

func newQuestionsCmd(factory appFactory, opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Inspect the question-answer history",
	}
	cmd.AddCommand(newQuestionsSimilarCmd(factory, opts))
	cmd.AddCommand(newQuestionsHistoryCmd(factory, opts))
	return cmd
}

func newQuestionsSimilarCmd(factory appFactory, opts *RootOptions) *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "similar <question>",
		Short: "Find previously answered questions similar to the given one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			similar, err := app.QA.SimilarQuestions(cmd.Context(), strings.Join(args, " "), topK)
			if err != nil {
				return err
			}

			list := make(similarList, 0, len(similar))
			for _, s := range similar {
				list = append(list, similarView{
					Question:   s.Question,
					Answer:     s.Answer,
					Similarity: s.Similarity,
				})
			}
			return printResult(cmd, opts, list)
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 3, "number of similar questions to return")
	return cmd
}

// historyView is one printable history entry.
type historyView struct {
	ID         string  `json:"id"`
	Question   string  `json:"question"`
	Confidence float64 `json:"confidence"`
	Evidence   int     `json:"evidence"`
}

type historyList []historyView

func (l historyList) String() string {
	if len(l) == 0 {
		return "No questions answered yet"
	}
	var b strings.Builder
	for i, h := range l {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %.0f%%  %s", h.ID, h.Confidence*100, h.Question)
	}
	return b.String()
}

func newQuestionsHistoryCmd(factory appFactory, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List every answered question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			history, err := app.QA.History(cmd.Context())
			if err != nil {
				return err
			}

			list := make(historyList, 0, len(history))
			for _, h := range history {
				list = append(list, historyView{
					ID:         h.ID.String(),
					Question:   h.Question,
					Confidence: h.Confidence,
					Evidence:   len(h.Evidence),
				})
			}
			return printResult(cmd, opts, list)
		},
	}
}
