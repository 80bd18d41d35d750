package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clauselens/clauselens/internal/application/extraction"
	types "github.com/clauselens/clauselens/pkg/types/contract"
)

// extractSummary is the printable outcome of one extraction.
type extractSummary struct {
	ContractID string `json:"contract_id"`
	Name       string `json:"name"`
	Format     string `json:"format"`
	Clauses    int    `json:"clauses"`
}

func (s extractSummary) String() string {
	return fmt.Sprintf("Extracted %d clauses from %q (contract %s)", s.Clauses, s.Name, s.ContractID)
}

func newExtractCmd(factory appFactory, opts *RootOptions) *cobra.Command {
	var (
		name      string
		format    string
		parent    string
		amendment bool
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract clauses from a contract document",
		Long:  "Parse a contract document, segment it into typed clauses, attach\nembeddings, and store the result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			if name == "" {
				base := filepath.Base(path)
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}
			docFormat := types.ParseDocumentFormat(format)
			if format == "" {
				docFormat = types.ParseDocumentFormat(filepath.Ext(path))
			}

			in := extraction.Input{
				Name:        name,
				FileName:    filepath.Base(path),
				Format:      docFormat,
				Data:        data,
				IsAmendment: amendment,
			}
			if parent != "" {
				parentID := types.ID(parent)
				in.ParentContractID = &parentID
				in.IsAmendment = true
			}

			app, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Extraction.ExtractFromContract(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, extractSummary{
				ContractID: res.Contract.ID.String(),
				Name:       res.Contract.Name,
				Format:     string(res.Contract.Format),
				Clauses:    len(res.Clauses),
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "contract name (default: file name without extension)")
	cmd.Flags().StringVar(&format, "format", "", "document format: txt or docx (default: from file extension)")
	cmd.Flags().StringVar(&parent, "parent", "", "parent contract ID; marks this document as an amendment")
	cmd.Flags().BoolVar(&amendment, "amendment", false, "mark this document as an amendment")

	return cmd
}
