package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// contractView is one printable contract listing entry.
type contractView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Format      string `json:"format"`
	IsAmendment bool   `json:"is_amendment"`
	CreatedAt   string `json:"created_at"`
}

type contractList []contractView

func (l contractList) String() string {
	if len(l) == 0 {
		return "No contracts stored"
	}
	var b strings.Builder
	for i, c := range l {
		if i > 0 {
			b.WriteString("\n")
		}
		marker := " "
		if c.IsAmendment {
			marker = "A"
		}
		fmt.Fprintf(&b, "%s %s  %-4s  %s", marker, c.ID, c.Format, c.Name)
	}
	return b.String()
}

func newContractsCmd(factory appFactory, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "contracts",
		Short: "List stored contracts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			contracts, err := app.Contracts.List(cmd.Context())
			if err != nil {
				return err
			}

			list := make(contractList, 0, len(contracts))
			for _, c := range contracts {
				list = append(list, contractView{
					ID:          c.ID.String(),
					Name:        c.Name,
					Format:      string(c.Format),
					IsAmendment: c.IsAmendment,
					CreatedAt:   c.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			return printResult(cmd, opts, list)
		},
	}
}
