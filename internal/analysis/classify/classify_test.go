package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	types "github.com/clauselens/clauselens/pkg/types/contract"
)

func TestRefine(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name    string
		text    string
		current types.ClauseType
		want    types.ClauseType
	}{
		{"confidentiality", "All Confidential Information remains the property of the discloser.", types.ClauseGeneral, types.ClauseConfidentiality},
		{"payment", "Invoices are payable within 30 days of the fee schedule.", types.ClauseObligation, types.ClausePayment},
		{"ip", "All copyright in the deliverables vests in the Customer.", types.ClauseGeneral, types.ClauseIntellectualProperty},
		{"warranty", "Supplier warrants that the goods conform to the specification.", types.ClauseObligation, types.ClauseWarranty},
		{"indemnification", "Supplier shall indemnify and hold harmless the Customer.", types.ClauseLiability, types.ClauseIndemnification},
		{"force majeure", "Neither party is responsible for delay caused by an act of god.", types.ClauseGeneral, types.ClauseForceMajeure},
		{"dispute", "Any dispute is settled by binding arbitration in London.", types.ClauseGeneral, types.ClauseDisputeResolution},
		{"amendment", "No modification of this agreement is valid unless written.", types.ClauseGeneral, types.ClauseAmendment},
		{"no match keeps current", "The notices must be sent to the registered address.", types.ClauseObligation, types.ClauseObligation},
		{"empty keeps current", "", types.ClauseTermination, types.ClauseTermination},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Refine(tt.text, tt.current))
		})
	}
}

func TestRefinePriorityOrder(t *testing.T) {
	c := NewClassifier()

	// Confidentiality outranks payment when both match.
	got := c.Refine("Confidential fee information must not be disclosed.", types.ClauseGeneral)
	assert.Equal(t, types.ClauseConfidentiality, got)

	// Payment outranks warranty.
	got = c.Refine("The warranty fee is due annually.", types.ClauseGeneral)
	assert.Equal(t, types.ClausePayment, got)
}
