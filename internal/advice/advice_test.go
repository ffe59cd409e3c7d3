package advice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/rca-engine/internal/investigation"
)

func TestGenerateReturnsNilForNilRootCause(t *testing.T) {
	assert.Nil(t, Generate(nil))
	assert.Nil(t, Generate(&investigation.RootCauseAnalysis{}))
}

func TestGenerateReturnsAdviceForPrimaryAndContributing(t *testing.T) {
	primary := investigation.Hypothesis{Type: investigation.HypothesisPermissionIssue}
	contributing := investigation.Hypothesis{Type: investigation.HypothesisTimeout}

	result := Generate(&investigation.RootCauseAnalysis{
		PrimaryRootCause:    &primary,
		ContributingFactors: []investigation.Hypothesis{contributing},
	})

	require.Len(t, result, 2)
	assert.Equal(t, "iam", result[0].Category)
	assert.Equal(t, "performance", result[1].Category)
}

func TestGenerateSkipsUnrecognizedHypothesisType(t *testing.T) {
	primary := investigation.Hypothesis{Type: "some_unrecognized_type"}
	result := Generate(&investigation.RootCauseAnalysis{PrimaryRootCause: &primary})
	assert.Empty(t, result)
}
