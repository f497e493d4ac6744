package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxInclusionJSON(t *testing.T) {
	cases := []struct {
		in   TaxInclusion
		want string
	}{
		{TaxesUnknown, "null"},
		{TaxesIncluded, "true"},
		{TaxesExcluded, "false"},
	}
	for _, tc := range cases {
		t.Run(tc.in.String(), func(t *testing.T) {
			raw, err := json.Marshal(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(raw))

			var got TaxInclusion
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, tc.in, got)
		})
	}
}

func TestTaxInclusionRejectsNonBool(t *testing.T) {
	var got TaxInclusion
	err := json.Unmarshal([]byte(`"yes"`), &got)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTaxInclusionFromBool(t *testing.T) {
	yes, no := true, false
	assert.Equal(t, TaxesUnknown, TaxInclusionFromBool(nil))
	assert.Equal(t, TaxesIncluded, TaxInclusionFromBool(&yes))
	assert.Equal(t, TaxesExcluded, TaxInclusionFromBool(&no))
	assert.Nil(t, TaxesUnknown.Bool())
}
