package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParseLiteral(t *testing.T) {
	testCases := []struct {
		text    string
		want    cty.Value
		wantErr bool
	}{
		{text: "true", want: cty.True},
		{text: "42", want: cty.NumberIntVal(42)},
		{text: `"hi"`, want: cty.StringVal("hi")},
		{text: `["a", "b"]`, want: cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})},
		{text: "some_var", wantErr: true},
		{text: "1 +", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			got, err := ParseLiteral(tc.text)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.RawEquals(got), "got %#v", got)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, v := range []cty.Value{cty.False, cty.NumberIntVal(-3), cty.StringVal("a b"), cty.NumberFloatVal(1.5)} {
		text := Format(v)
		back, err := ParseLiteral(text)
		require.NoError(t, err, text)
		assert.True(t, v.Equals(back).True(), "%s", text)
	}
	assert.Equal(t, "null", Format(cty.NilVal))
}
