package types

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// ParseLiteral reads a value written as an HCL expression, such as `true`,
// `42`, `"text"` or `[1, 2]`. Expressions referring to variables or
// functions are rejected.
func ParseLiteral(text string) (cty.Value, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(text), "literal", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("invalid literal %q: %w", text, diags)
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("invalid literal %q: %w", text, diags)
	}
	return v, nil
}

// Format renders a value the way ParseLiteral reads it back.
func Format(v cty.Value) string {
	if v.Type() == cty.NilType {
		return "null"
	}
	if !v.IsKnown() {
		return "(unknown)"
	}
	return strings.TrimSpace(string(hclwrite.TokensForValue(v).Bytes()))
}
