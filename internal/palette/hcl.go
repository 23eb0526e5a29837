package palette

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// HCLBlock is a `palette "<name>" { colors = [...] }` block. It is exported
// so the config file can embed palettes alongside its settings.
type HCLBlock struct {
	Name   string         `hcl:"name,label"`
	Colors hcl.Expression `hcl:"colors"`
}

// hclFile decodes every palette block in a file and ignores anything else.
type hclFile struct {
	Palettes []*HCLBlock `hcl:"palette,block"`
	Remain   hcl.Body    `hcl:",remain"`
}

// decodeHCLFile parses path and returns the palettes it declares.
func decodeHCLFile(parser *hclparse.Parser, path string) ([]*Palette, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL palette %s: %w", path, diags)
	}

	var root hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL palette %s: %w", path, diags)
	}

	out := make([]*Palette, 0, len(root.Palettes))
	for _, block := range root.Palettes {
		p, err := FromHCLBlock(block, path)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// FromHCLBlock evaluates the block's colors expression, which must be a list
// or tuple of strings.
func FromHCLBlock(block *HCLBlock, source string) (*Palette, error) {
	val, diags := block.Colors.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid colors for palette %q: %w", block.Name, diags)
	}

	colors, err := ctyStrings(val)
	if err != nil {
		return nil, fmt.Errorf("invalid colors for palette %q: %w", block.Name, err)
	}

	return &Palette{Name: block.Name, Colors: colors, Source: source}, nil
}

func ctyStrings(val cty.Value) ([]string, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("colors must be a known, non-null list")
	}
	ty := val.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		return nil, fmt.Errorf("colors must be a list of strings, got %s", ty.FriendlyName())
	}

	var out []string
	i := 0
	for it := val.ElementIterator(); it.Next(); i++ {
		_, el := it.Element()
		if el.IsNull() || el.Type() != cty.String {
			return nil, fmt.Errorf("element %d must be a string, got %s", i, el.Type().FriendlyName())
		}
		out = append(out, el.AsString())
	}
	return out, nil
}
