package palette

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// jsonFile mirrors the palette JSON layout:
//
//	{"name": "pico-8", "colors": [{"hex": "#000000", "name": "black"}, ...]}
type jsonFile struct {
	Name   string      `json:"name"`
	Colors []jsonColor `json:"colors"`
}

type jsonColor struct {
	Hex *string `json:"hex"`
}

// decodeJSONFile reads one palette from path. The file stem names the
// palette when the document has no name of its own.
func decodeJSONFile(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc jsonFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON palette %s: %w", path, err)
	}

	name := doc.Name
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	p := &Palette{Name: name, Source: path}
	for _, c := range doc.Colors {
		if c.Hex == nil {
			continue
		}
		p.Colors = append(p.Colors, *c.Hex)
	}
	return p, nil
}
