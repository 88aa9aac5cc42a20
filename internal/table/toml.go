package table

import (
	"errors"

	"github.com/pelletier/go-toml/v2"

	"github.com/fjglira/filecheck/internal/domain"
)

// TOMLDecoder decodes .toml test files.
type TOMLDecoder struct{}

// NewTOMLDecoder creates a new TOMLDecoder.
func NewTOMLDecoder() *TOMLDecoder {
	return &TOMLDecoder{}
}

// SupportedExtensions returns the file extensions this decoder handles.
func (d *TOMLDecoder) SupportedExtensions() []string {
	return []string{".toml"}
}

// Decode parses TOML content. Integers decode as int64, floats as float64.
func (d *TOMLDecoder) Decode(filePath string, content []byte) (map[string]any, error) {
	var t map[string]any
	if err := toml.Unmarshal(content, &t); err != nil {
		line := 0
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			line, _ = derr.Position()
		}
		return nil, domain.NewErrorWithSuggestion("load", filePath, line, "invalid TOML",
			"check the table syntax near the reported line", err)
	}
	return t, nil
}
