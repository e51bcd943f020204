package atlas

import (
	"fmt"
	"path"
	"strings"
)

// IsDefinitionFile reports whether name has an extension Parse understands.
func IsDefinitionFile(name string) bool {
	_, ok := formatOf(name)
	return ok
}

func formatOf(name string) (string, bool) {
	lower := strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	switch {
	case strings.HasSuffix(lower, ".hcl"):
		return "hcl", true
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"), strings.HasSuffix(lower, ".atlasmap"):
		return "yaml", true
	}
	return "", false
}

// Parse decodes a definition file, picking the format from its extension.
func Parse(name string, data []byte) (Definitions, error) {
	format, ok := formatOf(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	if format == "hcl" {
		return ParseHCL(name, data)
	}
	return ParseYAML(data)
}
