package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/lockhammer/internal/output"
)

// Encode writes v to w as JSON or YAML. YAML keys match the JSON ones.
func Encode(w io.Writer, format output.OutputFormat, v interface{}) error {
	switch format {
	case output.FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case output.FormatYAML:
		generic, err := toGeneric(v)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()

	default:
		return fmt.Errorf("format %q is not a document format", format)
	}
}

// WriteFile encodes v into path, replacing any existing file.
func WriteFile(path string, format output.OutputFormat, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Encode(f, format, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// toGeneric round-trips v through JSON so embedded structs flatten and YAML
// keys follow the json tags.
func toGeneric(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return generic, nil
}
