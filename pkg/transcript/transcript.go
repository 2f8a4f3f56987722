package transcript

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.Errorf("unknown transcript format %q", s)
	}
}

// FormatForPath picks the format from a file extension, defaulting to yaml.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Transcript is the exported form of a conversation.
type Transcript struct {
	SessionID string                 `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Messages  []conversation.Message `json:"messages" yaml:"messages"`
}

func Write(w io.Writer, t Transcript, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(t), "encoding json transcript")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return errors.Wrap(err, "encoding yaml transcript")
		}
		return errors.Wrap(enc.Close(), "encoding yaml transcript")
	default:
		return errors.Errorf("unknown transcript format %q", f)
	}
}

// WriteFile writes the transcript to path, choosing the format from its extension.
func WriteFile(path string, t Transcript) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create transcript file")
	}
	if err := Write(f, t, FormatForPath(path)); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "could not close transcript file")
}
