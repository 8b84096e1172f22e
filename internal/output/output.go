package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mj1618/appgate/internal/permissions"
	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use yaml or json)", s)
	}
}

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// PermissionInfo describes one tracked permission.
type PermissionInfo struct {
	Kind        permissions.Kind `yaml:"kind"                   json:"kind"`
	Title       string           `yaml:"title"                  json:"title"`
	Required    bool             `yaml:"required"               json:"required"`
	Granted     bool             `yaml:"granted"                json:"granted"`
	Details     []string         `yaml:"details,omitempty"      json:"details,omitempty"`
	SettingsURL string           `yaml:"settings_url,omitempty" json:"settings_url,omitempty"`
}

// StatusResult is the output of the `status` command.
type StatusResult struct {
	State       permissions.State `yaml:"state"       json:"state"`
	TS          int64             `yaml:"ts"          json:"ts"`
	Permissions []PermissionInfo  `yaml:"permissions" json:"permissions"`
}

// NewPermissionInfo snapshots p.
func NewPermissionInfo(p permissions.Permission, verbose bool) PermissionInfo {
	info := PermissionInfo{
		Kind:     p.Kind(),
		Title:    p.Title(),
		Required: p.IsRequired(),
		Granted:  p.HasPermission(),
	}
	if verbose {
		info.Details = p.Details()
		info.SettingsURL = p.SettingsURL()
	}
	return info
}

// NewStatusResult snapshots the aggregate state and every permission.
func NewStatusResult(ps *permissions.Permissions, ts int64, verbose bool) StatusResult {
	res := StatusResult{State: ps.State(), TS: ts}
	for _, p := range ps.AllPermissions() {
		res.Permissions = append(res.Permissions, NewPermissionInfo(p, verbose))
	}
	return res
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	return Fprint(os.Stdout, v)
}

// Fprint serializes v to w in the current output format.
func Fprint(w io.Writer, v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		return FprintJSON(w, v, PrettyOutput)
	case FormatYAML:
		return FprintYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// FprintJSON serializes v as JSON, single-line unless pretty is set.
func FprintJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	return FprintYAML(os.Stdout, v)
}

// FprintYAML serializes v to w as YAML.
func FprintYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
