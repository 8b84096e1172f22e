package output

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/mj1618/appgate/internal/permissions"
	"gopkg.in/yaml.v3"
)

func sampleStatus() StatusResult {
	return StatusResult{
		State: permissions.StateHasRequired,
		TS:    1707500000,
		Permissions: []PermissionInfo{
			{Kind: permissions.KindAccessibility, Title: "Accessibility", Required: true, Granted: true},
			{Kind: permissions.KindScreenRecording, Title: "Screen Recording", Required: false, Granted: false},
		},
	}
}

func TestPrintYAML(t *testing.T) {
	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := PrintYAML(sampleStatus())
	w.Close()
	os.Stdout = old

	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	if bytes.Count([]byte(output), []byte("\n")) <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", output)
	}

	var decoded StatusResult
	if err := yaml.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.State != permissions.StateHasRequired {
		t.Errorf("state: got %s, want hasRequired", decoded.State)
	}
	if len(decoded.Permissions) != 2 {
		t.Errorf("permissions: got %d, want 2", len(decoded.Permissions))
	}
}

func TestFprintJSON_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := FprintJSON(&buf, sampleStatus(), false); err != nil {
		t.Fatal(err)
	}
	if bytes.Count(buf.Bytes(), []byte("\n")) > 1 {
		t.Errorf("compact output should be single line, got:\n%s", buf.String())
	}

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if m["state"] != "hasRequired" {
		t.Errorf("state: got %v, want hasRequired", m["state"])
	}
}

func TestFprintJSON_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := FprintJSON(&buf, sampleStatus(), true); err != nil {
		t.Fatal(err)
	}
	if bytes.Count(buf.Bytes(), []byte("\n")) <= 1 {
		t.Errorf("pretty output should be multi-line, got:\n%s", buf.String())
	}
}

func TestFprint_UsesOutputFormat(t *testing.T) {
	orig := OutputFormat
	defer func() { OutputFormat = orig }()

	OutputFormat = FormatJSON
	var buf bytes.Buffer
	if err := Fprint(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\"a\":1}\n" {
		t.Errorf("got %q", buf.String())
	}

	OutputFormat = Format("xml")
	if err := Fprint(&buf, 1); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestPermissionInfo_OmitEmpty(t *testing.T) {
	data, err := yaml.Marshal(PermissionInfo{Kind: permissions.KindAccessibility, Title: "Accessibility"})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["details"]; ok {
		t.Error("empty details should be omitted")
	}
	if _, ok := m["settings_url"]; ok {
		t.Error("empty settings_url should be omitted")
	}
	if _, ok := m["granted"]; !ok {
		t.Error("granted should always be present")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %q, %v", f, err)
	}
	if _, err := ParseFormat("agent"); err == nil {
		t.Error("ParseFormat(agent) should fail")
	}
}
