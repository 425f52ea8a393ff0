package diagnose

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/flarebyte/buildnotifier/internal/config"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "build.sh"), []byte("echo\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := buildReport(config.Defaults(), dir, "windows")
	if !reflect.DeepEqual(r.ShellCommand, []string{"wsl", "-e", "bash", "build.sh"}) {
		t.Fatalf("unexpected shell command: %v", r.ShellCommand)
	}
	if !r.Script.Present || r.TokenFile.Present {
		t.Fatalf("unexpected presence: %+v %+v", r.Script, r.TokenFile)
	}
	if r.Storage != config.BackendFirebase || r.Messaging != config.BackendFCM {
		t.Fatalf("unexpected backends: %s %s", r.Storage, r.Messaging)
	}
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReport(&buf, buildReport(config.Defaults(), t.TempDir(), "linux")); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"config", "shellCommand", "script", "tokenFile", "storage", "messaging"} {
		if _, ok := got[k]; !ok {
			t.Fatalf("missing %s in %s", k, buf.String())
		}
	}
}
