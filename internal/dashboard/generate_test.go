package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spoofdefense-sim/internal/telemetry"
)

func TestRenderMissingEnv(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "")
	if err := Render(t.TempDir()); err == nil {
		t.Fatalf("expected error for missing env vars")
	}
}

func TestRenderSuccess(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")

	dir := t.TempDir()
	if err := Render(dir); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, name := range []string{"spoofdefense-engagement.json", "spoofdefense-drones.json"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(b), "uid1") {
			t.Fatalf("%s: greptime uid not rendered", name)
		}
		var doc map[string]any
		if err := json.Unmarshal(b, &doc); err != nil {
			t.Fatalf("%s: rendered dashboard is not valid JSON: %v", name, err)
		}
	}
}

func TestRenderUsesTablePrefix(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")
	old := telemetry.TablePrefix
	telemetry.TablePrefix = "lab_"
	defer func() { telemetry.TablePrefix = old }()

	dir := t.TempDir()
	if err := Render(dir); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "spoofdefense-engagement.json"))
	if err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	for _, table := range []string{"lab_engagement_state", "lab_engagement_events"} {
		if !strings.Contains(string(b), table) {
			t.Fatalf("expected %s in rendered queries", table)
		}
	}
}
