package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsEmpty(t *testing.T) {
	// No settings files exist.
	dir := t.TempDir()
	settings, err := LoadSettings(dir)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings == nil {
		t.Fatal("expected non-nil settings")
	}
	if settings.Model != "" {
		t.Errorf("Model = %q, want empty", settings.Model)
	}
}

func TestLoadSettingsUserLevel(t *testing.T) {
	// Create a user-level settings file.
	home := t.TempDir()
	t.Setenv("HOME", home)

	agentcoreDir := filepath.Join(home, ".agentcore")
	os.MkdirAll(agentcoreDir, 0755)
	os.WriteFile(filepath.Join(agentcoreDir, "settings.json"), []byte(`{
		"model": "opus",
		"env": {"FOO": "bar"}
	}`), 0644)

	settings, err := LoadSettings(t.TempDir())
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.Model != "opus" {
		t.Errorf("Model = %q, want %q", settings.Model, "opus")
	}
	if settings.Env["FOO"] != "bar" {
		t.Errorf("Env[FOO] = %q, want %q", settings.Env["FOO"], "bar")
	}
}

func TestLoadSettingsProjectOverridesUser(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cwd := t.TempDir()

	// User level.
	userDir := filepath.Join(home, ".agentcore")
	os.MkdirAll(userDir, 0755)
	os.WriteFile(filepath.Join(userDir, "settings.json"), []byte(`{
		"model": "sonnet",
		"env": {"FOO": "user", "EXTRA": "keep"}
	}`), 0644)

	// Project level (higher priority).
	projDir := filepath.Join(cwd, ".agentcore")
	os.MkdirAll(projDir, 0755)
	os.WriteFile(filepath.Join(projDir, "settings.json"), []byte(`{
		"model": "opus",
		"env": {"FOO": "project"}
	}`), 0644)

	settings, err := LoadSettings(cwd)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}

	// Project should override user.
	if settings.Model != "opus" {
		t.Errorf("Model = %q, want %q", settings.Model, "opus")
	}
	// Project FOO overrides user FOO.
	if settings.Env["FOO"] != "project" {
		t.Errorf("Env[FOO] = %q, want %q", settings.Env["FOO"], "project")
	}
	// User-only EXTRA should be preserved.
	if settings.Env["EXTRA"] != "keep" {
		t.Errorf("Env[EXTRA] = %q, want %q", settings.Env["EXTRA"], "keep")
	}
}

func TestLoadSettingsLocalOverridesProject(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cwd := t.TempDir()
	projDir := filepath.Join(cwd, ".agentcore")
	os.MkdirAll(projDir, 0755)

	// Project level.
	os.WriteFile(filepath.Join(projDir, "settings.json"), []byte(`{
		"model": "sonnet"
	}`), 0644)

	// Local level (higher priority).
	os.WriteFile(filepath.Join(projDir, "settings.local.json"), []byte(`{
		"model": "haiku"
	}`), 0644)

	settings, err := LoadSettings(cwd)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}

	if settings.Model != "haiku" {
		t.Errorf("Model = %q, want %q", settings.Model, "haiku")
	}
}

func TestPermissionRulesMerge(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cwd := t.TempDir()
	projDir := filepath.Join(cwd, ".agentcore")
	os.MkdirAll(projDir, 0755)

	// User level with a permission rule.
	userDir := filepath.Join(home, ".agentcore")
	os.MkdirAll(userDir, 0755)
	os.WriteFile(filepath.Join(userDir, "settings.json"), []byte(`{
		"permissions": [
			{"tool": "execute_command", "action": "ask"}
		]
	}`), 0644)

	// Project level with a permission rule.
	os.WriteFile(filepath.Join(projDir, "settings.json"), []byte(`{
		"permissions": [
			{"tool": "execute_command", "pattern": "npm run *", "action": "allow"}
		]
	}`), 0644)

	settings, err := LoadSettings(cwd)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}

	// Permissions should be concatenated: project first (higher priority), then user.
	if len(settings.Permissions) != 2 {
		t.Fatalf("Permissions len = %d, want 2", len(settings.Permissions))
	}
	// Project rule comes first.
	if settings.Permissions[0].Pattern != "npm run *" {
		t.Errorf("First rule pattern = %q, want %q", settings.Permissions[0].Pattern, "npm run *")
	}
	// User rule comes second.
	if settings.Permissions[1].Action != "ask" {
		t.Errorf("Second rule action = %q, want %q", settings.Permissions[1].Action, "ask")
	}
}

func TestLoadSettingsJSPermissions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cwd := t.TempDir()
	projDir := filepath.Join(cwd, ".agentcore")
	os.MkdirAll(projDir, 0755)

	// JS format permissions.
	os.WriteFile(filepath.Join(projDir, "settings.json"), []byte(`{
		"permissions": {
			"allow": ["execute_command(npm:*)", "read_file(src/**)"],
			"deny": ["execute_command(rm *)"],
			"ask": ["web_fetch(domain:unknown.com)"]
		}
	}`), 0644)

	settings, err := LoadSettings(cwd)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}

	if len(settings.Permissions) != 4 {
		t.Fatalf("Permissions len = %d, want 4", len(settings.Permissions))
	}

	// Check that rules are parsed correctly.
	var allowCount, denyCount, askCount int
	for _, rule := range settings.Permissions {
		switch rule.Action {
		case "allow":
			allowCount++
		case "deny":
			denyCount++
		case "ask":
			askCount++
		}
	}
	if allowCount != 2 {
		t.Errorf("allow count = %d, want 2", allowCount)
	}
	if denyCount != 1 {
		t.Errorf("deny count = %d, want 1", denyCount)
	}
	if askCount != 1 {
		t.Errorf("ask count = %d, want 1", askCount)
	}
}

func TestLoadSettingsJSAndGoPermissionsMerge(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cwd := t.TempDir()
	projDir := filepath.Join(cwd, ".agentcore")
	os.MkdirAll(projDir, 0755)

	// User-level with Go format.
	userDir := filepath.Join(home, ".agentcore")
	os.MkdirAll(userDir, 0755)
	os.WriteFile(filepath.Join(userDir, "settings.json"), []byte(`{
		"permissions": [
			{"tool": "execute_command", "action": "ask"}
		]
	}`), 0644)

	// Project-level with JS format.
	os.WriteFile(filepath.Join(projDir, "settings.json"), []byte(`{
		"permissions": {
			"allow": ["execute_command(npm:*)"]
		}
	}`), 0644)

	settings, err := LoadSettings(cwd)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}

	// Should have both rules: project first, then user.
	if len(settings.Permissions) != 2 {
		t.Fatalf("Permissions len = %d, want 2", len(settings.Permissions))
	}
	// Project rule (JS format) first.
	if settings.Permissions[0].Tool != "execute_command" || settings.Permissions[0].Pattern != "npm:*" {
		t.Errorf("First rule: %+v", settings.Permissions[0])
	}
	// User rule (Go format) second.
	if settings.Permissions[1].Tool != "execute_command" || settings.Permissions[1].Action != "ask" {
		t.Errorf("Second rule: %+v", settings.Permissions[1])
	}
}

func TestMergeSettings(t *testing.T) {
	base := &Settings{
		Model: "sonnet",
		Env:   map[string]string{"A": "1", "B": "2"},
		Permissions: []PermissionRule{
			{Tool: "execute_command", Action: "ask"},
		},
	}
	overlay := &Settings{
		Model: "opus",
		Env:   map[string]string{"B": "override", "C": "3"},
		Permissions: []PermissionRule{
			{Tool: "execute_command", Pattern: "npm *", Action: "allow"},
		},
	}

	result := mergeSettings(base, overlay)

	if result.Model != "opus" {
		t.Errorf("Model = %q, want %q", result.Model, "opus")
	}
	if result.Env["A"] != "1" {
		t.Errorf("Env[A] = %q, want %q", result.Env["A"], "1")
	}
	if result.Env["B"] != "override" {
		t.Errorf("Env[B] = %q, want %q", result.Env["B"], "override")
	}
	if result.Env["C"] != "3" {
		t.Errorf("Env[C] = %q, want %q", result.Env["C"], "3")
	}
	// Permissions: overlay first, then base.
	if len(result.Permissions) != 2 {
		t.Fatalf("Permissions len = %d, want 2", len(result.Permissions))
	}
	if result.Permissions[0].Pattern != "npm *" {
		t.Errorf("Perm[0].Pattern = %q, want %q", result.Permissions[0].Pattern, "npm *")
	}
}

func TestMergeSettingsHooks(t *testing.T) {
	base := &Settings{Hooks: json.RawMessage(`{"PreToolUse":[]}`)}
	overlay := &Settings{}

	result := mergeSettings(base, overlay)
	if string(result.Hooks) != `{"PreToolUse":[]}` {
		t.Errorf("Hooks = %s, want base preserved when overlay unset", result.Hooks)
	}

	overlay2 := &Settings{Hooks: json.RawMessage(`{"Stop":[]}`)}
	result2 := mergeSettings(base, overlay2)
	if string(result2.Hooks) != `{"Stop":[]}` {
		t.Errorf("Hooks = %s, want overlay to win when set", result2.Hooks)
	}
}

func TestSaveUserSetting_NewFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	err := SaveUserSetting("model", "opus")
	if err != nil {
		t.Fatalf("SaveUserSetting: %v", err)
	}

	// Read back and verify.
	path := filepath.Join(home, ".agentcore", "settings.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if val, ok := settings["model"]; !ok {
		t.Error("model key not found in saved settings")
	} else if val != "opus" {
		t.Errorf("model = %v, want opus", val)
	}
}

func TestSaveUserSetting_ExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	agentcoreDir := filepath.Join(home, ".agentcore")
	os.MkdirAll(agentcoreDir, 0755)
	os.WriteFile(filepath.Join(agentcoreDir, "settings.json"), []byte(`{
  "model": "opus"
}`), 0644)

	err := SaveUserSetting("model", "sonnet")
	if err != nil {
		t.Fatalf("SaveUserSetting: %v", err)
	}

	// Read back.
	data, err := os.ReadFile(filepath.Join(agentcoreDir, "settings.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var settings map[string]interface{}
	json.Unmarshal(data, &settings)

	if val := settings["model"]; val != "sonnet" {
		t.Errorf("model = %v, want sonnet", val)
	}
}

func TestSaveUserSetting_RemovesKeyOnNil(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	agentcoreDir := filepath.Join(home, ".agentcore")
	os.MkdirAll(agentcoreDir, 0755)
	os.WriteFile(filepath.Join(agentcoreDir, "settings.json"), []byte(`{
  "model": "opus"
}`), 0644)

	if err := SaveUserSetting("model", nil); err != nil {
		t.Fatalf("SaveUserSetting: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(agentcoreDir, "settings.json"))
	var settings map[string]interface{}
	json.Unmarshal(data, &settings)

	if _, ok := settings["model"]; ok {
		t.Errorf("model key should have been removed, got %v", settings["model"])
	}
}

func TestSaveUserSetting_CorruptFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	agentcoreDir := filepath.Join(home, ".agentcore")
	os.MkdirAll(agentcoreDir, 0755)
	os.WriteFile(filepath.Join(agentcoreDir, "settings.json"), []byte(`{corrupt json`), 0644)

	// Should not error; starts fresh.
	err := SaveUserSetting("model", "haiku")
	if err != nil {
		t.Fatalf("SaveUserSetting on corrupt file: %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(agentcoreDir, "settings.json"))
	var settings map[string]interface{}
	json.Unmarshal(data, &settings)

	if val := settings["model"]; val != "haiku" {
		t.Errorf("model = %v, want haiku", val)
	}
}

func TestUserSettingsPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := UserSettingsPath()
	if err != nil {
		t.Fatalf("UserSettingsPath: %v", err)
	}
	expected := filepath.Join(home, ".agentcore", "settings.json")
	if path != expected {
		t.Errorf("UserSettingsPath = %q, want %q", path, expected)
	}
}
