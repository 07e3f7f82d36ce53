package config

import "testing"

func resetGlobal() {
	current.Store(nil)
}

func TestInitialize(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	configPath := writeConfig(t, `
builtins:
  strict: true
`)

	if err := Initialize(configPath); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if !cfg.Builtins.Strict {
		t.Error("expected strict mode")
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	first := writeConfig(t, "builtins:\n  strict: true\n")
	second := writeConfig(t, "builtins:\n  strict: false\n")

	if err := Initialize(first); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	if err := Initialize(second); err != nil {
		t.Fatalf("second initialize returned error: %v", err)
	}

	if !GetConfig().Builtins.Strict {
		t.Error("expected the first configuration to win")
	}
}

func TestReloadConfig(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	SetConfig(NewDefaultConfig())

	path := writeConfig(t, "builtins:\n  families: [hex]\n")
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if got := GetConfig().Builtins.Families; len(got) != 1 || got[0] != "hex" {
		t.Errorf("unexpected families after reload: %v", got)
	}

	// a broken file leaves the current config in place
	bad := writeConfig(t, "builtins:\n  families: [nope]\n")
	if err := ReloadConfig(bad); err == nil {
		t.Fatal("expected reload error")
	}
	if got := GetConfig().Builtins.Families; len(got) != 1 || got[0] != "hex" {
		t.Errorf("config changed after failed reload: %v", got)
	}
}

func TestMustGetConfig_Panics(t *testing.T) {
	resetGlobal()
	t.Cleanup(resetGlobal)

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustGetConfig()
}
