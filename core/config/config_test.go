package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestLoadFindsFileInAncestor(t *testing.T) {
	tmpDir := t.TempDir()
	content := `base_folders: [src, lib]
separate_packages: true
exclude_paths_matching: ["dojox/**"]
preferred_aliases:
  dojo/_base/lang: lang
`
	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	nested := filepath.Join(tmpDir, "src", "app")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if !reflect.DeepEqual(cfg.BaseFolders, []string{"src", "lib"}) {
		t.Errorf("BaseFolders = %v", cfg.BaseFolders)
	}
	if !cfg.SeparatePackages {
		t.Errorf("expected separate_packages to be true")
	}
	if cfg.PreferredAliases["dojo/_base/lang"] != "lang" {
		t.Errorf("PreferredAliases = %v", cfg.PreferredAliases)
	}
	if cfg.Root != tmpDir {
		t.Errorf("Root = %q, want %q", cfg.Root, tmpDir)
	}
	// fields absent from the file keep their defaults
	if cfg.ModuleGlob != "**/*.js" || cfg.Indentation != "    " {
		t.Errorf("expected defaults for unset fields, got glob %q indent %q", cfg.ModuleGlob, cfg.Indentation)
	}
	if len(cfg.CrawlExcludes) != 2 {
		t.Errorf("expected default crawl excludes, got %v", cfg.CrawlExcludes)
	}
}

func TestLoadFileRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty base folders", content: "base_folders: []\n"},
		{name: "bad glob", content: "module_glob: \"[\"\n"},
		{name: "bad quote", content: "quote: \"`\"\n"},
		{name: "not yaml", content: "base_folders: [src\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			path := filepath.Join(tmpDir, FileName)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Fatalf("expected error for %q", tt.content)
			}
		})
	}
}

func TestRequireJSConfigPath(t *testing.T) {
	cfg := Default()
	if got := cfg.RequireJSConfigPath("/project"); got != filepath.Join("/project", "config.json") {
		t.Errorf("fallback root: got %q", got)
	}

	cfg.Root = "/root-from-file"
	if got := cfg.RequireJSConfigPath("/project"); got != filepath.Join("/root-from-file", "config.json") {
		t.Errorf("config root: got %q", got)
	}

	cfg.RequireJSConfigFile = "/abs/require.json"
	if got := cfg.RequireJSConfigPath("/project"); got != "/abs/require.json" {
		t.Errorf("absolute: got %q", got)
	}
}

func TestWriteRoundTrips(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Default()
	cfg.SeparatePackages = true

	path, err := Write(tmpDir, cfg)
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if !loaded.SeparatePackages || loaded.Root != tmpDir {
		t.Fatalf("unexpected config after round trip: %+v", loaded)
	}
}
