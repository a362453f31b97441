package crawler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tristendillon/amdbutler/core/models"
	"github.com/tristendillon/amdbutler/core/rewriter"
)

func TestGetBaseFolderPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		folders []string
		want    string
	}{
		{
			name:    "posix",
			path:    "/Users/stdavis/Documents/Projects/wri-web/src/app/Test.js",
			folders: []string{"src"},
			want:    "/Users/stdavis/Documents/Projects/wri-web/src",
		},
		{
			name:    "windows",
			path:    `C:\Users\stdavis\Documents\Projects\wri-web\src\app\Test.js`,
			folders: []string{"src"},
			want:    `C:\Users\stdavis\Documents\Projects\wri-web\src`,
		},
		{
			name:    "whole segment only",
			path:    "/home/me/srcs/project/src/app/Test.js",
			folders: []string{"src"},
			want:    "/home/me/srcs/project/src",
		},
		{
			name:    "first configured folder wins",
			path:    "/work/lib/src/app/Test.js",
			folders: []string{"src", "lib"},
			want:    "/work/lib/src",
		},
		{
			name:    "falls through to later folder",
			path:    "/work/js/app/Test.js",
			folders: []string{"src", "js"},
			want:    "/work/js",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetBaseFolderPath(tt.path, tt.folders)
			if err != nil {
				t.Fatalf("GetBaseFolderPath returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("GetBaseFolderPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetBaseFolderPathNotFound(t *testing.T) {
	for _, path := range []string{"/blah/blah", `C:\blah\blah`, "/blah/hello"} {
		_, err := GetBaseFolderPath(path, []string{"hello"})
		var notFound *BaseFolderNotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("GetBaseFolderPath(%q) error = %v, want BaseFolderNotFoundError", path, err)
		}
		if notFound.FilePath != path {
			t.Errorf("FilePath = %q", notFound.FilePath)
		}
	}
}

func TestCurrentPackage(t *testing.T) {
	got, err := CurrentPackage("/p/src", "/p/src/app/widgets/Map.js")
	if err != nil || got != "app" {
		t.Fatalf("CurrentPackage = %q, %v", got, err)
	}

	if _, err := CurrentPackage("/p/src", "/p/src/main.js"); err == nil {
		t.Errorf("expected error for a file directly in the base folder")
	}
	if _, err := CurrentPackage("/p/src", "/elsewhere/app/a.js"); err == nil {
		t.Errorf("expected error for a file outside the base folder")
	}
}

func TestModuleFromPath(t *testing.T) {
	base := "/Users/stdavis/Documents/Projects/wri-web/src"
	lodash := rewriter.BuildReplaceMap(rewriter.RequireConfig{
		Paths: []rewriter.PathAlias{{Alias: "lodash", Path: "app/bower_components/lodash/modern"}},
	})

	tests := []struct {
		name  string
		entry string
		base  string
		rm    rewriter.ReplaceMap
		want  models.Module
	}{
		{
			name:  "relative entry",
			entry: "app/sub/Hello.js",
			want:  models.Module{Path: "app/sub/Hello", RawPath: "app/sub/Hello", Name: "Hello"},
		},
		{
			name:  "absolute entry",
			entry: base + "/app/project/test4.js",
			base:  base,
			want:  models.Module{Path: "app/project/test4", RawPath: "app/project/test4", Name: "test4"},
		},
		{
			name:  "rewritten",
			entry: base + "/app/bower_components/lodash/modern/array/flatten.js",
			base:  base,
			rm:    lodash,
			want: models.Module{
				Path:    "lodash/array/flatten",
				RawPath: "app/bower_components/lodash/modern/array/flatten",
				Name:    "flatten",
			},
		},
		{
			name:  "rewritten name uses the logical package",
			entry: base + "/app/bower_components/lodash/modern/foo/string.js",
			base:  base,
			rm:    lodash,
			want: models.Module{
				Path:    "lodash/foo/string",
				RawPath: "app/bower_components/lodash/modern/foo/string",
				Name:    "lodashString",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModuleFromPath(tt.entry, tt.base, tt.rm, nil); got != tt.want {
				t.Fatalf("ModuleFromPath = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// crawlFixture lays out 7 module files plus files the crawl must skip.
func crawlFixture(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	files := []string{
		"test/dom-style.js",
		"test/window.js",
		"test/sub/string.js",
		"test/Widget.js",
		"test2/dom-style.js",
		"test2/module.js",
		"test3/main.js",
		"test/nls/strings.js",
		"test/tests/WidgetTests.js",
		"test/templates/Widget.html",
	}
	for _, f := range files {
		full := filepath.Join(base, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte("define([], function () {});\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
	return base
}

func TestCrawlBuildsIndex(t *testing.T) {
	base := crawlFixture(t)

	c := New(Options{BasePath: base})
	if c.Crawled() {
		t.Fatalf("crawler must start uncrawled")
	}
	if err := c.Crawl(); err != nil {
		t.Fatalf("Crawl returned error: %v", err)
	}
	defer c.Destroy()

	if !c.Crawled() {
		t.Fatalf("expected Crawled after Crawl")
	}
	if got := c.Index().Len(); got != 7 {
		t.Fatalf("expected 7 modules, got %d: %+v", got, c.Index().All())
	}
	if m, ok := c.Index().Get("test/window"); !ok || m.Name != "testWindow" {
		t.Fatalf("expected test/window named testWindow, got %+v", m)
	}

	if !c.RemoveModule("test2/dom-style.js") {
		t.Fatalf("expected test2/dom-style to be removed")
	}
	if got := c.Index().Len(); got != 6 {
		t.Fatalf("expected 6 modules after removal, got %d", got)
	}
}

func TestCrawlMissingBaseFails(t *testing.T) {
	c := New(Options{BasePath: filepath.Join(t.TempDir(), "missing")})
	if err := c.Crawl(); err == nil {
		t.Fatalf("expected crawl of a missing base to fail")
	}
}

func TestCrawlMissingPackageFails(t *testing.T) {
	c := New(Options{BasePath: crawlFixture(t), CurrentPackage: "nope"})
	if err := c.Crawl(); err == nil {
		c.Destroy()
		t.Fatalf("expected watch setup failure to be returned")
	}
}

func TestApplyEvents(t *testing.T) {
	base := crawlFixture(t)
	c := New(Options{BasePath: base})
	if err := c.Crawl(); err != nil {
		t.Fatalf("Crawl returned error: %v", err)
	}
	abs := func(rel string) string { return filepath.Join(base, filepath.FromSlash(rel)) }

	c.Apply(models.ModuleEvent{Op: models.ModuleAdded, Path: abs("test/added.js")})
	if _, ok := c.Index().Get("test/added"); !ok || c.Index().Len() != 8 {
		t.Fatalf("expected test/added indexed, len=%d", c.Index().Len())
	}

	c.Apply(models.ModuleEvent{Op: models.ModuleDeleted, Path: abs("test/added.js")})
	if _, ok := c.Index().Get("test/added"); ok || c.Index().Len() != 7 {
		t.Fatalf("expected test/added removed, len=%d", c.Index().Len())
	}

	c.Apply(models.ModuleEvent{Op: models.TreeDeleted, Path: abs("test/sub")})
	if _, ok := c.Index().Get("test/sub/string"); ok || c.Index().Len() != 6 {
		t.Fatalf("expected test/sub dropped, len=%d", c.Index().Len())
	}
}

func TestApplyRenameNeverDuplicates(t *testing.T) {
	base := crawlFixture(t)
	c := New(Options{BasePath: base})
	if err := c.Crawl(); err != nil {
		t.Fatalf("Crawl returned error: %v", err)
	}

	c.Apply(models.ModuleEvent{
		Op:      models.ModuleRenamed,
		Path:    filepath.Join(base, "test", "Renamed.js"),
		OldPath: filepath.Join(base, "test", "Widget.js"),
	})

	count := func(path string) int {
		n := 0
		for _, m := range c.Index().All() {
			if m.Path == path {
				n++
			}
		}
		return n
	}
	if count("test/Renamed") != 1 || count("test/Widget") != 0 {
		t.Fatalf("rename left new=%d old=%d", count("test/Renamed"), count("test/Widget"))
	}
	if c.Index().Len() != 7 {
		t.Fatalf("rename changed the module count to %d", c.Index().Len())
	}

	// renaming onto an indexed path still leaves a single entry
	c.Apply(models.ModuleEvent{
		Op:      models.ModuleRenamed,
		Path:    filepath.Join(base, "test", "window.js"),
		OldPath: filepath.Join(base, "test", "Renamed.js"),
	})
	if count("test/window") != 1 || c.Index().Len() != 6 {
		t.Fatalf("rename onto existing path: window=%d len=%d", count("test/window"), c.Index().Len())
	}
}

func TestCrawlWatchesCurrentPackage(t *testing.T) {
	base := crawlFixture(t)
	c := New(Options{BasePath: base, CurrentPackage: "test"})
	if err := c.Crawl(); err != nil {
		t.Fatalf("Crawl returned error: %v", err)
	}
	defer c.Destroy()

	file := filepath.Join(base, "test", "Live.js")
	if err := os.WriteFile(file, []byte("define([], function () {});\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, ok := c.Index().Get("test/Live"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("watcher never indexed test/Live")
		}
		time.Sleep(20 * time.Millisecond)
	}

	if err := c.Destroy(); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	if err := c.Destroy(); err != nil {
		t.Fatalf("second Destroy returned error: %v", err)
	}
}
