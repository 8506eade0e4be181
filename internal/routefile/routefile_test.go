package routefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wayfind-go/wayfind/pkg/history"
	"github.com/wayfind-go/wayfind/pkg/router"
)

const sampleFile = `
routes:
  - path: /
    name: home
    component: HomePage
  - path: /users/:id(\d+)
    name: user
    component: UserPage
    meta:
      requiresAuth: true
    children:
      - path: posts
        name: user-posts
        component: UserPosts
  - path: /old-home
    redirect: /
  - path: /docs/*slug
    name: docs
    component: DocsPage
    alias:
      - /documentation/*slug
`

func TestParse(t *testing.T) {
	records, err := Parse([]byte(sampleFile))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}

	user := records[1]
	if user.Name != "user" {
		t.Errorf("records[1].Name = %q, want user", user.Name)
	}
	if got, ok := user.Meta["requiresAuth"].(bool); !ok || !got {
		t.Errorf("meta requiresAuth = %v, want true", user.Meta["requiresAuth"])
	}
	if len(user.Children) != 1 || user.Children[0].Path != "posts" {
		t.Errorf("children = %v, want one posts child", user.Children)
	}
	if records[2].Redirect != "/" {
		t.Errorf("redirect = %q, want /", records[2].Redirect)
	}
	if len(records[3].Alias) != 1 {
		t.Errorf("alias = %v, want one entry", records[3].Alias)
	}
}

func TestParsedTableCompilesAndMatches(t *testing.T) {
	records, err := Parse([]byte(sampleFile))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	r, err := router.New(
		router.WithHistory(history.NewMemory("/")),
		router.WithRoutes(records...),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer r.Close()

	loc, err := r.Resolve(router.To("/users/42/posts"))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if loc.Name != "user-posts" {
		t.Errorf("resolved name = %q, want user-posts", loc.Name)
	}
	if got := loc.Params.Get("id"); got != "42" {
		t.Errorf("id = %q, want 42", got)
	}

	loc, err = r.Resolve(router.To("/documentation/guide/intro"))
	if err != nil {
		t.Fatalf("Resolve(alias) error: %v", err)
	}
	if loc.Name != "docs" {
		t.Errorf("alias resolved name = %q, want docs", loc.Name)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"invalid yaml", "routes: ["},
		{"no routes", "routes: []"},
		{"missing path", "routes:\n  - name: orphan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yaml")
	if err := os.WriteFile(path, []byte(sampleFile), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(records) != 4 {
		t.Errorf("got %d records, want 4", len(records))
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
