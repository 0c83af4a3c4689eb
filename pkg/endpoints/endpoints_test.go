package endpoints

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samvad-hq/apicall/pkg/apicall"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "endpoints.yaml", `
endpoints:
  - id: items
    name: List items
    url: /api/items
  - id: create
    url: https://api.example.com/items
    method: post
    credentials: include
    headers:
      Content-Type: application/json
      X-Empty: "  "
    body:
      name: widget
    extra:
      mode: cors
  - id: off
    url: /api/off
    enabled: false
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 3 {
		t.Fatalf("expected 3 endpoints, got %d", len(reg.All()))
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "items" || enabled[1].ID != "create" {
		t.Fatalf("unexpected enabled endpoints %#v", enabled)
	}

	items, ok := reg.ByID("items")
	if !ok {
		t.Fatalf("expected items endpoint")
	}
	opts := items.Options()
	if opts.Method != "GET" || opts.Credentials != apicall.CredentialsSameOrigin || opts.Headers != nil {
		t.Fatalf("unexpected defaults %#v", opts)
	}

	create, _ := reg.ByID("create")
	opts = create.Options()
	if opts.Method != "POST" || opts.Credentials != apicall.CredentialsInclude {
		t.Fatalf("unexpected options %#v", opts)
	}
	if _, ok := opts.Headers["X-Empty"]; ok {
		t.Fatalf("empty header should be dropped")
	}
	body, ok := opts.Body.(map[string]any)
	if !ok || body["name"] != "widget" {
		t.Fatalf("unexpected body %#v", opts.Body)
	}
	if opts.Extra["mode"] != "cors" {
		t.Fatalf("extra not carried: %#v", opts.Extra)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "endpoints.json", `{"endpoints":[{"id":"a","url":"/a"}]}`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.ByID("a"); !ok {
		t.Fatalf("expected endpoint a")
	}
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	path := writeFile(t, "endpoints.yaml", `
endpoints:
  - id: dup
    url: /a
  - id: dup
    url: /b
`)
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate endpoint error")
	}
}

func TestValidateEndpoint(t *testing.T) {
	cases := []Endpoint{
		{URL: "/a"},
		{ID: "no-url"},
		{ID: "bad-creds", URL: "/a", Credentials: "always"},
	}
	for _, ep := range cases {
		if err := validateEndpoint(sanitizeEndpoint(ep)); err == nil {
			t.Errorf("expected validation error for %#v", ep)
		}
	}
}

func TestOptionsAreIndependentCopies(t *testing.T) {
	reg, err := NewRegistry([]Endpoint{{ID: "a", URL: "/a", Headers: map[string]string{"X": "1"}}})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	ep, _ := reg.ByID("a")
	opts := ep.Options()
	opts.Headers["X"] = "2"

	again, _ := reg.ByID("a")
	if again.Headers["X"] != "1" {
		t.Fatalf("registry entry mutated through options")
	}
}

func TestPackageDocIsAttached(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "endpoints.go", nil, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Doc == nil || !strings.HasPrefix(f.Doc.Text(), "Package endpoints ") {
		t.Fatalf("package doc missing or detached")
	}
}
