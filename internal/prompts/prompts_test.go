package prompts

import (
	"testing"
	"text/template"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"no variables", nil},
		{"{{.Query}}", []string{"Query"}},
		{"{{ .B }} then {{.A}} and {{.B}} again", []string{"A", "B"}},
		{"{{.Record.Tests}}", []string{"Record.Tests"}},
		{`{"generic_name": "string"}`, nil},
	}

	for _, tt := range tests {
		got := ExtractVariables(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("ExtractVariables(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ExtractVariables(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestHashText(t *testing.T) {
	a := HashText("prompt one")
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
	if HashText("prompt one") != a {
		t.Error("hash should be deterministic")
	}
	if HashText("prompt two") == a {
		t.Error("different text should hash differently")
	}
}

func TestResolver(t *testing.T) {
	r := NewResolver(nil)
	r.Register(EmbeddedPrompt{Key: "b.second", Text: "hello {{.Name}}"})
	r.Register(EmbeddedPrompt{Key: "a.first", Text: "static"})

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	p, err := r.Get("b.second")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Hash != HashText("hello {{.Name}}") {
		t.Error("Register should compute the hash")
	}
	if len(p.Variables) != 1 || p.Variables[0] != "Name" {
		t.Errorf("Variables = %v, want [Name]", p.Variables)
	}

	if _, err := r.Get("missing"); err == nil {
		t.Error("Get() of unknown key should fail")
	}

	all := r.All()
	if len(all) != 2 || all[0].Key != "a.first" || all[1].Key != "b.second" {
		t.Errorf("All() not ordered by key: %+v", all)
	}

	r.Register(EmbeddedPrompt{Key: "a.first", Text: "replaced"})
	p, _ = r.Get("a.first")
	if p.Text != "replaced" || r.Len() != 2 {
		t.Error("re-registering a key should replace the prompt")
	}
}

func TestRender(t *testing.T) {
	tmpl := template.Must(template.New("t").Parse("drug: {{.Query}}"))
	got, err := Render(tmpl, struct{ Query string }{"ibuprofen"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "drug: ibuprofen" {
		t.Errorf("Render() = %q", got)
	}

	bad := template.Must(template.New("bad").Option("missingkey=error").Parse("{{.Missing}}"))
	if _, err := Render(bad, map[string]string{}); err == nil {
		t.Error("Render() should surface execution errors")
	}
}
