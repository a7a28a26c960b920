package tools_test

import (
	"strings"
	"testing"

	"github.com/DavidJovino/deivao-recon/internal/tools"
)

func TestNewRejectsDuplicateName(t *testing.T) {
	_, err := tools.New(
		tools.Descriptor{Name: "alpha", Command: "alpha"},
		tools.Descriptor{Name: "alpha", Command: "alpha2"},
	)
	if err == nil {
		t.Fatal("New accepted a duplicate tool name, want error")
	}
}

func TestNewRejectsEmptyName(t *testing.T) {
	_, err := tools.New(tools.Descriptor{Command: "alpha"})
	if err == nil {
		t.Fatal("New accepted an unnamed descriptor, want error")
	}
}

func TestNewPrunesDanglingAlternatives(t *testing.T) {
	c, err := tools.New(
		tools.Descriptor{Name: "alpha", Command: "alpha", Alternatives: []string{"beta", "ghost"}},
		tools.Descriptor{Name: "beta", Command: "beta"},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	alts := c.AlternativesFor("alpha")
	if len(alts) != 1 || alts[0] != "beta" {
		t.Errorf("AlternativesFor(alpha) = %v, want [beta]", alts)
	}

	warnings := c.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "ghost") {
		t.Errorf("warning %q does not name the dropped alternative", warnings[0])
	}
}

func TestToolsFor(t *testing.T) {
	c, err := tools.New(
		tools.Descriptor{Name: "a", Command: "a", Groups: []string{"g1"}},
		tools.Descriptor{Name: "b", Command: "b", Groups: []string{"g1", "g2"}},
		tools.Descriptor{Name: "c", Command: "c", Groups: []string{"g2"}},
		tools.Descriptor{Name: "d", Command: "d"},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		group string
		want  []string
	}{
		{"g1", []string{"a", "b"}},
		{"g2", []string{"b", "c"}},
		{tools.GroupAll, []string{"a", "b", "c"}},
		{"nope", nil},
	}
	for _, tt := range tests {
		var got []string
		for _, d := range c.ToolsFor(tt.group) {
			got = append(got, d.Name)
		}
		if len(got) != len(tt.want) {
			t.Errorf("ToolsFor(%q) = %v, want %v", tt.group, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ToolsFor(%q) = %v, want %v", tt.group, got, tt.want)
				break
			}
		}
	}
}

func TestRequiresSpecialProbe(t *testing.T) {
	c, err := tools.New(
		tools.Descriptor{Name: "plain", Command: "plain"},
		tools.Descriptor{Name: "probed", Command: "probed", Probe: tools.BuiltinProbe{}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.RequiresSpecialProbe("plain") {
		t.Error("RequiresSpecialProbe(plain) = true, want false")
	}
	if !c.RequiresSpecialProbe("probed") {
		t.Error("RequiresSpecialProbe(probed) = false, want true")
	}
	if c.RequiresSpecialProbe("missing") {
		t.Error("RequiresSpecialProbe(missing) = true, want false")
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := tools.Default()

	if w := c.Warnings(); len(w) != 0 {
		t.Errorf("default catalog has warnings: %v", w)
	}

	var discovery []string
	for _, d := range c.ToolsFor(tools.GroupSubdomains) {
		discovery = append(discovery, d.Name)
	}
	want := []string{"amass", "subfinder", "assetfinder", "crtsh"}
	if len(discovery) != len(want) {
		t.Fatalf("subdomain-discovery tools = %v, want %v", discovery, want)
	}
	for i := range want {
		if discovery[i] != want[i] {
			t.Fatalf("subdomain-discovery tools = %v, want %v", discovery, want)
		}
	}

	if !c.RequiresSpecialProbe("crtsh") {
		t.Error("crtsh should carry a probe")
	}
	if !c.RequiresSpecialProbe("xxeinjector") {
		t.Error("xxeinjector should carry a probe")
	}

	httpx, ok := c.Get("httpx")
	if !ok {
		t.Fatal("httpx not registered")
	}
	if len(httpx.Groups) != 3 {
		t.Errorf("httpx groups = %v, want liveness, endpoint and targeted groups", httpx.Groups)
	}
	if !strings.Contains(httpx.RunTemplate, "{{input}}") {
		t.Errorf("httpx template %q should consume an input file", httpx.RunTemplate)
	}

	alts := c.AlternativesFor("naabu")
	if len(alts) != 1 || alts[0] != "nmap" {
		t.Errorf("AlternativesFor(naabu) = %v, want [nmap]", alts)
	}

	// Every go-installable tool must name its module path.
	for _, name := range c.Names() {
		d, _ := c.Get(name)
		if d.Install == nil {
			continue
		}
		switch d.Install.Method {
		case "go", "pip", "apt":
			if d.Install.Package == "" {
				t.Errorf("tool %s: install method %s without a package", name, d.Install.Method)
			}
		case "git", "curl":
			if d.Install.Command == "" {
				t.Errorf("tool %s: install method %s without a command", name, d.Install.Method)
			}
		default:
			t.Errorf("tool %s: unknown install method %q", name, d.Install.Method)
		}
	}
}
