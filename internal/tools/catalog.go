package tools

import "fmt"

// Capability groups served by catalog tools. A group names a pipeline stage
// rather than a tool category, so one tool can serve several groups.
const (
	GroupSubdomains = "subdomain-discovery"
	GroupLiveness   = "liveness-probe"
	GroupEndpoints  = "endpoint-enum"
	GroupVulnScan   = "vuln-scan"
	GroupTargeted   = "targeted-test"

	// GroupAll selects the union of every group.
	GroupAll = "all"
)

// Groups returns the capability groups in pipeline order.
func Groups() []string {
	return []string{GroupSubdomains, GroupLiveness, GroupEndpoints, GroupVulnScan, GroupTargeted}
}

// InstallSpec describes how a missing tool can be installed.
type InstallSpec struct {
	Method  string // go, pip, apt, git or curl
	Package string // go module path, pip package or apt package name
	Command string // full install command for the git and curl methods
}

// Descriptor defines one tool: how to detect it, which pipeline stages it
// serves, which tools can stand in for it, and how to install it.
type Descriptor struct {
	Name         string
	Command      string
	Description  string
	Groups       []string
	Alternatives []string       // equivalent tools, in preference order
	RunTemplate  string         // invocation with {{domain}}, {{output}}, {{input}}, {{threads}}
	Probe        ExistenceProbe // nil means plain PATH lookup on Command
	Install      *InstallSpec
}

// Catalog is an immutable set of tool descriptors. All lookups after New
// are read-only, so a single catalog can be shared freely.
type Catalog struct {
	descs    map[string]Descriptor
	order    []string
	warnings []string
}

// New builds a catalog from descriptors. Duplicate names are an error;
// alternatives naming tools outside the catalog are dropped and recorded
// as warnings.
func New(descs ...Descriptor) (*Catalog, error) {
	c := &Catalog{descs: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("tool descriptor without a name")
		}
		if _, dup := c.descs[d.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", d.Name)
		}
		d.Groups = append([]string(nil), d.Groups...)
		d.Alternatives = append([]string(nil), d.Alternatives...)
		c.descs[d.Name] = d
		c.order = append(c.order, d.Name)
	}

	for _, name := range c.order {
		d := c.descs[name]
		kept := d.Alternatives[:0]
		for _, alt := range d.Alternatives {
			if _, ok := c.descs[alt]; !ok {
				c.warnings = append(c.warnings, fmt.Sprintf("tool %s: dropping unknown alternative %q", name, alt))
				continue
			}
			kept = append(kept, alt)
		}
		d.Alternatives = kept
		c.descs[name] = d
	}

	return c, nil
}

// Get returns the descriptor registered under name.
func (c *Catalog) Get(name string) (Descriptor, bool) {
	d, ok := c.descs[name]
	return d, ok
}

// Names returns every registered tool name in registration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Warnings lists the problems New tolerated while building the catalog.
func (c *Catalog) Warnings() []string {
	return append([]string(nil), c.warnings...)
}

// ToolsFor returns the descriptors serving a capability group, in
// registration order. GroupAll selects every tool serving at least one
// group; an unknown group selects nothing.
func (c *Catalog) ToolsFor(group string) []Descriptor {
	var out []Descriptor
	for _, name := range c.order {
		d := c.descs[name]
		if group == GroupAll {
			if len(d.Groups) > 0 {
				out = append(out, d)
			}
			continue
		}
		for _, g := range d.Groups {
			if g == group {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// AlternativesFor returns the substitutes for a tool in preference order.
func (c *Catalog) AlternativesFor(name string) []string {
	d, ok := c.descs[name]
	if !ok {
		return nil
	}
	return append([]string(nil), d.Alternatives...)
}

// RequiresSpecialProbe reports whether availability of the tool is decided
// by a registered probe instead of a PATH lookup.
func (c *Catalog) RequiresSpecialProbe(name string) bool {
	d, ok := c.descs[name]
	return ok && d.Probe != nil
}
