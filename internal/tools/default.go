package tools

// Default returns the built-in tool catalog.
func Default() *Catalog {
	c, err := New(defaultDescriptors()...)
	if err != nil {
		// The built-in table is validated by tests; a bad entry is a bug.
		panic(err)
	}
	return c
}

// EssentialCommands lists the baseline commands the pipeline shells out to.
// They are checked before a run and reported, never installed implicitly.
func EssentialCommands() []string {
	return []string{"curl", "wget", "git", "python3", "pip3"}
}

func defaultDescriptors() []Descriptor {
	return []Descriptor{
		// Subdomain discovery
		{
			Name:         "amass",
			Command:      "amass",
			Description:  "In-depth attack surface mapping and subdomain enumeration",
			Groups:       []string{GroupSubdomains},
			Alternatives: []string{"subfinder", "assetfinder"},
			RunTemplate:  "amass enum -passive -d {{domain}} -o {{output}}",
			Install:      &InstallSpec{Method: "go", Package: "github.com/owasp-amass/amass/v3/..."},
		},
		{
			Name:         "subfinder",
			Command:      "subfinder",
			Description:  "Passive subdomain discovery",
			Groups:       []string{GroupSubdomains},
			Alternatives: []string{"amass", "assetfinder"},
			RunTemplate:  "subfinder -d {{domain}} -all -o {{output}}",
			Install:      &InstallSpec{Method: "go", Package: "github.com/projectdiscovery/subfinder/v2/cmd/subfinder"},
		},
		{
			Name:         "assetfinder",
			Command:      "assetfinder",
			Description:  "Find domains and subdomains related to a target",
			Groups:       []string{GroupSubdomains},
			Alternatives: []string{"amass", "subfinder"},
			RunTemplate:  "assetfinder --subs-only {{domain}} > {{output}}",
			Install:      &InstallSpec{Method: "go", Package: "github.com/tomnomnom/assetfinder"},
		},
		{
			// Certificate transparency lookup implemented in-process,
			// so a run always has at least one enumeration source.
			Name:        "crtsh",
			Description: "crt.sh certificate transparency search",
			Groups:      []string{GroupSubdomains},
			Probe:       BuiltinProbe{},
		},

		// Probing and endpoint enumeration
		{
			Name:        "httpx",
			Command:     "httpx",
			Description: "Fast HTTP prober",
			Groups:      []string{GroupLiveness, GroupEndpoints, GroupTargeted},
			RunTemplate: "cat {{input}} | httpx -silent -threads {{threads}} -o {{output}}",
			Install:     &InstallSpec{Method: "go", Package: "github.com/projectdiscovery/httpx/cmd/httpx"},
		},
		{
			Name:        "anew",
			Command:     "anew",
			Description: "Append lines from stdin that are not already in the file",
			Groups:      []string{GroupEndpoints},
			Install:     &InstallSpec{Method: "go", Package: "github.com/tomnomnom/anew"},
		},
		{
			Name:         "katana",
			Command:      "katana",
			Description:  "Crawling and spidering framework",
			Groups:       []string{GroupEndpoints},
			Alternatives: []string{"hakrawler"},
			Install:      &InstallSpec{Method: "go", Package: "github.com/projectdiscovery/katana/cmd/katana"},
		},
		{
			Name:         "hakrawler",
			Command:      "hakrawler",
			Description:  "Simple, fast web crawler",
			Groups:       []string{GroupEndpoints},
			Alternatives: []string{"katana"},
			Install:      &InstallSpec{Method: "go", Package: "github.com/hakluke/hakrawler"},
		},
		{
			Name:         "waybackurls",
			Command:      "waybackurls",
			Description:  "Fetch known URLs from the Wayback Machine",
			Groups:       []string{GroupEndpoints},
			Alternatives: []string{"gau"},
			Install:      &InstallSpec{Method: "go", Package: "github.com/tomnomnom/waybackurls"},
		},
		{
			Name:         "gau",
			Command:      "gau",
			Description:  "Fetch known URLs from OTX, Wayback Machine and Common Crawl",
			Groups:       []string{GroupEndpoints},
			Alternatives: []string{"waybackurls"},
			Install:      &InstallSpec{Method: "go", Package: "github.com/lc/gau/v2/cmd/gau"},
		},
		{
			Name:         "ffuf",
			Command:      "ffuf",
			Description:  "Fast web fuzzer",
			Groups:       []string{GroupEndpoints, GroupTargeted},
			Alternatives: []string{"feroxbuster"},
			Install:      &InstallSpec{Method: "go", Package: "github.com/ffuf/ffuf"},
		},
		{
			Name:         "feroxbuster",
			Command:      "feroxbuster",
			Description:  "Recursive content discovery",
			Groups:       []string{GroupEndpoints},
			Alternatives: []string{"ffuf"},
			Install: &InstallSpec{
				Method:  "curl",
				Command: "curl -sL https://raw.githubusercontent.com/epi052/feroxbuster/main/install-nix.sh | bash",
			},
		},

		// Vulnerability scanning
		{
			Name:        "nuclei",
			Command:     "nuclei",
			Description: "Template-based vulnerability scanner",
			Groups:      []string{GroupVulnScan},
			Install:     &InstallSpec{Method: "go", Package: "github.com/projectdiscovery/nuclei/v2/cmd/nuclei"},
		},
		{
			Name:         "naabu",
			Command:      "naabu",
			Description:  "Fast port scanner",
			Groups:       []string{GroupVulnScan},
			Alternatives: []string{"nmap"},
			Install:      &InstallSpec{Method: "go", Package: "github.com/projectdiscovery/naabu/v2/cmd/naabu"},
		},
		{
			Name:        "nmap",
			Command:     "nmap",
			Description: "Network mapper and port scanner",
			Groups:      []string{GroupVulnScan},
			Install:     &InstallSpec{Method: "apt", Package: "nmap"},
		},
		{
			Name:        "sqlmap",
			Command:     "sqlmap",
			Description: "SQL injection detection and exploitation",
			Groups:      []string{GroupVulnScan},
			Install:     &InstallSpec{Method: "pip", Package: "sqlmap"},
		},
		{
			Name:        "nikto",
			Command:     "nikto",
			Description: "Web server vulnerability scanner",
			Groups:      []string{GroupVulnScan},
			Install:     &InstallSpec{Method: "apt", Package: "nikto"},
		},
		{
			Name:         "dalfox",
			Command:      "dalfox",
			Description:  "XSS scanner",
			Groups:       []string{GroupVulnScan},
			Alternatives: []string{"xsstrike"},
			Install:      &InstallSpec{Method: "go", Package: "github.com/hahwul/dalfox/v2"},
		},
		{
			Name:         "xsstrike",
			Command:      "xsstrike",
			Description:  "Advanced XSS detection suite",
			Groups:       []string{GroupVulnScan},
			Alternatives: []string{"dalfox"},
			Install:      &InstallSpec{Method: "pip", Package: "xsstrike"},
		},

		// Targeted testing
		{
			Name:        "curl",
			Command:     "curl",
			Description: "Transfer data with URLs",
			Groups:      []string{GroupTargeted},
			Install:     &InstallSpec{Method: "apt", Package: "curl"},
		},
		{
			Name:        "jq",
			Command:     "jq",
			Description: "Command-line JSON processor",
			Groups:      []string{GroupTargeted},
			Install:     &InstallSpec{Method: "apt", Package: "jq"},
		},
		{
			Name:        "unfurl",
			Command:     "unfurl",
			Description: "Pull out bits of URLs",
			Groups:      []string{GroupTargeted},
			Install:     &InstallSpec{Method: "go", Package: "github.com/tomnomnom/unfurl"},
		},
		{
			Name:         "xxeinjector",
			Command:      "xxeinjector",
			Description:  "XXE injection testing (Ruby script)",
			Groups:       []string{GroupTargeted},
			Alternatives: []string{"python_xxe_scanner"},
			Probe: RubyScriptProbe{
				Script:   "~/tools/XXEinjector/XXEinjector.rb",
				Gem:      "nokogiri",
				Fallback: "python_xxe_scanner",
			},
			Install: &InstallSpec{
				Method:  "git",
				Command: "git clone https://github.com/enjoiz/XXEinjector.git",
			},
		},
		{
			Name:         "xsrfprobe",
			Command:      "xsrfprobe",
			Description:  "CSRF audit and exploitation toolkit",
			Groups:       []string{GroupTargeted},
			Alternatives: []string{"python_csrf_scanner"},
			Probe: PipPackageProbe{
				Package:  "xsrfprobe",
				Fallback: "python_csrf_scanner",
			},
			Install: &InstallSpec{Method: "pip", Package: "xsrfprobe"},
		},

		// Script fallbacks, usable wherever python3 is present. Substitution
		// targets only: they serve no group of their own.
		{
			Name:        "python_xxe_scanner",
			Command:     "python3",
			Description: "Bundled XXE scan script",
		},
		{
			Name:        "python_csrf_scanner",
			Command:     "python3",
			Description: "Bundled CSRF scan script",
		},
	}
}
