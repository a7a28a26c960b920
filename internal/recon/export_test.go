package recon

// NormalizeHostForTest exposes normalizeHost to the external test package.
func NormalizeHostForTest(line string) string {
	return normalizeHost(line)
}
