package installer

// SetDebianVersionFileForTest points Debian detection at a fake path
// and returns a restore func.
func SetDebianVersionFileForTest(path string) func() {
	old := debianVersionFile
	debianVersionFile = path
	return func() { debianVersionFile = old }
}
