// Package update checks GitHub releases for newer builds and swaps the
// running binary in place.
package update

import (
	"fmt"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"

	"github.com/DavidJovino/deivao-recon/internal/version"
)

// Repo is the GitHub slug releases are published under.
const Repo = "DavidJovino/deivao-recon"

// Status compares the running build against the newest published release.
type Status struct {
	Current  semver.Version
	Latest   semver.Version
	Notes    string
	Outdated bool
}

// Check looks up the newest release without touching the binary.
func Check() (*Status, error) {
	current, err := currentVersion()
	if err != nil {
		return nil, err
	}

	latest, found, err := selfupdate.DetectLatest(Repo)
	if err != nil {
		return nil, fmt.Errorf("checking releases: %w", err)
	}
	if !found {
		// No releases published yet; the running build is all there is.
		return &Status{Current: current, Latest: current}, nil
	}

	return &Status{
		Current:  current,
		Latest:   latest.Version,
		Notes:    latest.ReleaseNotes,
		Outdated: latest.Version.GT(current),
	}, nil
}

// Apply replaces the running binary with the newest release. When the
// build is already current nothing is downloaded.
func Apply() (*Status, error) {
	current, err := currentVersion()
	if err != nil {
		return nil, err
	}

	latest, err := selfupdate.UpdateSelf(current, Repo)
	if err != nil {
		return nil, fmt.Errorf("updating binary: %w", err)
	}

	return &Status{
		Current:  current,
		Latest:   latest.Version,
		Notes:    latest.ReleaseNotes,
		Outdated: latest.Version.GT(current),
	}, nil
}

func currentVersion() (semver.Version, error) {
	v, err := semver.ParseTolerant(version.Number)
	if err != nil {
		return semver.Version{}, fmt.Errorf("parsing build version %q: %w", version.Number, err)
	}
	return v, nil
}
