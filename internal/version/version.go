// Package version holds the one version number stamped into builds,
// reports and the self-updater.
package version

// Number is the current release. The updater compares GitHub release
// tags against it.
const Number = "1.0.0"
