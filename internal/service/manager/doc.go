// Package manager orchestrates the install, update and remove commands.
//
// A single invocation reads the installed version from dpkg, queries the
// release feed, compares versions, downloads the Debian package asset to a
// scoped temporary file when needed and delegates the actual install or
// removal to the package-manager front-end. Each run is independent and
// fully synchronous.
package manager
