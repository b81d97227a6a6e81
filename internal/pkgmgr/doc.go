// Package pkgmgr wraps the system package database and a package-manager
// front-end (nala, with a dpkg fallback) behind synchronous subprocess
// calls.
//
// Every invocation yields an explicit Result with exit code and captured
// output instead of an opaque failure; dependency resolution stays entirely
// with the front-end. The Runner seam lets tests substitute subprocesses.
package pkgmgr
