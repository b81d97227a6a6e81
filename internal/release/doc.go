// Package release queries a GitHub-style release API for the newest
// published Debian package asset and decides whether the locally installed
// version needs an update.
//
// A single request is made per invocation with no retries; any failure is
// surfaced to the caller, which reports it and exits non-zero.
package release
