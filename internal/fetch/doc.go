// Package fetch downloads release assets to scoped temporary files.
//
// The downloaded file is guaranteed not to survive the process: error paths
// remove the partial artifact immediately, success hands the caller a
// cleanup function to defer, and an interrupt cancels the request context so
// the error path runs.
package fetch
