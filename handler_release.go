//go:build !debug

package routines

// buildDefaultHandler returns the release-build default handler. Failures of
// routines without a configured handler are discarded; applications opt into
// observability via SetDefaultHandler or WithHandler.
func buildDefaultHandler() Handler {
	return DiscardHandler
}
