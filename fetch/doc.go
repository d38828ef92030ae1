// Package fetch loads raw schema documents by URI.
//
// A Fetcher is the only way the repository package reaches outside the
// process. Implementations in this package cover the common sources:
//
//   - MapFetcher serves documents held in memory.
//   - FileFetcher reads file:// URIs and relative paths below a root
//     directory. Paths escaping the root are rejected.
//   - HTTPFetcher performs GET requests with a timeout, a User-Agent
//     header, and a response size limit.
//   - Multi dispatches to another Fetcher by URI scheme.
//   - Cache wraps any Fetcher with a bounded, optionally expiring cache.
//
// Every failure is reported as a *schemaerrors.FetchError, so callers can
// test for schemaerrors.ErrFetch with errors.Is.
//
// # Security
//
// Fetching remote documents means trusting their hosts. HTTPFetcher caps
// the response size at MaxDocumentSize unless configured otherwise, and
// FileFetcher never reads outside its Root. Repositories have no Fetcher
// at all unless one is configured.
package fetch
