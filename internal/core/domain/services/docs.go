// Package services provides stateless domain services that work across the
// items of a manifest rather than on a single aggregate.
//
// The package includes:
//   - DedupGuard: the active-only uniqueness policy over tracking codes
//   - OrderingEngine: the read-side projection that filters and sorts the work list
//   - CandidateExtractor: best-effort label field suggestions from recognized text
//
// All services are pure: identical input yields identical output, and none of
// them mutates the items it is given.
package services
