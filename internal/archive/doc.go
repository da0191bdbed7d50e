// Package archive talks to the Zenodo deposition API for long-term
// archival of release artifacts. Depositions are mutating resources, so
// unlike the tracker none of these calls are memoized.
package archive
