// Package githist is a thin query surface over a local git checkout: commit
// subject listings, merge bases, rename detection, and tree listings. All
// queries shell out to git and return plain strings.
package githist
