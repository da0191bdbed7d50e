// Package notes renders release notes from a categorized pull-request set,
// in Markdown (for the tracker release body) or reStructuredText (for the
// documentation appendix), and builds the archival deposition metadata.
package notes
