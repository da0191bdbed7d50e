// Package apicache provides a memoizing cache for remote API responses,
// backed by a single JSON file, plus a content-addressed store for
// downloaded binary artifacts.
//
// Responses are grouped into categories (one per endpoint family) and keyed
// by a canonical string encoding of the call arguments. Within one cache
// instance the same (category, key) pair never triggers a second remote
// call: the first successful response is authoritative until Purge. Failed
// calls are never stored, so they are retried on the next invocation.
//
// Downloads are deduplicated by SHA-1 content digest: the reserved "files"
// category maps source URLs to local filenames whose stem is the digest, so
// two URLs serving identical bytes share one file on disk.
//
// The cache is single-writer and synchronous. Mutations only set an
// in-memory dirty flag; nothing is persisted until Flush, which rewrites
// the whole backing file. A missing or corrupt backing file is replaced by
// an empty cache with a warning, never an error.
package apicache
