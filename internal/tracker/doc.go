// Package tracker provides a typed, cache-backed client for the GitHub
// issue and pull-request API.
//
// Every read goes through an apicache.Cache, so repeated runs against the
// same repository replay recorded responses instead of spending rate limit.
// Responses are decoded into explicit record types (Pull, Review, User,
// Release, ...) at the cache boundary; nothing downstream touches raw JSON.
// Mutating operations (creating releases, uploading assets) bypass the
// cache.
package tracker
