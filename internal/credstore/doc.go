// Package credstore persists mammut's OAuth credentials on disk.
//
// Each Cache holds one key/value map backed by one JSON file. Every mutation
// rewrites the whole file atomically and leaves it readable by the owner only.
//
// SECURITY: the caches hold client secrets and access tokens. Files are
// written with 0600 permissions and the storage directory is created with
// 0700. Values are never logged, only keys.
package credstore
