// Package mastodon is a minimal client for the Mastodon REST endpoints needed
// to sign in: application registration, the OAuth authorization-code
// exchange, and credential verification.
//
// The client is stateless. Every call takes the instance base URL
// (for example https://mastodon.social) so a single Client can talk to any
// number of instances.
package mastodon
