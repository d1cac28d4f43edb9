// Package oauth2 acquires and caches bearer tokens for the upstream platform
// using the OAuth2 client-credentials grant.
//
// Client performs the token exchange against the environment's fixed token
// endpoint. Cache holds at most one valid token per environment and guards
// refreshes with a single-flight group so concurrent callers never trigger
// duplicate exchanges.
package oauth2
