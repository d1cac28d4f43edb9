// Package upstream issues authenticated calls against the IoT platform's
// REST surface: service reads via POST, Thing property writes via PUT.
//
// Every call attaches a bearer token from the token cache plus the platform
// application key. Failures are classified into the connector's typed error
// taxonomy; a 401 triggers exactly one token invalidation and retry, and
// transient failures are retried once with a short fixed backoff.
package upstream
