// Package transform maps between the upstream platform's wire format and the
// connector's canonical entities. Every function is pure: no I/O, no clock
// reads except where a caller passes the moment in, and no mutation of its
// inputs. Unknown upstream fields are ignored, never errors.
package transform
