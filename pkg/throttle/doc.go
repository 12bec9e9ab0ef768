// Package throttle normalizes response timing. Every public credential
// operation runs through RunWithFloor so that success, failure and every
// early-return path share one minimum latency, replacing per-call-site
// sleep arithmetic with a single combinator.
package throttle
