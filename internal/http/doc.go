// Package http exposes the medication reminder services over a JSON HTTP API.
//
// The transport layer is deliberately thin: handlers decode requests, resolve
// the authenticated principal from the request context, delegate to the
// application services, and translate service errors into status codes. All
// scheduling and completion invariants live below this package.
package http
