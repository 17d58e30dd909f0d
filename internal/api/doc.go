// Package api exposes the library over HTTP. Handlers decode and validate
// request bodies, call the Catalog or the LoanLedger, and translate engine
// errors into status codes with sanitized messages.
package api
