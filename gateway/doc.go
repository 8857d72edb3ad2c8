// Package gateway implements the HTTP+XML protocol of the remote
// authorization gateway. It is a stateless protocol adapter: it speaks the
// wire format, filters gateway role ids through a configured mapping, and
// leaves every reconciliation decision to the caller.
package gateway
