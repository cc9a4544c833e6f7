// Package token implements the access-code issuance service: short-lived,
// single-use codes held in a TTL map with a periodic expiry sweep. The
// service is independent of the chat engine's identity model; codes are
// not bound to clients.
package token
