// Package vressdk is a client for the VRES voucher issuance and redemption
// backend.
//
// A Client performs unauthenticated operations (login, password recovery)
// and creates Sessions. A Session wraps a backend-issued access token and
// performs every authenticated operation: project and user administration,
// beneficiary list handling, voucher issuance, dashboards, and the vendor
// redemption flow.
//
// Request and response schemas are owned by the backend; the types here
// bind only the fields the client reads and writes.
package vressdk
