// Package client talks to the printfleet FleetControl gRPC service.
//
// GRPCClient keeps the access token obtained by Login and attaches it to
// every later call through a unary interceptor. Transport failures are
// mapped onto the sentinel errors in errors.go so callers can match them
// with errors.Is.
package client
