// Package cli provides the interactive printfleet operator console.
//
// It connects to the FleetControl gRPC service, asks for a password without
// echo, and runs a small REPL for listing printers and firmware, starting
// and cancelling deployments, and reading history statistics.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
