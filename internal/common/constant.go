// Package common contains shared constants and sentinel errors used across
// printfleet components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultFirmwareVersion is assigned to printers registered without one.
const DefaultFirmwareVersion = "1.0.0"
