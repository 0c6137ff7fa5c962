// Package common contains shared constants and sentinel errors used across
// letterdesk components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// InformationNotProvided replaces template placeholders that have no value.
const InformationNotProvided = "[Information Not Provided]"
