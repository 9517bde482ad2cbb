package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the access
// token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Ping status reported by a healthy journal server.
const StatusOK = "OK"
