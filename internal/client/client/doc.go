// Package client contains the remote collaborators of the journal engine.
//
// # Overview
//
// Client is the transport-agnostic contract the sync engine and the
// retention manager consume: a cheap key index, selective and full fetches,
// per-record upsert and delete, and age-based bulk delete. Two
// implementations are provided:
//
//  1. GRPCClient talks to the journal server. It injects the access token
//     through a unary interceptor and maps gRPC status codes to the sentinel
//     errors of internal/common.
//  2. S3Client keeps every record as a JSON object under
//     journals/<user>/<natural key>/<id>.json in an S3-compatible bucket.
//
// # Error Handling
//
// Network failures wrap common.ErrUnavailable, auth failures
// common.ErrUnauthorized, superseded calls common.ErrCancelled. Match them
// with errors.Is.
package client
