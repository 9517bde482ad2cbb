// Package api is the wire contract between the journal client and the
// journal server.
//
// The service is plain gRPC. Messages are Go structs carried by a JSON codec
// registered under the "json" content subtype, so no generated stubs are
// needed: JournalServiceClient and RegisterJournalServiceServer play the role
// protoc-gen-go-grpc output usually does.
package api
