// Package config loads runtime configuration for the journal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment, after loading .env and .env.local when present.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   address:port of the journal gRPC server
//	-b string   remote backend: grpc, s3 or memory
//	-u string   user id to open the journal for
//	-d string   path of the local cache database
//	-l string   path of the rotating log file
//	-i int      online status check interval (seconds)
//	-k int      records per cache chunk
//	-w int      per-chunk write timeout (seconds)
//
// # JSON schema
//
// Intervals accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "backend": "grpc",
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "user_id": "alice",
//	  "database_path": "journal.db",
//	  "online_check_interval": "3s",
//	  "auto_cleanup_interval": "24h",
//	  "chunk_size": 50,
//	  "s3": {"bucket": "journals", "region": "us-east-1"}
//	}
//
// The access token is never read from JSON or flags; it comes from
// JOURNAL_TOKEN or an interactive prompt.
package config
