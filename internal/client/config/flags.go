package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/flagx"
)

// parseFlags overlays the short flags listed in the package doc. Only those
// flags are picked out of os.Args, so the JSON path flags and anything else
// pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-u", "-d", "-l", "-i", "-k", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "remote backend (grpc, s3, memory)")
	fs.StringVar(&cfg.UserID, "u", cfg.UserID, "user id")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local cache database path")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file path")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.IntVar(&cfg.ChunkSize, "k", cfg.ChunkSize, "records per cache chunk")
	writeTimeout := fs.Int("w", int(cfg.ChunkWriteTimeout.Seconds()), "chunk write timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.ChunkWriteTimeout = time.Duration(*writeTimeout) * time.Second
}
