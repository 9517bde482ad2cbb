package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophjournal/internal/buildinfo"
	"github.com/dmitrijs2005/gophjournal/internal/flagx"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server"
	"github.com/dmitrijs2005/gophjournal/internal/server/config"
)

func main() {

	cfg := config.LoadConfig()

	// -issue-token <user> prints an access token and exits.
	var issueFor string
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	fs.StringVar(&issueFor, "issue-token", "", "print an access token for the given user and exit")
	if err := fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-issue-token", "--issue-token"})); err != nil {
		log.Fatalf("%v", err)
	}
	if issueFor != "" {
		tok, err := server.IssueToken(cfg, issueFor)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(tok)
		return
	}

	buildinfo.PrintBuildData(os.Stdout)

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
