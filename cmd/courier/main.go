// Command courier fronts a device-control agent CLI over HTTP and MCP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/courier"
	"github.com/deixis/courier/internal/api"
	"github.com/deixis/courier/internal/config"
	"github.com/deixis/courier/internal/history"
	courmcp "github.com/deixis/courier/internal/mcp"
	"github.com/deixis/courier/internal/runner"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("courier: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "serve":
		err = serveMain(args)
	case "mcp":
		err = mcpMain(args)
	case "run":
		err = runMain(args)
	case "version":
		fmt.Println(courier.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "courier: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: courier <command> [flags]

Commands:
  serve       Start the HTTP server (POST /run, GET /health, GET /runs/:id)
  mcp         Start the MCP server
  run         Run one instruction and print the result
  version     Print the version
  help        Show this help

Use "courier <command> -h" for command-specific flags.`)
}

// --- serve ---

func serveMain(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the courier config file")
	listen := fs.String("listen", "", "override the configured listen address")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	server := api.NewServer(cfg, newRunner(cfg), newStore(cfg))
	return server.Serve(ctx)
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the courier config file")
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(courmcp.Instructions)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	server := courmcp.NewServer(cfg, newRunner(cfg), newStore(cfg))

	if *httpAddr != "" {
		return serveMCPHTTP(ctx, server, *httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveMCPHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- run ---

func runMain(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath, "path to the courier config file")
	jsonFlag := fs.Bool("json", false, "output the result as JSON")
	timeoutFlag := fs.Duration("timeout", 0, "override configured timeout (e.g. 5m)")
	_ = fs.Parse(args)

	instruction := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if instruction == "" {
		return fmt.Errorf("usage: courier run [flags] <instruction>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	r := newRunner(cfg)
	if *timeoutFlag > 0 {
		r.Timeout = *timeoutFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	res, err := r.Run(ctx, instruction)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	rec := &history.Record{
		ID:          res.RunID,
		Instruction: instruction,
		Success:     res.Success(),
		ExitCode:    res.ExitCode,
		TimedOut:    res.TimedOut,
		StdoutTail:  runner.Tail(res.Stdout, cfg.TailBytes()),
		StderrTail:  runner.Tail(res.Stderr, cfg.TailBytes()),
		Duration:    res.Duration.Seconds(),
		StartedAt:   started.UTC(),
	}

	if *jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return err
		}
	} else {
		fmt.Print(formatRunCLI(rec))
	}

	if !rec.Success {
		os.Exit(1)
	}
	return nil
}

func formatRunCLI(rec *history.Record) string {
	var b []byte
	w := func(format string, args ...any) {
		b = fmt.Appendf(b, format, args...)
	}

	switch {
	case rec.Success:
		w("ok\n")
	case rec.TimedOut:
		w("FAIL (timeout)\n")
	default:
		w("FAIL (exit %d)\n", rec.ExitCode)
	}
	w("run %s (%.2fs)\n", rec.ID, rec.Duration)

	if rec.StdoutTail != "" {
		w("\n%s\n", rec.StdoutTail)
	}
	if rec.StderrTail != "" {
		w("\n%s\n", rec.StderrTail)
	}

	return string(b)
}

// --- shared ---

func newRunner(cfg *config.Config) *runner.Runner {
	return &runner.Runner{
		Command:      cfg.Agent.Command,
		BaseURL:      cfg.Agent.BaseURL,
		Model:        cfg.Agent.Model,
		Workdir:      cfg.Agent.Workdir,
		DeviceSerial: cfg.Agent.DeviceSerial,
		Timeout:      cfg.Timeout(),
		MaxOutput:    cfg.MaxOutputBytes(),
	}
}

func newStore(cfg *config.Config) history.Store {
	return history.NewLRUStore(cfg.HistoryCapacity(), history.NewDiskStore())
}
