package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/opentracing/opentracing-go"

	"github.com/sageimap/goimap/config"
	"github.com/sageimap/goimap/connection"
	"github.com/sageimap/goimap/internal/logger"
	"github.com/sageimap/goimap/internal/tracing"
	"github.com/sageimap/goimap/mailbox"
	"github.com/sageimap/goimap/pool"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: goimap <command>")
		fmt.Println("Commands:")
		fmt.Println("  check   Connect, run a health check, and print mailbox status")
		fmt.Println("  list    Connect and list mailboxes")
		os.Exit(1)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("config initialization failed: %v", err)
	}

	appLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}

	tracer, tracerCloser, err := tracing.NewJaegerTracer(&cfg.Tracing, appLogger)
	if err != nil {
		log.Fatalf("tracer initialization failed: %v", err)
	}
	opentracing.SetGlobalTracer(tracer)
	defer tracerCloser.Close()

	p := pool.New(cfg.Pool.MaxConnectionsPerKey, appLogger)
	conn := connection.New(cfg.Connection, appLogger, p)

	ctx := context.Background()
	if err := conn.Connect(ctx); err != nil {
		log.Fatalf("connect failed: %v", err)
	}
	defer conn.Disconnect()

	svc := mailbox.New(conn)

	switch os.Args[1] {
	case "check":
		status, err := svc.Status(ctx, mailbox.Inbox, mailbox.StatusMessages, mailbox.StatusUnseen)
		if err != nil {
			log.Fatalf("status failed: %v", err)
		}
		health := conn.Check()
		fmt.Printf("INBOX: %d messages, %d unseen\n", status.Messages, status.Unseen)
		fmt.Printf("connection: connected=%v success_rate=%.1f%% avg_latency=%s\n",
			health.IsConnected, health.SuccessRate, health.AverageResponseTime)

	case "list":
		infos, err := svc.List(ctx, "", "*")
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		for _, info := range infos {
			fmt.Println(info.Name)
		}

	default:
		fmt.Printf("unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}
