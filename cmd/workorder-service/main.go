package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/FreeRunner34/FreeRunner34.github.io/internal/common/config"
	"github.com/FreeRunner34/FreeRunner34.github.io/internal/common/db"
	"github.com/FreeRunner34/FreeRunner34.github.io/internal/common/logger"
	"github.com/FreeRunner34/FreeRunner34.github.io/internal/common/server"
	"github.com/FreeRunner34/FreeRunner34.github.io/internal/common/session"
	"github.com/FreeRunner34/FreeRunner34.github.io/internal/common/tracing"
	"github.com/FreeRunner34/FreeRunner34.github.io/internal/web"
	"github.com/FreeRunner34/FreeRunner34.github.io/internal/workorder"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "workorder-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config/config.json", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if insecure := cfg.InsecureDefaults(); len(insecure) > 0 {
		log.Warnf("running with development defaults for %s; set SESSION_SECRET/ADMIN_PASSWORD in production",
			strings.Join(insecure, ", "))
	}

	// Tracing is optional plumbing; a missing agent must not stop the app.
	_, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	store, err := newStore(cfg, log)
	if err != nil {
		return err
	}

	svc := workorder.NewService(store)
	sessions := session.NewManager(cfg.Auth.SessionSecret, cfg.Auth.AdminPassword)

	handler, err := web.NewHandler(svc, sessions, log)
	if err != nil {
		return fmt.Errorf("init web handler: %w", err)
	}

	mux := http.NewServeMux()
	handler.Register(mux)

	return server.RunHTTPServer(cfg, log, mux)
}

// newStore builds the record store the configured driver names: "mysql"
// talks to an external server, "stoolap" runs the embedded engine inside
// the process, "memory" keeps everything in a map and loses it on restart.
func newStore(cfg *config.Config, log logger.Logger) (workorder.Store, error) {
	switch cfg.Database.Driver {
	case "mysql":
		gdb, err := db.NewMySQL(
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Database,
			cfg.Database.MaxIdle,
			cfg.Database.MaxOpen,
		)
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}
		if err := gdb.AutoMigrate(&workorder.WorkOrder{}); err != nil {
			return nil, fmt.Errorf("migrate work_orders: %w", err)
		}
		log.Infof("using mysql store at %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
		return workorder.NewRepo(gdb), nil

	case "stoolap":
		gdb, err := db.NewStoolap(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open stoolap: %w", err)
		}
		if err := gdb.AutoMigrate(&workorder.WorkOrder{}); err != nil {
			return nil, fmt.Errorf("migrate work_orders: %w", err)
		}
		log.Infof("using embedded stoolap store (%s)", cfg.Database.DSN)
		return workorder.NewRepo(gdb), nil

	case "memory":
		log.Info("using in-memory store; data will not survive a restart")
		return workorder.NewMemStore(), nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
