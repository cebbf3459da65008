/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the calendar engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (environment, then flags)
  2. Parse the calendar config file (or use the default chain)
  3. Initialize SQLite store
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (environment variable in brackets):
  -port      HTTP server port, default 8080 [PORT]
  -db        SQLite database path, default calendar.db [DB_PATH]
             Use ":memory:" for in-memory database
  -calendar  Calendar config file, .json or .yaml [CALENDAR_CONFIG]
  -tz        Location calendar units snap in, default Local [CALENDAR_TZ]
  -cors      Comma-separated CORS origins [CORS_ORIGINS]
  -scenario  Demo scenario to load at startup [SCENARIO]

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -db=":memory:" -scenario=activity
  ./server -calendar=./calendar.yaml -tz=Europe/Paris

SEE ALSO:
  - api/server.go: Router configuration
  - factory/chain.go: Calendar config parsing
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/warp/calendar-engine/api"
	"github.com/warp/calendar-engine/factory"
	"github.com/warp/calendar-engine/store/sqlite"
)

// defaultCalendar drills down from years to days, latest year first.
const defaultCalendar = `{
	"year":  {"order": "desc"},
	"month": {},
	"day":   {},
	"pager": {"page_param": "page", "limit": 20},
	"out_of_range": "clamp"
}`

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid timezone %q: %v", cfg.Timezone, err)
	}

	// Calendar configuration
	f := factory.NewChainFactory()
	var settings *factory.Settings
	if cfg.CalendarConfig != "" {
		settings, err = f.Load(cfg.CalendarConfig)
	} else {
		settings, err = f.ParseJSON([]byte(defaultCalendar))
	}
	if err != nil {
		log.Fatalf("Failed to load calendar config: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler, err := api.NewHandler(store, settings, loc)
	if err != nil {
		log.Fatalf("Failed to initialize handler: %v", err)
	}
	if cfg.Scenario != "" {
		if err := handler.LoadScenarioByID(context.Background(), cfg.Scenario); err != nil {
			log.Printf("Warning: Failed to load scenario %q: %v", cfg.Scenario, err)
		}
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler, cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d (calendar in %s)", cfg.Port, loc)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
