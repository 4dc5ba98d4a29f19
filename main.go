package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet-allocation/allocation"
	"fleet-allocation/api"
	"fleet-allocation/fleet"
	"fleet-allocation/formatter"
	"fleet-allocation/metrics"
	"fleet-allocation/parser"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	exitError    = 1
	exitRejected = 2
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Define flags
	planFile := flag.String("plan", "", "Plan YAML file (required unless -serve)")
	allocationsFile := flag.String("allocations", "", "CSV of company_id, allocated_weight, number_of_trucks replacing the plan's allocations")
	fleetFile := flag.String("fleet", "", "CSV of company_id, available_trucks")
	format := flag.String("format", "text", "Output format: text|json|csv")
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "Postgres URL for fleet availability (default $DATABASE_URL)")
	serve := flag.Bool("serve", false, "Run the HTTP API instead of validating a single plan")
	addr := flag.String("addr", ":"+getEnvOrDefault("PORT", "8080"), "HTTP API listen address")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	pushGateway := flag.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	wait := flag.Bool("wait", false, "Keep process running after completion to allow for metric scraping")

	// Parse command-line flags
	flag.Parse()

	var db *sql.DB
	if *databaseURL != "" {
		var err error
		db, err = fleet.Open(*databaseURL)
		if err != nil {
			log.Printf("Error connecting to fleet database: %v", err)
			os.Exit(exitError)
		}
		defer db.Close()
	}

	if *serve {
		runServer(*addr, fleetSource(db, nil))
		return
	}

	// Start metrics server if address provided
	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			log.Printf("Metrics server listening on %s/metrics", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				log.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Validate required input flag
	if *planFile == "" {
		fmt.Println("Error: -plan flag is required")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(exitError)
	}

	// Validate format enum
	validFormats := map[string]bool{"text": true, "json": true, "csv": true}
	if !validFormats[*format] {
		fmt.Printf("Error: format must be one of: text, json, csv (got: %s)\n", *format)
		os.Exit(exitError)
	}

	session, planFleet, err := loadSession(*planFile, *allocationsFile)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(exitError)
	}

	// -fleet replaces the counts embedded in the plan
	counts := fleet.Static(planFleet)
	if *fleetFile != "" {
		f, err := readFleet(*fleetFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(exitError)
		}
		counts = fleet.Static(f)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := session.Validate(ctx, fleetSource(db, counts))
	if err != nil {
		fmt.Printf("Error resolving fleet availability: %v\n", err)
		os.Exit(exitError)
	}

	// Output based on format
	report := result.Report()
	switch *format {
	case "json":
		fmt.Print(formatter.FormatJSON(report))
	case "csv":
		fmt.Print(formatter.FormatCSV(report))
	default: // "text"
		fmt.Print(formatter.FormatText(report))
	}

	// Handle metrics pushing or waiting
	if *pushGateway != "" {
		jobName := "fleet_allocation"
		if err := push.New(*pushGateway, jobName).Gatherer(metrics.Registry).Push(); err != nil {
			fmt.Fprintf(os.Stderr, "Error pushing to Pushgateway: %v\n", err)
		} else {
			fmt.Println("\nMetrics successfully pushed to Pushgateway")
		}
	}

	if *wait && *metricsAddr != "" {
		fmt.Println("\nProcess kept alive for metric scraping. Press Ctrl+C to exit.")
		// Wait for interrupt signal
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		fmt.Println("\nExiting...")
	}

	if result.State() == allocation.Rejected {
		os.Exit(exitRejected)
	}
}

// loadSession reads the plan and optionally replaces its allocations.
func loadSession(planFile, allocationsFile string) (allocation.Session, map[string]int, error) {
	file, err := os.Open(planFile)
	if err != nil {
		return allocation.Session{}, nil, fmt.Errorf("opening plan: %w", err)
	}
	defer file.Close()

	in, err := parser.ParsePlan(file)
	if err != nil {
		return allocation.Session{}, nil, fmt.Errorf("parsing plan: %w", err)
	}
	plan, available, err := in.ToDomain()
	if err != nil {
		return allocation.Session{}, nil, fmt.Errorf("parsing plan: %w", err)
	}

	if allocationsFile != "" {
		af, err := os.Open(allocationsFile)
		if err != nil {
			return allocation.Session{}, nil, fmt.Errorf("opening allocations: %w", err)
		}
		defer af.Close()

		plan.Allocations, err = parser.ParseAllocations(af)
		if err != nil {
			return allocation.Session{}, nil, fmt.Errorf("parsing allocations: %w", err)
		}
	}

	return allocation.SessionFromPlan(plan), available, nil
}

func readFleet(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fleet: %w", err)
	}
	defer f.Close()

	available, err := parser.ParseFleet(f)
	if err != nil {
		return nil, fmt.Errorf("parsing fleet: %w", err)
	}
	return available, nil
}

// fleetSource prefers explicit counts over the database.
func fleetSource(db *sql.DB, static fleet.Static) fleet.Source {
	if static != nil {
		return static
	}
	if db != nil {
		return fleet.NewPostgresSource(db)
	}
	return fleet.Static{}
}

func runServer(addr string, src fleet.Source) {
	app := api.NewApp(api.NewHandler(src))

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		_ = app.Shutdown()
	}()

	log.Printf("Fleet Allocation API starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
