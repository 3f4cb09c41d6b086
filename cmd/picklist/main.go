package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/picklist/pkg/interfaces/cli/commands"
)

const usage = `picklist - stock allocation for pick lists

USAGE:
    picklist allocate [options]   Allocate stock to requested lines (see: picklist allocate -help)
    picklist serve -config <file> Serve the HTTP API
    picklist migrate -config <file> [-seed <dir>]
                                  Apply database migrations and optionally seed a scenario
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "allocate":
		err = runAllocate(ctx, os.Args[2:])
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "migrate":
		err = runMigrate(ctx, os.Args[2:])
	case "-h", "-help", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAllocate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("allocate", flag.ExitOnError)
	var (
		scenarioDir     = fs.String("scenario", "", "Path to scenario directory containing CSV files")
		itemsFile       = fs.String("items", "", "Path to items CSV file")
		uomsFile        = fs.String("uoms", "", "Path to units of measure CSV file")
		warehousesFile  = fs.String("warehouses", "", "Path to warehouse hierarchy CSV file")
		inventoryFile   = fs.String("inventory", "", "Path to inventory CSV file")
		requestsFile    = fs.String("requests", "", "Path to requested lines CSV file")
		parentWarehouse = fs.String("parent-warehouse", "", "Restrict untracked stock to this warehouse and its children")
		warehouseScope  = fs.String("warehouses-scope", "", "Comma separated warehouses to draw untracked stock from")
		date            = fs.String("date", "", "Reference date YYYY-MM-DD for batch expiry")
		outputDir       = fs.String("output", "", "Output directory for results (optional)")
		format          = fs.String("format", "text", "Output format: text, json, csv, xlsx")
		verbose         = fs.Bool("verbose", false, "Enable verbose output")
		configFile      = fs.String("config", "", "Path to YAML configuration file")
		help            = fs.Bool("help", false, "Show help message")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := commands.NewAllocateCommand(commands.Config{
		ScenarioDir:     *scenarioDir,
		ItemsFile:       *itemsFile,
		UOMsFile:        *uomsFile,
		WarehousesFile:  *warehousesFile,
		InventoryFile:   *inventoryFile,
		RequestsFile:    *requestsFile,
		ParentWarehouse: *parentWarehouse,
		WarehouseScope:  *warehouseScope,
		Date:            *date,
		OutputDir:       *outputDir,
		Format:          *format,
		Verbose:         *verbose,
		ConfigFile:      *configFile,
		Help:            *help,
	})
	return cmd.Execute(ctx)
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return commands.NewServeCommand(*configFile).Execute(ctx)
}

func runMigrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to YAML configuration file")
	seedDir := fs.String("seed", "", "Scenario directory to seed the database from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return commands.NewMigrateCommand(*configFile, *seedDir).Execute(ctx)
}
