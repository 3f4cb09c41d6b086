package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vsinha/picklist/pkg/application/dto"
	"github.com/vsinha/picklist/pkg/application/services/picklist"
	"github.com/vsinha/picklist/pkg/domain/entities"
	"github.com/vsinha/picklist/pkg/infrastructure/config"
	"github.com/vsinha/picklist/pkg/infrastructure/logging"
	"github.com/vsinha/picklist/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/picklist/pkg/interfaces/cli/output"
)

// Config holds configuration for the allocate command
type Config struct {
	ScenarioDir     string
	ItemsFile       string
	UOMsFile        string
	WarehousesFile  string
	InventoryFile   string
	RequestsFile    string
	ParentWarehouse string
	WarehouseScope  string // comma separated
	Date            string
	OutputDir       string
	Format          string
	Verbose         bool
	ConfigFile      string
	Help            bool

	// Stdout receives results and help; nil means os.Stdout
	Stdout io.Writer
}

// AllocateCommand builds a pick list from CSV requests
type AllocateCommand struct {
	config Config
}

// NewAllocateCommand creates a new allocate command with the given configuration
func NewAllocateCommand(config Config) *AllocateCommand {
	if config.Stdout == nil {
		config.Stdout = os.Stdout
	}
	return &AllocateCommand{config: config}
}

// Execute runs the allocate command
func (c *AllocateCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.App.Env, cfg.App.LogLevel)

	files, err := c.resolveInputFiles(cfg)
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	req, err := c.buildRequest(files[csv.RequestsFile])
	if err != nil {
		return err
	}

	var snapshot *entities.InventorySnapshot
	if files[csv.ItemsFile] != "" {
		snapshot, err = loadSnapshot(files)
		if err != nil {
			return err
		}
		// CSV master data always runs in memory
		cfg.Storage.Driver = config.DriverMemory
	}

	if c.config.Verbose {
		c.printHeader(files, cfg)
	}

	store, err := openBackend(ctx, cfg, snapshot)
	if err != nil {
		return err
	}
	defer func() { _ = store.close() }()

	sink, closeSink, err := newEventSink(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeSink() }()

	service := picklist.NewService(store.repos,
		picklist.WithLogger(logger),
		picklist.WithEventSink(sink),
	)

	result, err := service.Allocate(ctx, req)
	if err != nil {
		return fmt.Errorf("allocation failed: %w", err)
	}

	return output.Generate(result, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		Stdout:    c.config.Stdout,
	})
}

func (c *AllocateCommand) buildRequest(requestsFile string) (dto.AllocateRequest, error) {
	req := dto.AllocateRequest{ParentWarehouse: c.config.ParentWarehouse}

	lines, err := csv.NewLoader().LoadRequests(requestsFile)
	if err != nil {
		return req, fmt.Errorf("error loading requests: %w", err)
	}
	req.Lines = lines

	for _, w := range strings.Split(c.config.WarehouseScope, ",") {
		if w = strings.TrimSpace(w); w != "" {
			req.WarehouseScope = append(req.WarehouseScope, w)
		}
	}

	if c.config.Date != "" {
		date, err := dto.ParseDate(c.config.Date)
		if err != nil {
			return req, fmt.Errorf("invalid -date %q, want YYYY-MM-DD", c.config.Date)
		}
		req.ReferenceDate = &date
	}

	return req, nil
}

// resolveInputFiles maps scenario file names to paths. Master data files are left empty
// when availability comes from a configured database.
func (c *AllocateCommand) resolveInputFiles(cfg config.Config) (map[string]string, error) {
	files := map[string]string{}

	scenarioDir := c.config.ScenarioDir
	if scenarioDir == "" && c.config.ItemsFile == "" && cfg.Storage.Driver == config.DriverMemory {
		scenarioDir = cfg.Storage.ScenarioDir
	}

	switch {
	case scenarioDir != "":
		for _, name := range []string{csv.ItemsFile, csv.UOMsFile, csv.WarehousesFile, csv.InventoryFile, csv.RequestsFile} {
			files[name] = filepath.Join(scenarioDir, name)
		}
		if c.config.RequestsFile != "" {
			files[csv.RequestsFile] = c.config.RequestsFile
		}

	case c.config.ItemsFile != "":
		if c.config.InventoryFile == "" || c.config.RequestsFile == "" {
			return nil, fmt.Errorf("-items needs -inventory and -requests")
		}
		files[csv.ItemsFile] = c.config.ItemsFile
		files[csv.UOMsFile] = c.config.UOMsFile
		files[csv.WarehousesFile] = c.config.WarehousesFile
		files[csv.InventoryFile] = c.config.InventoryFile
		files[csv.RequestsFile] = c.config.RequestsFile

	case cfg.Storage.Driver != config.DriverMemory:
		if c.config.RequestsFile == "" {
			return nil, fmt.Errorf("-requests is required with %s storage", cfg.Storage.Driver)
		}
		files[csv.RequestsFile] = c.config.RequestsFile

	default:
		return nil, fmt.Errorf("must specify either -scenario directory or individual CSV files")
	}

	for _, name := range []string{csv.ItemsFile, csv.InventoryFile, csv.RequestsFile} {
		path := files[name]
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found: %s", name, path)
		}
	}

	return files, nil
}

// loadSnapshot reads master data and inventory. Missing unit and warehouse files are
// treated as empty.
func loadSnapshot(files map[string]string) (*entities.InventorySnapshot, error) {
	loader := csv.NewLoader()
	snapshot := &entities.InventorySnapshot{}

	items, err := loader.LoadItems(files[csv.ItemsFile])
	if err != nil {
		return nil, fmt.Errorf("error loading items: %w", err)
	}
	snapshot.Items = items

	if path := files[csv.UOMsFile]; fileExists(path) {
		if snapshot.UOMs, err = loader.LoadUOMs(path); err != nil {
			return nil, fmt.Errorf("error loading units: %w", err)
		}
	}
	if path := files[csv.WarehousesFile]; fileExists(path) {
		if snapshot.Warehouses, err = loader.LoadWarehouses(path); err != nil {
			return nil, fmt.Errorf("error loading warehouses: %w", err)
		}
	}

	if err := loader.LoadInventory(files[csv.InventoryFile], snapshot); err != nil {
		return nil, fmt.Errorf("error loading inventory: %w", err)
	}
	return snapshot, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func (c *AllocateCommand) printHeader(files map[string]string, cfg config.Config) {
	w := c.config.Stdout
	fmt.Fprintf(w, "Pick List CLI\n")
	if files[csv.ItemsFile] != "" {
		fmt.Fprintf(w, "Input files:\n")
		for _, name := range []string{csv.ItemsFile, csv.UOMsFile, csv.WarehousesFile, csv.InventoryFile} {
			if files[name] != "" {
				fmt.Fprintf(w, "  %s: %s\n", name, files[name])
			}
		}
	} else {
		fmt.Fprintf(w, "Storage: %s\n", cfg.Storage.Driver)
	}
	fmt.Fprintf(w, "  %s: %s\n", csv.RequestsFile, files[csv.RequestsFile])
	fmt.Fprintf(w, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(w, "Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Fprintln(w)
}

func (c *AllocateCommand) showHelp() {
	fmt.Fprint(c.config.Stdout, `picklist allocate - allocate stock to requested lines

USAGE:
    picklist allocate -scenario <directory>
    picklist allocate -items <file> -inventory <file> -requests <file> ...
    picklist allocate -config <file> -requests <file>     # sqlite or postgres storage

OPTIONS:
    -scenario <dir>           Scenario directory containing CSV files
    -items <file>             Items CSV file
    -uoms <file>              Units of measure CSV file (optional)
    -warehouses <file>        Warehouse hierarchy CSV file (optional)
    -inventory <file>         Inventory CSV file
    -requests <file>          Requested lines CSV file
    -parent-warehouse <name>  Restrict untracked stock to this warehouse and its children
    -warehouses-scope <a,b>   Restrict untracked stock to these warehouses
    -date <YYYY-MM-DD>        Reference date for batch expiry (default: today)
    -format <fmt>             Output format: text, json, csv, xlsx (default: text)
    -output <dir>             Output directory (required for csv and xlsx)
    -config <file>            YAML configuration file
    -verbose                  Enable verbose output
    -help                     Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── items.csv        item_code,description,stock_uom,has_serial_no,has_batch_no
    ├── uoms.csv         uom,must_be_whole_number
    ├── warehouses.csv   warehouse,parent_warehouse,is_group
    ├── inventory.csv    item_code,type,identifier,warehouse,quantity,date
    └── requests.csv     item_code,qty,uom,stock_uom,conversion_factor,sales_order,sales_order_item,work_order

inventory.csv rows have type stock, serial or batch. For serials the date is the
purchase date; for batches it is the expiry date.
`)
}
