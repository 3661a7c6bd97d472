package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/skshohagmiah/storefront/internal/catalog"
	"github.com/skshohagmiah/storefront/internal/config"
	"github.com/skshohagmiah/storefront/internal/kv"
	"github.com/skshohagmiah/storefront/internal/logging"
	"github.com/skshohagmiah/storefront/internal/query"
	"github.com/skshohagmiah/storefront/internal/service"
	"github.com/skshohagmiah/storefront/internal/storage"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	command, args := os.Args[1], os.Args[2:]
	var err error

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("storefront %s\n", version)
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	case "config":
		err = runConfig(args)
	case "seed":
		err = runSeed(args)
	case "browse":
		err = runBrowse(args, "")
	case "search":
		if len(args) < 1 {
			err = fmt.Errorf("usage: storefront search <keyword> [flags]")
			break
		}
		err = runBrowse(args[1:], args[0])
	case "facets":
		err = runFacets(args)
	case "product":
		err = runProduct(args)
	case "related":
		err = runRelated(args)
	case "keys":
		err = runKeys(args)
	case "dashboard":
		err = runDashboard(args)
	case "bench":
		err = runBench(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `storefront %s

Usage: storefront <command> [arguments] [flags]

Commands:
  seed <file.json>          Replace the catalog with the items in a JSON array
  browse                    Query the catalog (see query flags)
  search <keyword>          Query the catalog by keyword
  facets                    Summarize brands, categories, sizes and prices
  product <id>              Print one catalog item
  related <id>              Print items related to a product
  keys [prefix]             List stored collection keys
  dashboard <user>          Print a user's cart, wishlist, unread count and orders
  bench                     Time queries over a generated in-memory catalog
  config                    Print the effective configuration
  version                   Show version information
  help                      Show this help message

Query flags:
  --category, --seller, --brand, --size, --tag, --min-price, --max-price, --min-rating,
  --in-stock, --on-sale, --featured, --new, --sort, --page, --limit

Common flags:
  --config <file>           YAML config file (default: config.yaml)
  --env <file>              Dotenv file (default: .env)

Environment Variables:
  %sSTORAGE_DRIVER       badger, memory, redis or postgres
  %sSTORAGE_PATH         Badger data directory (default: ./data)
  %sLOG_LEVEL            debug, info, warn or error
`, version, config.EnvPrefix, config.EnvPrefix, config.EnvPrefix)
}

// app is an opened store plus services for one command run.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	store    *kv.Store
	services *service.Services
}

type commonFlags struct {
	configFile string
	envFile    string
}

func newFlagSet(name string) (*pflag.FlagSet, *commonFlags) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	common := &commonFlags{}
	fs.StringVar(&common.configFile, "config", "config.yaml", "YAML config file")
	fs.StringVar(&common.envFile, "env", ".env", "dotenv file")
	return fs, common
}

func openApp(ctx context.Context, common *commonFlags) (*app, error) {
	cfg, err := config.Load(common.configFile, common.envFile)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Log.Level)

	backend, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	store := kv.New(backend, kv.WithLockStripes(cfg.Storage.Locks.Stripes))
	logger.Debug("store opened", "driver", cfg.Storage.Driver)

	return &app{
		cfg:   cfg,
		log:   logger,
		store: store,
		services: service.New(store, logger, service.Options{RelatedLimit: cfg.Catalog.Related.Limit}),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error("failed to close store", "error", err)
	}
}

func openBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, error) {
	switch cfg.Driver {
	case config.DriverBadger:
		if err := os.MkdirAll(cfg.Path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return storage.NewBadgerStorage(cfg.Path)
	case config.DriverMemory:
		return storage.NewMemoryStorage()
	case config.DriverRedis:
		return storage.NewRedisStorage(ctx, storage.RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			Namespace: cfg.Redis.Namespace,
		})
	case config.DriverPostgres:
		pg, err := storage.NewPostgresStorage(ctx, cfg.Postgres.URL, cfg.Postgres.Table, cfg.Postgres.Timeout)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return pg, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runConfig(args []string) error {
	fs, common := newFlagSet("config")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(common.configFile, common.envFile)
	if err != nil {
		return err
	}
	fmt.Print(cfg.String())
	return nil
}

func runSeed(args []string) error {
	fs, common := newFlagSet("seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: storefront seed <file.json>")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var items []catalog.CatalogItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	ctx := context.Background()
	a, err := openApp(ctx, common)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.services.Catalog.Seed(ctx, items); err != nil {
		return err
	}
	fmt.Printf("Seeded %d items\n", len(items))
	return nil
}

// queryFlags binds the catalog query flags onto fs.
type queryFlags struct {
	categories []string
	seller     string
	brands     []string
	sizes      []string
	tags       []string
	minPrice   string
	maxPrice   string
	minRating  float64
	inStock    bool
	onSale     bool
	featured   bool
	isNew      bool
	sort       string
	page       int
	limit      int
}

func bindQueryFlags(fs *pflag.FlagSet) *queryFlags {
	q := &queryFlags{}
	fs.StringSliceVar(&q.categories, "category", nil, "category ids")
	fs.StringVar(&q.seller, "seller", "", "seller id")
	fs.StringSliceVar(&q.brands, "brand", nil, "brands")
	fs.StringSliceVar(&q.sizes, "size", nil, "sizes")
	fs.StringSliceVar(&q.tags, "tag", nil, "tags")
	fs.StringVar(&q.minPrice, "min-price", "", "minimum price")
	fs.StringVar(&q.maxPrice, "max-price", "", "maximum price")
	fs.Float64Var(&q.minRating, "min-rating", 0, "minimum rating")
	fs.BoolVar(&q.inStock, "in-stock", false, "only items in stock")
	fs.BoolVar(&q.onSale, "on-sale", false, "only items on sale")
	fs.BoolVar(&q.featured, "featured", false, "only featured items")
	fs.BoolVar(&q.isNew, "new", false, "only new items")
	fs.StringVar(&q.sort, "sort", "", "price_low, price_high, rating, newest, popularity or most_reviewed")
	fs.IntVarP(&q.page, "page", "p", 1, "page number")
	fs.IntVarP(&q.limit, "limit", "n", 0, "page size (default from config)")
	return q
}

func (q *queryFlags) builder(fs *pflag.FlagSet) (*query.Builder, error) {
	b := query.NewBuilder().
		Category(q.categories...).
		Brands(q.brands...).
		Sizes(q.sizes...).
		Tags(q.tags...).
		SortBy(query.ParseSortKey(q.sort)).
		Page(q.page).
		Limit(q.limit)
	if q.seller != "" {
		b.Seller(q.seller)
	}
	if q.minPrice != "" {
		d, err := decimal.NewFromString(q.minPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid --min-price: %w", err)
		}
		b.MinPrice(d)
	}
	if q.maxPrice != "" {
		d, err := decimal.NewFromString(q.maxPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid --max-price: %w", err)
		}
		b.MaxPrice(d)
	}
	if fs.Changed("min-rating") {
		b.MinRating(q.minRating)
	}
	if q.inStock {
		b.InStockOnly()
	}
	if q.onSale {
		b.OnSale()
	}
	if q.featured {
		b.Featured()
	}
	if q.isNew {
		b.New()
	}
	return b, nil
}

func runBrowse(args []string, keyword string) error {
	fs, common := newFlagSet("browse")
	qf := bindQueryFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	b, err := qf.builder(fs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, common)
	if err != nil {
		return err
	}
	defer a.Close()

	if !fs.Changed("limit") {
		b.Limit(a.cfg.Catalog.Page.Size)
	}
	a.log.Debug("running query", "query", b.String())
	var res query.PageResult
	if keyword != "" {
		res, err = a.services.Catalog.Search(ctx, keyword, b.Build())
	} else {
		res, err = a.services.Catalog.Browse(ctx, b.Build())
	}
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runFacets(args []string) error {
	fs, common := newFlagSet("facets")
	qf := bindQueryFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	b, err := qf.builder(fs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, common)
	if err != nil {
		return err
	}
	defer a.Close()

	facets, err := a.services.Catalog.Facets(ctx, b.Build().Filters)
	if err != nil {
		return err
	}
	return printJSON(facets)
}

func runProduct(args []string) error {
	fs, common := newFlagSet("product")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: storefront product <id>")
	}

	ctx := context.Background()
	a, err := openApp(ctx, common)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.services.Catalog.Product(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("product %q not found", fs.Arg(0))
	}
	return printJSON(p)
}

func runRelated(args []string) error {
	fs, common := newFlagSet("related")
	limit := fs.IntP("limit", "n", 0, "number of items (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: storefront related <id> [--limit n]")
	}

	ctx := context.Background()
	a, err := openApp(ctx, common)
	if err != nil {
		return err
	}
	defer a.Close()

	return printJSON(a.services.Catalog.Related(ctx, fs.Arg(0), *limit))
}

func runKeys(args []string) error {
	fs, common := newFlagSet("keys")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, common)
	if err != nil {
		return err
	}
	defer a.Close()

	keys, err := a.store.Keys(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

func runDashboard(args []string) error {
	fs, common := newFlagSet("dashboard")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: storefront dashboard <user>")
	}

	ctx := context.Background()
	a, err := openApp(ctx, common)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.services.Dashboard.Summary(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func runBench(args []string) error {
	fs := pflag.NewFlagSet("bench", pflag.ContinueOnError)
	items := fs.Int("items", 10000, "catalog size")
	duration := fs.Duration("duration", 3*time.Second, "time per operation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backend, err := storage.NewMemoryStorage()
	if err != nil {
		return err
	}
	store := kv.New(backend)
	defer store.Close()
	svc := service.New(store, nil, service.Options{})
	ctx := context.Background()

	if err := svc.Catalog.Seed(ctx, generateCatalog(*items)); err != nil {
		return err
	}
	fmt.Printf("Seeded %d items\n\n", *items)

	spec := query.NewBuilder().Category("cat-1", "cat-2").InStockOnly().SortBy(query.SortPriceLow).Build()
	ops, err := benchmarkOperation(*duration, func(i int) error {
		_, err := svc.Catalog.Browse(ctx, spec)
		return err
	})
	if err != nil {
		return fmt.Errorf("browse benchmark failed after %d ops: %w", ops, err)
	}
	fmt.Printf("Browse:  %.2f ops/sec\n", float64(ops)/duration.Seconds())

	ops, err = benchmarkOperation(*duration, func(i int) error {
		svc.Catalog.Related(ctx, fmt.Sprintf("p-%d", i%*items), 8)
		return nil
	})
	if err != nil {
		return fmt.Errorf("related benchmark failed after %d ops: %w", ops, err)
	}
	fmt.Printf("Related: %.2f ops/sec\n", float64(ops)/duration.Seconds())
	return nil
}

func generateCatalog(n int) []catalog.CatalogItem {
	brands := []string{"Acme", "Summit", "Northwind", "Contoso"}
	items := make([]catalog.CatalogItem, n)
	for i := range items {
		items[i] = catalog.CatalogItem{
			ID:          fmt.Sprintf("p-%d", i),
			Name:        fmt.Sprintf("Product %d", i),
			Description: strings.Repeat("lorem ipsum ", 4),
			Price:       decimal.NewFromInt(int64(5 + i%500)),
			Category:    catalog.Category{ID: fmt.Sprintf("cat-%d", i%12)},
			Brand:       brands[i%len(brands)],
			Seller:      catalog.Seller{ID: fmt.Sprintf("seller-%d", i%40)},
			Rating:      float64(i%50) / 10,
			ReviewCount: i % 300,
			InStock:     i%7 != 0,
			StockCount:  i % 30,
			Tags:        []string{},
		}
	}
	return items
}

// benchmarkOperation runs op until duration elapses and returns the number of
// completed runs. It stops at the first error.
func benchmarkOperation(duration time.Duration, op func(int) error) (int, error) {
	stop := time.Now().Add(duration)
	ops := 0
	for time.Now().Before(stop) {
		if err := op(ops); err != nil {
			return ops, err
		}
		ops++
	}
	return ops, nil
}
