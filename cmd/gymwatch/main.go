// Command gymwatch scans an area for gyms and renders a static report page
// per gym. One invocation is one scan: resolve the location, poll the map,
// fetch each gym's detail record with a fixed pause between requests, then
// publish text and HTML reports from whatever is on disk.
//
// With -offline it skips the network entirely and re-renders reports from the
// data directory of a previous run.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/banshee-data/gymwatch/internal/catalog"
	"github.com/banshee-data/gymwatch/internal/config"
	"github.com/banshee-data/gymwatch/internal/fsutil"
	"github.com/banshee-data/gymwatch/internal/geo"
	"github.com/banshee-data/gymwatch/internal/monitoring"
	"github.com/banshee-data/gymwatch/internal/pogo"
	"github.com/banshee-data/gymwatch/internal/report"
	"github.com/banshee-data/gymwatch/internal/store"
	"github.com/banshee-data/gymwatch/internal/timeutil"
	"github.com/banshee-data/gymwatch/internal/version"
)

var (
	configPath  = flag.String("config", "", "path to settings file (config.json when present)")
	authService = flag.String("auth", "", "credential provider: ptc or google")
	username    = flag.String("username", "", "account username")
	password    = flag.String("password", "", "account password (prompted when omitted)")
	location    = flag.String("location", "", "address or place name to scan")
	delay       = flag.Float64("delay", 0, "seconds to pause after each gym detail request")
	dataDir     = flag.String("data", "", "data directory")
	webDir      = flag.String("web", "", "output directory for gym pages")
	geocoderURL = flag.String("geocoder-url", "", "geocoding endpoint override")
	serviceURL  = flag.String("service-url", "", "game RPC endpoint")
	debug       = flag.Bool("debug", false, "verbose logging, including raw payload dumps")
	testMode    = flag.Bool("test", false, "resolve the location, print it and exit")
	offline     = flag.Bool("offline", false, "re-render reports from stored data, no scanning")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("gymwatch %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	monitoring.SetDebug(*debug)

	// A .env file is optional; it only seeds the GYMWATCH_* variables.
	_ = godotenv.Load()

	fs := fsutil.OSFileSystem{}
	cfg, err := loadConfig(fs)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *offline {
		if err := cfg.ValidateOffline(); err != nil {
			log.Fatalf("config: %v", err)
		}
		if err := runOffline(fs, cfg, os.Stdout); err != nil {
			log.Fatalf("offline replay: %v", err)
		}
		return
	}

	if cfg.Password == "" {
		cfg.Password, err = promptPassword()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	geocoder := geo.NewNominatimGeocoder(cfg.GeocoderURL, nil)
	pos, err := geocoder.Resolve(ctx, cfg.Location)
	if err != nil {
		log.Fatalf("resolving %q: %v", cfg.Location, err)
	}
	monitoring.Logf("location %q resolved to %v", cfg.Location, pos)

	if *testMode {
		fmt.Printf("%s -> %v\n", cfg.Location, pos)
		return
	}

	if err := runScan(ctx, fs, cfg, pos, os.Stdout); err != nil {
		log.Fatalf("scan: %v", err)
	}
}

// loadConfig merges the settings file, the environment and the flags, in that
// order of increasing precedence.
func loadConfig(fs fsutil.FileSystem) (config.Config, error) {
	path := *configPath
	required := path != ""
	if path == "" {
		path = config.DefaultConfigPath
	}

	cfg, err := config.Load(fs, path, required)
	if err != nil {
		return cfg, err
	}
	cfg.Merge(envOverrides())
	cfg.Merge(flagOverrides())
	return cfg, nil
}

func envOverrides() config.Config {
	return config.Config{
		AuthService: os.Getenv("GYMWATCH_AUTH"),
		Username:    os.Getenv("GYMWATCH_USERNAME"),
		Password:    os.Getenv("GYMWATCH_PASSWORD"),
		Location:    os.Getenv("GYMWATCH_LOCATION"),
		ServiceURL:  os.Getenv("GYMWATCH_SERVICE_URL"),
	}
}

func flagOverrides() config.Config {
	return config.Config{
		AuthService:  *authService,
		Username:     *username,
		Password:     *password,
		Location:     *location,
		DelaySeconds: *delay,
		DataDir:      *dataDir,
		WebDir:       *webDir,
		GeocoderURL:  *geocoderURL,
		ServiceURL:   *serviceURL,
	}
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// runScan is the live pipeline: authenticate, poll the map, fetch gym details
// serially, record the run and publish reports. The run record is written
// even when the fetch pass is interrupted so partial progress is visible.
func runScan(ctx context.Context, fs fsutil.FileSystem, cfg config.Config, pos geo.Position, out io.Writer) error {
	st := store.New(fs, cfg.DataDir)
	if err := st.EnsureLayout(); err != nil {
		return err
	}

	cats, err := catalog.Load(fs, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("loading catalogs: %w", err)
	}
	monitoring.Logf("catalogs loaded: %d species, %d moves", cats.SpeciesCount(), cats.MoveCount())

	client := pogo.NewRPCClient(cfg.ServiceURL, nil)
	if err := client.Authenticate(ctx, cfg.AuthService, cfg.Username, cfg.Password); err != nil {
		return err
	}

	clock := timeutil.RealClock{}
	snapshot, err := pogo.NewPoller(client, st, clock).Poll(ctx, pos)
	if err != nil {
		return err
	}

	fetcher := pogo.NewFetcher(client, st, clock, cfg.Delay())
	stats, fetchErr := fetcher.FetchAll(ctx, snapshot)

	if err := st.SaveRunInfo(store.RunInfo{
		ScanID:    snapshot.ScanID,
		Location:  cfg.Location,
		Position:  pos,
		StartedAt: snapshot.FetchedAt,
		GymsSeen:  stats.GymsSeen,
		Fetched:   stats.Fetched,
		Malformed: stats.Malformed,
		Failed:    stats.Failed,
	}); err != nil {
		monitoring.Logf("saving run info: %v", err)
	}
	if fetchErr != nil {
		return fetchErr
	}

	return publish(fs, cfg, cats, out)
}

// runOffline re-renders reports from a previous run's data directory.
func runOffline(fs fsutil.FileSystem, cfg config.Config, out io.Writer) error {
	cats, err := catalog.Load(fs, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("loading catalogs: %w", err)
	}
	return publish(fs, cfg, cats, out)
}

func publish(fs fsutil.FileSystem, cfg config.Config, cats *catalog.Catalogs, out io.Writer) error {
	gyms, err := store.New(fs, cfg.DataDir).LoadGymDetails()
	if err != nil {
		return fmt.Errorf("loading gym records: %w", err)
	}

	pub := report.NewPublisher(fs, cfg.WebDir, cats, report.DefaultTeams(), out)
	stats, err := pub.PublishAll(gyms)
	if err != nil {
		return err
	}
	monitoring.Logf("published %d gym pages to %s (%d failed)", stats.Rendered, cfg.WebDir, stats.Failed)
	return nil
}
