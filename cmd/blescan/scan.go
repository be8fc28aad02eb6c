package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/internal/transport"
	"github.com/srg/blescan/internal/transport/goble"
	"github.com/srg/blescan/pkg/config"
	"github.com/srg/blescan/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for BLE devices",
	Long: `Scan for and display Bluetooth Low Energy devices in the vicinity.

Each device is listed once with its latest advertisement: name, signal
strength, TX power, manufacturer and advertised services. With --watch the
table is redrawn as devices are seen (or, with --format json, every
advertisement is streamed as one JSON line) until Ctrl+C.`,
	Example: `  blescan scan
  blescan scan -d 30s --sort rssi
  blescan scan --services 180D,180F --format json
  blescan scan --manufacturer 0x004C --watch`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var (
	scanDuration     time.Duration
	scanFormat       string
	scanServices     []string
	scanAddresses    []string
	scanManufacturer []string
	scanMode         string
	scanNoDuplicates bool
	scanWatch        bool
	scanSort         string
	scanNoColor      bool
)

const watchRefreshInterval = time.Second

// scanTransport is what the scan command needs from a transport.
type scanTransport interface {
	transport.Transport
	Close() error
}

// newTransport creates the platform transport.
// This is a variable so that it can be overridden in tests.
var newTransport = func(logger *logrus.Logger, cfg *config.Config) scanTransport {
	return goble.New(logger, goble.WithEventBuffer(cfg.SubscriberBuffer))
}

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 10*time.Second, "Scan duration (0 for indefinite)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json)")
	scanCmd.Flags().StringSliceVarP(&scanServices, "services", "s", nil, "Only show devices advertising one of these service UUIDs")
	scanCmd.Flags().StringSliceVarP(&scanAddresses, "address", "a", nil, "Only show devices with these addresses or platform IDs")
	scanCmd.Flags().StringSliceVarP(&scanManufacturer, "manufacturer", "m", nil, "Only show devices with manufacturer data from these company IDs (e.g. 0x004C)")
	scanCmd.Flags().StringVar(&scanMode, "mode", string(transport.ScanModeLowLatency), "Scan mode (low-power, balanced, low-latency, opportunistic)")
	scanCmd.Flags().BoolVar(&scanNoDuplicates, "no-duplicates", false, "Report each device once instead of on every advertisement")
	scanCmd.Flags().BoolVarP(&scanWatch, "watch", "w", false, "Continuously scan and update results")
	scanCmd.Flags().StringVar(&scanSort, "sort", "order", "Sort table rows by order, rssi or name")
	scanCmd.Flags().BoolVar(&scanNoColor, "no-color", false, "Disable colored output")
	scanCmd.Flags().Bool("verbose", false, "Enable debug logging")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	format := cfg.OutputFormat
	if cmd.Flags().Changed("format") {
		format = scanFormat
	}
	if format != "table" && format != "json" {
		return fmt.Errorf("invalid format '%s': must be one of [table json]", format)
	}
	switch scanSort {
	case "order", "rssi", "name":
	default:
		return fmt.Errorf("invalid sort '%s': must be one of [order rssi name]", scanSort)
	}

	opts, err := buildScanOptions()
	if err != nil {
		return err
	}

	// Logger level: config file, then --log-level or --verbose
	logger, err := configureLogger(cmd, cfg, "verbose")
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	duration := cfg.ScanTimeout
	switch {
	case cmd.Flags().Changed("duration"):
		duration = scanDuration
	case scanWatch:
		duration = 0 // watch runs until interrupted unless a duration is given
	}

	tr := newTransport(logger, cfg)
	defer func() {
		if err := tr.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close transport")
		}
	}()
	session := scanner.NewSession(tr, logger, scanner.WithConfig(cfg), scanner.WithClock(now))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	render := renderOptions{
		format: format,
		sort:   scanSort,
		color:  !scanNoColor && isTerminal(out),
	}

	if scanWatch {
		return runWatchMode(ctx, cmd, session, opts, duration, render)
	}
	return runSingleScan(ctx, cmd, session, opts, duration, render)
}

func buildScanOptions() (*scanner.ScanOptions, error) {
	opts := scanner.DefaultScanOptions()

	mode, err := scanner.ParseScanMode(scanMode)
	if err != nil {
		return nil, err
	}
	opts.Mode = mode
	opts.AllowDuplicates = !scanNoDuplicates

	if len(scanServices) > 0 {
		uuids, err := device.ValidateUUID(scanServices...)
		if err != nil {
			return nil, fmt.Errorf("invalid service UUID: %w", err)
		}
		opts.ServiceUUIDs = uuids
	}

	opts.DeviceIDs = scanAddresses

	for _, m := range scanManufacturer {
		id, err := strconv.ParseUint(m, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid manufacturer ID %q: must be a 16-bit number such as 0x004C", m)
		}
		opts.ManufacturerIDs = append(opts.ManufacturerIDs, uint16(id))
	}

	return opts, nil
}

func runSingleScan(ctx context.Context, cmd *cobra.Command, session *scanner.Session, opts *scanner.ScanOptions, duration time.Duration, render renderOptions) error {
	sc, err := session.StartScan(ctx, opts, duration)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	if isTerminal(errOut) {
		progress := NewProgressPrinter(errOut, "Scanning for BLE devices", duration, func() string {
			return fmt.Sprintf("%d found", len(session.Results()))
		})
		progress.Start()
		defer progress.Stop()
	}

	for _, err := range sc.All() {
		if err != nil {
			return err
		}
	}

	if errors.Is(sc.Cause(), context.Canceled) {
		fmt.Fprintln(errOut, "\nScan interrupted")
	}
	return renderResults(cmd.OutOrStdout(), session.Results(), render)
}

func runWatchMode(ctx context.Context, cmd *cobra.Command, session *scanner.Session, opts *scanner.ScanOptions, duration time.Duration, render renderOptions) error {
	out := cmd.OutOrStdout()

	if render.format == "json" {
		return streamResults(ctx, out, session, opts, duration)
	}

	updates := session.ResultsFeed().Subscribe()
	defer updates.Close()

	sc, err := session.StartScan(ctx, opts, duration)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(watchRefreshInterval)
	defer ticker.Stop()

	var latest []device.ScanResult
	dirty := true
	redraw := func() error {
		if render.color {
			clearScreen(out)
		}
		return renderResults(out, latest, render)
	}

	for {
		select {
		case results, ok := <-updates.C():
			if ok {
				latest = results
				dirty = true
			}
		case <-ticker.C:
			if dirty {
				dirty = false
				if err := redraw(); err != nil {
					return err
				}
			}
		case <-sc.Done():
			latest = session.Results()
			if err := redraw(); err != nil {
				return err
			}
			return sc.Err()
		}
	}
}

// streamResults writes every received advertisement as one JSON line.
func streamResults(ctx context.Context, out io.Writer, session *scanner.Session, opts *scanner.ScanOptions, duration time.Duration) error {
	sc, err := session.StartScan(ctx, opts, duration)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	for r, err := range sc.All() {
		if err != nil {
			return err
		}
		if err := encoder.Encode(newResultView(r)); err != nil {
			return err
		}
	}
	return nil
}
