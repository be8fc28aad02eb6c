package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/srg/blescan/internal/advdata"
	"github.com/srg/blescan/internal/device"
	"golang.org/x/term"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// now is the clock used for result timestamps and "seen" ages.
var now = time.Now

// resultView is the JSON form of a scan result.
type resultView struct {
	ID               string            `json:"id"`
	Name             string            `json:"name,omitempty"`
	RSSI             int32             `json:"rssi"`
	TxPower          *int8             `json:"txPower,omitempty"`
	Connectable      bool              `json:"connectable"`
	Services         []string          `json:"services,omitempty"`
	ServiceData      map[string]string `json:"serviceData,omitempty"`
	ManufacturerData map[string]string `json:"manufacturerData,omitempty"`
	Vendor           []interface{}     `json:"vendor,omitempty"`
	Raw              string            `json:"raw"`
	ObservedAt       time.Time         `json:"observedAt"`
}

func newResultView(r device.ScanResult) resultView {
	v := resultView{
		ID:         r.Device.String(),
		Name:       r.Name(),
		RSSI:       r.RSSI,
		ObservedAt: r.ObservedAt,
	}

	adv := r.Advertisement
	if adv == nil {
		return v
	}
	v.TxPower = adv.TxPower
	v.Connectable = adv.Connectable
	v.Services = adv.ServiceUUIDs
	v.Raw = hex.EncodeToString(adv.Raw)

	if len(adv.ServiceData) > 0 {
		v.ServiceData = make(map[string]string, len(adv.ServiceData))
		for uuid, data := range adv.ServiceData {
			v.ServiceData[uuid] = hex.EncodeToString(data)
		}
	}
	if len(adv.ManufacturerData) > 0 {
		v.ManufacturerData = make(map[string]string, len(adv.ManufacturerData))
		for _, id := range sortedCompanyIDs(adv.ManufacturerData) {
			data := adv.ManufacturerData[id]
			v.ManufacturerData[fmt.Sprintf("0x%04X", id)] = hex.EncodeToString(data)
			if parsed, err := advdata.ParseManufacturerData(id, data); err == nil && parsed != nil {
				v.Vendor = append(v.Vendor, parsed)
			}
		}
	}
	return v
}

func sortedCompanyIDs(m map[uint16][]byte) []uint16 {
	ids := make([]uint16, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// sortResults orders a copy of results by key: order (discovery), rssi or name.
func sortResults(results []device.ScanResult, key string) []device.ScanResult {
	sorted := append([]device.ScanResult(nil), results...)
	switch key {
	case "rssi":
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RSSI > sorted[j].RSSI })
	case "name":
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i].Name(), sorted[j].Name()
			if (a == "") != (b == "") {
				return b == ""
			}
			return strings.ToLower(a) < strings.ToLower(b)
		})
	}
	return sorted
}

// renderOptions controls how results are printed.
type renderOptions struct {
	format string
	sort   string
	color  bool
}

func renderResults(w io.Writer, results []device.ScanResult, opts renderOptions) error {
	results = sortResults(results, opts.sort)

	if opts.format == "json" {
		views := make([]resultView, 0, len(results))
		for _, r := range results {
			views = append(views, newResultView(r))
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(views)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No devices discovered")
		return nil
	}
	return renderTable(w, results, opts.color)
}

func renderTable(w io.Writer, results []device.ScanResult, useColor bool) error {
	good, fair, weak := color.New(color.FgGreen), color.New(color.FgYellow), color.New(color.FgRed)
	for _, c := range []*color.Color{good, fair, weak} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tRSSI\tTX\tCONN\tMANUFACTURER\tSERVICES\tSEEN")

	for _, r := range results {
		name := truncate(r.Name(), 20)
		if name == "" {
			name = "-"
		}

		rssi := fmt.Sprintf("%d dBm", r.RSSI)
		switch {
		case r.RSSI >= -60:
			rssi = good.Sprint(rssi)
		case r.RSSI >= -80:
			rssi = fair.Sprint(rssi)
		default:
			rssi = weak.Sprint(rssi)
		}

		tx, conn, manufacturer := "-", "no", "-"
		var services []string
		if adv := r.Advertisement; adv != nil {
			if adv.TxPower != nil {
				tx = fmt.Sprintf("%d", *adv.TxPower)
			}
			if adv.Connectable {
				conn = "yes"
			}
			var names []string
			for _, id := range sortedCompanyIDs(adv.ManufacturerData) {
				names = append(names, advdata.CompanyName(id))
			}
			if len(names) > 0 {
				manufacturer = strings.Join(names, ",")
			}
			for _, s := range adv.ServiceUUIDs {
				services = append(services, device.ShortenUUID(s))
			}
		}
		svc := truncate(strings.Join(services, ","), 30)
		if svc == "" {
			svc = "-"
		}

		seen := now().Sub(r.ObservedAt).Truncate(time.Second)
		if seen < 0 {
			seen = 0
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s ago\n",
			name, r.Device, rssi, tx, conn, manufacturer, svc, seen)
	}

	return tw.Flush()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[2J\033[H")
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
