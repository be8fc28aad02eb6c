package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/srg/blescan/internal/advdata"
	"github.com/srg/blescan/internal/bledb"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>...",
	Short: "Decode raw advertising data",
	Long: `Decode a raw BLE advertising payload into its AD structures and the
well-known fields they carry.

The payload is given as hex; spaces, colons, dashes and a 0x prefix are
accepted, and several arguments are concatenated.`,
	Example: `  blescan decode 020106 0303 0F18 07 09 5468 65726d6f
  blescan decode 0x02:01:06:00:03:FF:4C:00 --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

var decodeFormat string

func init() {
	decodeCmd.Flags().StringVarP(&decodeFormat, "format", "f", "table", "Output format (table, json)")
}

// parseHexPayload accepts hex with common separators and an optional 0x prefix.
func parseHexPayload(args []string) ([]byte, error) {
	s := strings.Join(args, "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.NewReplacer(" ", "", ":", "", "-", "", "\t", "").Replace(s)

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %w", err)
	}
	return raw, nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	if decodeFormat != "table" && decodeFormat != "json" {
		return fmt.Errorf("invalid format '%s': must be one of [table json]", decodeFormat)
	}

	raw, err := parseHexPayload(args)
	if err != nil {
		return err
	}

	cmd.SilenceUsage = true

	adv, err := advdata.Parse(raw)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if decodeFormat == "json" {
		return writeDecodedJSON(out, adv)
	}
	return writeDecodedTable(out, adv)
}

type elementView struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

func writeDecodedJSON(w io.Writer, adv *advdata.Advertisement) error {
	elements := make([]elementView, 0, len(adv.Elements))
	for _, e := range adv.Elements {
		elements = append(elements, elementView{
			Type:  fmt.Sprintf("0x%02X", e.Type),
			Name:  advdata.TypeName(e.Type),
			Value: hex.EncodeToString(e.Value),
		})
	}

	doc := struct {
		Elements []elementView         `json:"elements"`
		Fields   *advdata.Advertisement `json:"fields"`
		Vendor   []interface{}         `json:"vendor,omitempty"`
	}{
		Elements: elements,
		Fields:   adv,
	}
	for _, id := range sortedCompanyIDs(adv.ManufacturerData) {
		if parsed, err := advdata.ParseManufacturerData(id, adv.ManufacturerData[id]); err == nil && parsed != nil {
			doc.Vendor = append(doc.Vendor, parsed)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}

func writeDecodedTable(w io.Writer, adv *advdata.Advertisement) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTYPE\tNAME\tLEN\tVALUE")
	for i, e := range adv.Elements {
		fmt.Fprintf(tw, "%d\t0x%02X\t%s\t%d\t%s\n", i, e.Type, advdata.TypeName(e.Type), len(e.Value), hex.EncodeToString(e.Value))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	field := func(name, format string, args ...interface{}) {
		if name != "" {
			name += ":"
		}
		fmt.Fprintf(w, "%-14s "+format+"\n", append([]interface{}{name}, args...)...)
	}

	if adv.LocalName != "" {
		field("Local name", "%s", adv.LocalName)
	}
	if adv.Flags != nil {
		field("Flags", "0x%02X %s", *adv.Flags, strings.Join(flagNames(*adv.Flags), ", "))
	}
	if adv.TxPower != nil {
		field("TX power", "%d dBm", *adv.TxPower)
	}
	if adv.Appearance != nil {
		field("Appearance", "0x%04X", *adv.Appearance)
	}
	if len(adv.ServiceUUIDs) > 0 {
		field("Services", "%s", describeServices(adv.ServiceUUIDs))
	}
	if len(adv.SolicitedUUIDs) > 0 {
		field("Solicited", "%s", describeServices(adv.SolicitedUUIDs))
	}
	uuids := make([]string, 0, len(adv.ServiceData))
	for uuid := range adv.ServiceData {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)
	for _, uuid := range uuids {
		field("Service data", "%s = %s", bledb.DescribeService(uuid), hex.EncodeToString(adv.ServiceData[uuid]))
	}
	for _, id := range sortedCompanyIDs(adv.ManufacturerData) {
		data := adv.ManufacturerData[id]
		field("Manufacturer", "%s (0x%04X) = %s", advdata.CompanyName(id), id, hex.EncodeToString(data))
		parsed, err := advdata.ParseManufacturerData(id, data)
		switch {
		case err != nil:
			field("", "unparsable: %v", err)
		case parsed != nil:
			b, err := json.Marshal(parsed)
			if err != nil {
				return err
			}
			field("", "%s", b)
		}
	}
	return nil
}

func describeServices(uuids []string) string {
	described := make([]string, len(uuids))
	for i, u := range uuids {
		described[i] = bledb.DescribeService(u)
	}
	return strings.Join(described, ", ")
}

var flagBits = []struct {
	bit  byte
	name string
}{
	{0x01, "LE Limited Discoverable"},
	{0x02, "LE General Discoverable"},
	{0x04, "BR/EDR Not Supported"},
	{0x08, "LE and BR/EDR Controller"},
	{0x10, "LE and BR/EDR Host"},
}

func flagNames(flags byte) []string {
	var names []string
	for _, f := range flagBits {
		if flags&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return names
}
