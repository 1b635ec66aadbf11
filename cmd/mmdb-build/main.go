// Command mmdb-build is a thin driver over package mmdbwriter for manually
// smoke-testing the writer: it wires a handful of CIDR/value assignments
// from flags into a Database and writes the resulting .mmdb file. It does
// not ingest RIR allocation lists or any other external data source — that
// stays an external collaborator, same as the writer package itself.
package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chronohq/mmdbwriter"
)

var (
	databaseType string
	ipVersion    int
	recordSize   int
	outPath      string
	assignments  []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mmdb-build",
		Short: "Builds a .mmdb file from a handful of CIDR=value assignments.",
		Long: `mmdb-build wires command-line flags directly into an mmdbwriter.Database
and writes the result to disk. It is a manual testing aid, not an ingestion
pipeline: values are parsed as unsigned integers or, failing that, left as
strings, and there is no RIR/CSV/JSON data source wiring.`,
		Args: cobra.NoArgs,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&databaseType, "type", "mmdb-build-Test", "value of the database_type metadata field")
	rootCmd.Flags().IntVar(&ipVersion, "ip-version", 4, "metadata ip_version (4 or 6)")
	rootCmd.Flags().IntVar(&recordSize, "record-size", 0, "force a record size (24, 28, or 32); 0 selects automatically")
	rootCmd.Flags().StringVar(&outPath, "out", "out.mmdb", "output file path")
	rootCmd.Flags().StringArrayVar(&assignments, "assign", nil, "CIDR=value pair, repeatable (e.g. --assign 203.0.113.0/24=42)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if len(assignments) == 0 {
		return fmt.Errorf("mmdb-build: at least one --assign CIDR=value is required")
	}

	switch recordSize {
	case 0, 24, 28, 32:
	default:
		return fmt.Errorf("mmdb-build: --record-size must be 24, 28, 32, or 0, got %d", recordSize)
	}

	db := mmdbwriter.New(databaseType, ipVersion)

	for _, a := range assignments {
		if err := applyAssignment(db, a); err != nil {
			return err
		}
	}

	if recordSize != 0 {
		db.Metadata.RecordSize = uint16(recordSize)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("mmdb-build: creating %s: %w", outPath, err)
	}
	defer f.Close()

	n, err := db.WriteTo(f)
	if err != nil {
		return fmt.Errorf("mmdb-build: writing %s: %w", outPath, err)
	}

	fmt.Fprintf(os.Stderr, "wrote %d bytes to %s\n", n, outPath)

	return nil
}

// applyAssignment parses one "CIDR=value" flag and inserts it into db.
func applyAssignment(db *mmdbwriter.Database, raw string) error {
	cidr, rawValue, ok := strings.Cut(raw, "=")
	if !ok {
		return fmt.Errorf("mmdb-build: --assign %q is not in CIDR=value form", raw)
	}

	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("mmdb-build: --assign %q: %w", raw, err)
	}

	ones, _ := ipnet.Mask.Size()

	prefix, err := mmdbwriter.NewPrefix(ip, ones)
	if err != nil {
		return fmt.Errorf("mmdb-build: --assign %q: %w", raw, err)
	}

	ref, err := db.InsertValue(parseValue(rawValue))
	if err != nil {
		return fmt.Errorf("mmdb-build: --assign %q: %w", raw, err)
	}

	db.InsertNode(prefix, ref)

	return nil
}

// parseValue parses v as an unsigned 32-bit integer when possible, falling
// back to a string. This is the entire "ingestion" mmdb-build performs —
// anything richer (typed records, CSV columns) belongs to a real pipeline,
// not this smoke-testing driver.
func parseValue(v string) mmdbwriter.Encodable {
	if n, err := strconv.ParseUint(v, 10, 32); err == nil {
		return mmdbwriter.Uint32(uint32(n))
	}

	return mmdbwriter.String(v)
}
