// Command geohash-relay decodes a geohash to a latitude/longitude pair and
// prints the 5 nearest relays from a CSV list.
package main

import (
	"fmt"
	"log"

	"github.com/alexflint/go-arg"

	"github.com/ynniv/nip13-miner/internal/relay"
)

var args struct {
	Geohash  string `arg:"positional,required" help:"geohash string, e.g. 9q8yy"`
	RelayCSV string `arg:"positional,required" help:"CSV file of url,latitude,longitude[,npub_hex]"`
	Quiet    bool   `arg:"--quiet" help:"print only space-delimited relay URLs"`
}

const nearestCount = 5

func main() {
	arg.MustParse(&args)

	nearest, err := run(args.Geohash, args.RelayCSV, args.Quiet)
	if err != nil {
		log.Fatalf("geohash-relay: %v", err)
	}
	printNearest(nearest, args.Quiet)
}

// run decodes geohash, loads the relay CSV at csvPath, and returns the
// nearestCount closest relays. It's the testable core of main — factored
// out so the decode/load/rank wiring can be exercised directly, including
// its two error paths, without going through log.Fatalf.
func run(geohash, csvPath string, quiet bool) ([]relay.Relay, error) {
	coord, err := relay.DecodeGeohash(geohash)
	if err != nil {
		return nil, err
	}
	if !quiet {
		fmt.Printf("Decoding geohash: %s\n", geohash)
		fmt.Printf("Latitude: %.6f, Longitude: %.6f\n\n", coord.Latitude, coord.Longitude)
		fmt.Printf("Loading relays from: %s\n", csvPath)
	}

	relays, err := relay.LoadRelays(csvPath)
	if err != nil {
		return nil, err
	}
	if !quiet {
		fmt.Printf("Loaded %d relays\n\n", len(relays))
	}

	return relay.Nearest(relays, coord, nearestCount), nil
}

func printNearest(nearest []relay.Relay, quiet bool) {
	if quiet {
		for i, r := range nearest {
			if i > 0 {
				fmt.Print(" ")
			}
			fmt.Print(r.URL)
		}
		fmt.Println()
		return
	}

	fmt.Printf("Nearest %d relays:\n", len(nearest))
	fmt.Printf("%-50s %12s %12s %10s\n", "Relay URL", "Latitude", "Longitude", "Distance (km)")
	fmt.Printf("%-50s %12s %12s %10s\n", "---------", "--------", "---------", "------------")
	for _, r := range nearest {
		fmt.Printf("%-50s %12.6f %12.6f %10.2f\n", r.URL, r.Latitude, r.Longitude, r.Distance)
	}
}
