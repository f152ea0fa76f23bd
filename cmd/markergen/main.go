// Command markergen writes printable corner-marker stickers for framing a
// display.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/asada-m/read-digits/internal/marker"
	"github.com/asada-m/read-digits/internal/version"
)

func main() {
	out := flag.String("out", ".", "Output directory for sticker images")
	idSpec := flag.String("ids", "0-1-2-3", "Four marker ids as TL-TR-BR-BL")
	base := flag.Int("base", 20, "Marker cell size in pixels")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	ids, err := parseIDs(*idSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad -ids: %v\n", err)
		os.Exit(1)
	}

	paths, err := marker.WriteStickers(*out, ids, *base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write stickers: %v\n", err)
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Printf("Wrote %s\n", p)
	}
}

func parseIDs(spec string) (marker.IDs, error) {
	var ids marker.IDs
	parts := strings.Split(spec, "-")
	if len(parts) != 4 {
		return ids, fmt.Errorf("want four ids separated by -, got %q", spec)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return ids, err
		}
		ids[i] = n
	}
	if !ids.Valid() {
		return ids, fmt.Errorf("ids must be distinct and within the dictionary")
	}
	return ids, nil
}
