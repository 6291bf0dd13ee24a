package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
)

// ScanOSM streams every object of an OSM file to fn. Files ending in .opl
// are read as OPL, everything else as OSM XML. Scanning stops at the first
// error returned by fn.
func ScanOSM(ctx context.Context, path string, fn func(osm.Object) error) error {
	if strings.EqualFold(filepath.Ext(path), ".opl") {
		return scanOPL(ctx, path, fn)
	}
	return scanXML(ctx, path, fn)
}

func scanXML(ctx context.Context, path string, fn func(osm.Object) error) error {
	f, err := openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := osmxml.New(ctx, f)
	defer scanner.Close()

	for scanner.Scan() {
		if err := fn(scanner.Object()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", path, err)
	}

	return nil
}
