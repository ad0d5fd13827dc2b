package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	rastertile "github.com/twpayne/go-rastertile"
)

func run(ctx context.Context) error {
	path := flag.String("path", os.Getenv("RASTERTILE_PATH"), "path to a (Big)TIFF file")
	serve := flag.Bool("serve", false, "serve the HTTP API instead of a one-shot lookup")
	describe := flag.Bool("describe", false, "print a summary of the file's IFDs and exit")
	sourceEPSG := flag.Int("epsg", 4326, "EPSG code the latitude/longitude arguments are given in")
	environment := flag.String("env", "production", "logger environment: production or development")
	flag.Parse()

	logger, err := rastertile.NewLogger(*environment)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if *serve {
		cfg, err := rastertile.LoadConfig()
		if err != nil {
			return err
		}
		registry, err := rastertile.NewRegistry(16,
			rastertile.WithMaximumTiles(cfg.MaximumTiles),
			rastertile.WithPrefetchWorkers(cfg.PrefetchWorkers),
			rastertile.WithLogger(logger))
		if err != nil {
			return err
		}
		defer registry.Close()

		server := rastertile.NewServer(registry)
		fmt.Printf("listening on %s\n", cfg.ListenAddress)
		return server.Start(cfg.ListenAddress)
	}

	if *path == "" {
		return errors.New("syntax: rastertile -path <file.tif> latitude longitude")
	}

	if *describe {
		reader, err := rastertile.OpenReader(*path)
		if err != nil {
			return err
		}
		defer reader.Close()
		tiff, err := reader.Read()
		if err != nil {
			return err
		}
		fmt.Println(tiff.Describe())
		return nil
	}

	if flag.NArg() != 2 {
		return errors.New("syntax: rastertile -path <file.tif> latitude longitude")
	}
	lat, err := strconv.ParseFloat(flag.Arg(0), 64)
	if err != nil {
		return err
	}
	lon, err := strconv.ParseFloat(flag.Arg(1), 64)
	if err != nil {
		return err
	}

	svc, err := rastertile.Open(*path, rastertile.WithLogger(logger))
	if err != nil {
		return err
	}
	defer svc.Close()

	info, err := svc.GeoInfo(0)
	if err != nil {
		return err
	}

	geoX, geoY := lon, lat
	if info.HasEPSG && info.EPSG != *sourceEPSG {
		transform, err := rastertile.NewTransformer(*sourceEPSG, info.EPSG)
		if err != nil {
			return err
		}
		geoX, geoY, err = transform.Forward(lon, lat)
		if err != nil {
			return err
		}
	}

	px, py, err := info.Affine.GeoToPixel(geoX, geoY)
	if err != nil {
		return err
	}
	if px < 0 || py < 0 {
		return errors.New("coordinate outside raster")
	}

	value, err := svc.Sample(ctx, 0, rastertile.PixelCoord{X: uint64(px), Y: uint64(py)}, rastertile.DataTypeU8)
	if err != nil {
		return err
	}
	fmt.Println(value)

	return nil
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
