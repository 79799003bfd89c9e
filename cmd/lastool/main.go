// Command lastool is a thin demonstration CLI over laslib: it parses
// LAStools-style reader/filter/transform flags, streams points through
// the resulting pipeline, and writes them back out as LAS.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/go-laslib/laslib/pkg/las"

	// Registers the standard item codecs (POINT10/14, RGB, GPS time,
	// extra bytes, wavepacket) into pkg/las's codec registry. pkg/las
	// itself cannot import internal/codec (internal/codec imports
	// pkg/las for the Point type), so the blank import has to live
	// here, at the first point in the dependency graph where both
	// packages meet.
	_ "github.com/go-laslib/laslib/internal/codec"
)

func runTool(inputs []string, output string, extra []string) error {
	var argv []string
	for _, in := range inputs {
		argv = append(argv, "-i", in)
	}
	argv = append(argv, extra...)
	cmd, err := las.ParseArgs(argv)
	if err != nil {
		return err
	}
	if len(cmd.InputPaths) == 0 {
		return errors.New("lastool: no input files given (use -i)")
	}

	ctx := context.Background()
	var writer *las.Writer
	for _, path := range cmd.InputPaths {
		reader, err := las.OpenReaderPipeline(path, cmd.Options)
		if err != nil {
			return err
		}

		if writer == nil {
			stream, err := las.CreateFileStream(output)
			if err != nil {
				reader.Close()
				return err
			}
			opts := las.DefaultWriterOptions()
			opts.Header = reader.Header()
			writer, err = las.NewWriter(stream, opts)
			if err != nil {
				reader.Close()
				return err
			}
		}

		var p las.Point
		for {
			ok, err := reader.ReadPoint(ctx, &p)
			if err != nil {
				reader.Close()
				return err
			}
			if !ok {
				break
			}
			if err := writer.WritePoint(ctx, &p); err != nil {
				reader.Close()
				return err
			}
		}
		if err := reader.Close(); err != nil {
			return err
		}
	}
	if writer != nil {
		return writer.Close()
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "lastool",
		Usage: "read, filter, transform, and rewrite LAS/LAZ point clouds",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "i", Usage: "input file path (repeatable)"},
			&cli.StringFlag{Name: "o", Usage: "output LAS file path", Required: true},
		},
		Action: func(c *cli.Context) error {
			inputs := c.StringSlice("i")
			rest := c.Args().Slice()
			return runTool(inputs, c.String("o"), rest)
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
