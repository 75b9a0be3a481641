package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bodgit/bmp565"
	"github.com/bodgit/bmp565/bmp"
	"github.com/urfave/cli/v2"
)

const defaultDB = "bmp565.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func background(c *cli.Context) (uint16, error) {
	v, err := strconv.ParseUint(c.String("background"), 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid background color %q", c.String("background"))
	}
	return uint16(v), nil
}

var backgroundFlag = &cli.StringFlag{
	Name:    "background",
	Aliases: []string{"b"},
	EnvVars: []string{"BMP565_BACKGROUND"},
	Value:   "0x0000",
	Usage:   "RGB565 color translucent pixels are blended against",
}

func openLibrary(c *cli.Context) (*bmp565.Library, error) {
	bg, err := background(c)
	if err != nil {
		return nil, err
	}
	return bmp565.New(c.String("db"), bg, newLogger(c))
}

func info(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer f.Close()

	var d bmp.Decoder
	if err := d.Open(f); err != nil {
		return cli.NewExitError(err, 1)
	}

	fh, ih := d.FileHeader(), d.InfoHeader()
	fmt.Printf("File size:      %d\n", fh.Size)
	fmt.Printf("Pixel offset:   %d\n", fh.Offset)
	fmt.Printf("Header size:    %d\n", ih.Size)
	fmt.Printf("Dimensions:     %dx%d\n", d.Width(), d.Height())
	fmt.Printf("Bits per pixel: %d\n", ih.BitCount)
	fmt.Printf("Compression:    %d\n", ih.Compression)
	fmt.Printf("Row stride:     %d\n", d.Stride())
	if ih.BitCount < 16 {
		fmt.Printf("Palette size:   %d\n", len(d.Palette()))
	}
	if ih.Compression == 3 {
		fmt.Printf("Channel masks:  R=%#010x G=%#010x B=%#010x A=%#010x\n", ih.RedMask, ih.GreenMask, ih.BlueMask, ih.AlphaMask)
	}

	return nil
}

func render(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	bg, err := background(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	f, err := os.Open(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer f.Close()

	d := bmp.NewDecoder(bg)
	if err := d.Open(f); err != nil {
		return cli.NewExitError(err, 1)
	}

	m, err := d.Image()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	output := c.Args().Get(1)
	w, err := os.Create(output)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer w.Close()

	if err := bmp565.Encode(w, m, bmp565.FormatFromFilename(output)); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "bmp565"
	app.Usage = "BMP to RGB565 display asset utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"BMP565_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Show the headers of a bitmap",
			ArgsUsage: "FILE",
			Action:    info,
		},
		{
			Name:        "render",
			Usage:       "Decode a bitmap to a file",
			Description: "The output format is chosen by extension: .png, .gif or raw RGB565 for anything else",
			ArgsUsage:   "FILE OUTPUT",
			Flags:       []cli.Flag{backgroundFlag},
			Action:      render,
		},
		{
			Name:        "import",
			Usage:       "Decode bitmaps into the database",
			Description: "Directories are scanned recursively for .bmp files",
			ArgsUsage:   "FILE|DIRECTORY",
			Flags:       []cli.Flag{backgroundFlag},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				l, err := openLibrary(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				if err := l.Import(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "export",
			Usage:     "Write a stored asset to a file",
			ArgsUsage: "NAME OUTPUT",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				l, err := bmp565.New(c.String("db"), 0, newLogger(c))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				output := c.Args().Get(1)
				w, err := os.Create(output)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer w.Close()

				if err := l.Export(c.Args().Get(0), w, bmp565.FormatFromFilename(output)); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "list",
			Usage: "List stored assets",
			Action: func(c *cli.Context) error {
				l, err := bmp565.New(c.String("db"), 0, newLogger(c))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				assets, err := l.Assets()
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				for _, a := range assets {
					fmt.Printf("%s\t%dx%d\t%#06x\t%s\n", a.Name, a.Width, a.Height, a.Background, a.SHA1)
				}

				return nil
			},
		},
		{
			Name:      "remove",
			Usage:     "Remove a stored asset",
			ArgsUsage: "NAME",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				l, err := bmp565.New(c.String("db"), 0, newLogger(c))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				if err := l.Remove(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
