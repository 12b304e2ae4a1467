// Command smip is the speckle-masking image reconstruction CLI: a
// thin flag-to-Config shell around the smip package's pipeline.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hzaunick/smip"
	"github.com/hzaunick/smip/internal/logging"
	"github.com/hzaunick/smip/internal/smerr"
	"github.com/hzaunick/smip/internal/videoio"
)

const version = "1.0"

func main() {
	app := &cli.App{
		Name:      "smip",
		Usage:     "Speckle Masking Image Processing",
		Version:   version,
		ArgsUsage: "<source video>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "nrframes", Aliases: []string{"n"}, Value: 400, Usage: "process at most this many frames"},
			&cli.IntFlag{Name: "refframe", Aliases: []string{"r"}, Value: 0, Usage: "index of reference frame"},
			&cli.Float64Flag{Name: "recoradius", Aliases: []string{"p"}, Value: 0, Usage: "radius of phase reconstruction (default: 2x bispectrum depth)"},
			&cli.IntFlag{Name: "bdepth", Aliases: []string{"b"}, Value: 15, Usage: "bispectrum extent (3rd and 4th dimension)"},
			&cli.StringFlag{Name: "channel", Aliases: []string{"c"}, Value: "i", Usage: "color channel: r, g, b or i (intensity/white)"},
			&cli.StringFlag{Name: "croppos", Aliases: []string{"k"}, Usage: "fixed crop box position, l:t"},
			&cli.StringFlag{Name: "cropsize", Aliases: []string{"s"}, Usage: "crop box size, w:h"},
			&cli.BoolFlag{Name: "follow", Aliases: []string{"f"}, Usage: "track the object defined by the reference frame across the crop box"},
			&cli.BoolFlag{Name: "calcsum", Value: true, Usage: "calculate picture sum and shifted sum"},
			&cli.BoolFlag{Name: "specklemasking", Value: true, Usage: "perform speckle masking"},
			&cli.StringFlag{Name: "outdir", Value: ".", Usage: "directory to write output images and the bispectrum dump to"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "increase verbosity (repeatable)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "smip:", err)
		os.Exit(exitCode(err))
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return cli.Exit("exactly one source video argument is required", 2)
	}
	filename := c.Args().First()

	cfg := smip.DefaultConfig()
	cfg.MaxFrames = c.Int("nrframes")
	cfg.RefFrame = c.Int("refframe")
	cfg.BispectrumDepth = c.Int("bdepth")
	if c.IsSet("recoradius") {
		cfg.RecoRadius = c.Float64("recoradius")
	} else {
		cfg.RecoRadius = float64(2 * cfg.BispectrumDepth)
	}
	cfg.ColorChannel = parseChannel(c.String("channel"))
	cfg.CalcSum = c.Bool("calcsum")
	cfg.SpeckleMasking = c.Bool("specklemasking")
	cfg.Follow = c.Bool("follow")
	cfg.OutputDir = c.String("outdir")
	cfg.Verbosity = c.Count("verbose")

	pos := parsePair(c.String("croppos"))
	size := parsePair(c.String("cropsize"))
	cfg.Crop = smip.CropRect{Left: pos.a, Top: pos.b, Width: size.a, Height: size.b}

	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	logger, err := logging.New(verbosityLevel(cfg.Verbosity), cfg.Verbosity > 0)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Infow("Speckle Masking Image Processing", "version", version)

	source, err := videoio.Open(filename)
	if err != nil {
		return err
	}

	result, err := smip.Run(cfg, source, logger)
	if err != nil {
		return err
	}
	logger.Infow("done", "frames", result.FramesProcessed)
	return nil
}

func verbosityLevel(v int) logging.Level {
	switch {
	case v >= 3:
		return logging.LevelDebug
	case v == 2:
		return logging.LevelInfo
	case v == 1:
		return logging.LevelNotice
	default:
		return logging.LevelWarning
	}
}

// parseChannel maps the -c flag's letters onto a videoio.Channel,
// matching the original's per-character accumulation: every
// recognized letter in the argument ORs its bit in, so "rg" yields the
// mask red|green. Frame extraction reads such a combined mask, like
// white, from channel 0.
func parseChannel(s string) videoio.Channel {
	var ch videoio.Channel
	found := false
	for _, r := range s {
		switch r {
		case 'r':
			ch |= videoio.ChannelRed
			found = true
		case 'g':
			ch |= videoio.ChannelGreen
			found = true
		case 'b':
			ch |= videoio.ChannelBlue
			found = true
		case 'i':
			ch = videoio.ChannelWhite
			found = true
		}
	}
	if !found {
		return videoio.ChannelWhite
	}
	return ch
}

type intPair struct{ a, b int }

// parsePair parses a "a:b" flag value the way the original's croppos
// and cropsize options do: a missing or non-positive first component
// means "not specified" (zero pair); a missing or non-positive second
// component repeats the first.
func parsePair(s string) intPair {
	if s == "" {
		return intPair{}
	}
	parts := strings.SplitN(s, ":", 2)
	a, err := strconv.Atoi(parts[0])
	if err != nil || a <= 0 {
		return intPair{}
	}
	b := a
	if len(parts) == 2 {
		if v, err := strconv.Atoi(parts[1]); err == nil && v > 0 {
			b = v
		}
	}
	return intPair{a: a, b: b}
}

func exitCode(err error) int {
	var ioErr *smerr.IoError
	if errors.As(err, &ioErr) {
		return 1
	}
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}
