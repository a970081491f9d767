package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	"x86disasm/disasm"
	"x86disasm/loader"
	"x86disasm/strategy"
)

func disasmCmd(c *cli.Context) error {
	args := c.Args()
	if args.Len() < 1 {
		return cli.Exit("Insufficient arguments", 1)
	}
	file := args.First()

	opts, err := loadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	if c.IsSet("only-code-sections") {
		opts.OnlyCodeSections = c.Bool("only-code-sections")
	}
	if c.Bool("verbose") {
		opts.Verbosity = 1
		log.SetLevel(log.DebugLevel)
	}

	bin, err := loader.Load(file)
	if err != nil {
		return cli.Exit(fmt.Sprintf("could not load %s: %v", file, err), 1)
	}
	log.Debugf("loaded %s: %s %s %d-bit, %d section(s)", file, bin.Type, bin.Arch, bin.Bits, len(bin.Sections))

	sections, err := disasm.Disasm(bin, &strategy.LinearSweep{}, opts)
	if err != nil {
		return cli.Exit(fmt.Sprintf("disassembly failed: %v", err), 1)
	}

	for _, ds := range sections {
		if err := ds.Print(os.Stdout); err != nil {
			return cli.Exit(err, 1)
		}
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "x86disasm"
	app.Usage = "Static disassembler for stripped x86 ELF and PE binaries"
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}
	app.Commands = []*cli.Command{
		{
			Name:      "disasm",
			Aliases:   []string{"d"},
			Usage:     "Disassemble a binary's code sections",
			ArgsUsage: "file",
			Action:    disasmCmd,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "only-code-sections",
					Usage: "skip DATA sections entirely",
				},
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "enable progress notices and debug logging",
				},
				&cli.StringFlag{
					Name:  "config",
					Usage: "path to a TOML options file",
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Error("exiting")
		os.Exit(1)
	}
}
