package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/repr"
	"github.com/urfave/cli/v2"

	"github.com/kartiknair/math/pkg/math"
	"github.com/kartiknair/math/pkg/parser"
)

const debugTimings = false

func readSource(c *cli.Context) ([]byte, error) {
	if c.Args().Len() < 1 {
		return nil, cli.Exit("Expect a source file.", 1)
	}

	source, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}

	return source, nil
}

func main() {
	app := &cli.App{
		Name:  "mathc",
		Usage: "Compile or interpret math programs.",
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Compile a program to a native executable.",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path for the built executable.",
					},
				},
				Action: func(c *cli.Context) error {
					source, err := readSource(c)
					if err != nil {
						return err
					}

					out := c.String("output")
					if out == "" {
						file := filepath.Base(c.Args().Get(0))
						out = strings.TrimSuffix(file, filepath.Ext(file))
					}

					start := time.Now()
					if _, err := math.Compile(source, out); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					if debugTimings {
						fmt.Printf("compiled in %s\n", time.Since(start))
					}

					return nil
				},
			},
			{
				Name:      "run",
				Usage:     "Compile a program and run it, passing the remaining arguments as inputs.",
				ArgsUsage: "<file> [inputs...]",
				Action: func(c *cli.Context) error {
					source, err := readSource(c)
					if err != nil {
						return err
					}

					tmp, err := os.MkdirTemp("", "mathc")
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					defer os.RemoveAll(tmp)

					bin := filepath.Join(tmp, "program")
					if _, err := math.Compile(source, bin); err != nil {
						return cli.Exit(err.Error(), 1)
					}

					cmd := exec.Command(bin, c.Args().Slice()[1:]...)
					cmd.Stdin = os.Stdin
					cmd.Stdout = os.Stdout
					cmd.Stderr = os.Stderr
					if err := cmd.Run(); err != nil {
						if exit, ok := err.(*exec.ExitError); ok {
							os.Exit(exit.ExitCode())
						}
						return cli.Exit(err.Error(), 1)
					}

					return nil
				},
			},
			{
				Name:      "interpret",
				Usage:     "Evaluate a program directly, passing the remaining arguments as inputs.",
				ArgsUsage: "<file> [inputs...]",
				Action: func(c *cli.Context) error {
					source, err := readSource(c)
					if err != nil {
						return err
					}

					var inputs []int64
					for _, raw := range c.Args().Slice()[1:] {
						value, err := strconv.ParseInt(raw, 10, 64)
						if err != nil {
							return cli.Exit(fmt.Sprintf("Invalid input `%s`.", raw), 1)
						}
						inputs = append(inputs, value)
					}

					outputs, err := math.Interpret(source, inputs)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					for _, value := range outputs {
						fmt.Printf("%d\n", value)
					}

					return nil
				},
			},
			{
				Name:      "ir",
				Usage:     "Print the generated LLVM IR for a program.",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					source, err := readSource(c)
					if err != nil {
						return err
					}

					ir, err := math.Compile(source, "")
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					fmt.Print(ir)

					return nil
				},
			},
			{
				Name:      "ast",
				Usage:     "Print the parsed tree for a program.",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					source, err := readSource(c)
					if err != nil {
						return err
					}

					program, err := parser.Parse(source)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					repr.Println(program)

					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
