package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/nxtcoder17/devflake/pkg/devflake"
	"github.com/nxtcoder17/devflake/pkg/inputs"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var Version string

func main() {
	if Version == "" {
		Version = fmt.Sprintf("nightly | %s", time.Now().Format(time.RFC3339))
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "err", err)
	}

	var fctx *devflake.Context

	systemFlag := &cli.StringFlag{
		Name:  "system",
		Usage: "nix system, defaults to $DEVFLAKE_SYSTEM or the host",
	}

	cmd := cli.Command{
		Name:        "devflake",
		Version:     Version,
		Description: "Declarative, reproducible build and development environments for GTK rust applications",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "descriptor file, skips searching parent directories",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logs",
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "resolve inputs from pinned revisions and devflake.lock only",
			},
		},

		EnableShellCompletion: true,

		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			fctx, err = devflake.NewContext(ctx, "")
			if err != nil {
				return ctx, err
			}

			if c.IsSet("file") {
				fctx.DescriptorFile = c.String("file")
			}
			if c.IsSet("debug") {
				fctx.Debug = c.Bool("debug")
			}
			if c.IsSet("offline") {
				fctx.Offline = c.Bool("offline")
			}

			setupLogger(fctx.Debug)
			return ctx, nil
		},

		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "writes the default descriptor into the current directory",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "toml", Usage: "write devflake.toml instead of devflake.yml"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					dest := fctx.DescriptorFile
					if dest == "" {
						name := devflake.DescriptorFileNames[0]
						if c.Bool("toml") {
							name = "devflake.toml"
						}
						dest = filepath.Join(fctx.PWD, name)
					}

					if err := devflake.Init(dest); err != nil {
						return err
					}

					slog.Info("created descriptor", "file", dest)
					return nil
				},
			},
			{
				Name:  "lock",
				Usage: "pins every input and writes devflake.lock",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "update", Usage: "refetch every input not pinned in its locator"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					_, f, err := open(fctx, c.Bool("update"))
					if err != nil {
						return err
					}
					return printInputs(os.Stdout, f.Inputs)
				},
			},
			{
				Name:  "show",
				Usage: "prints the outputs of every supported system",
				Flags: []cli.Flag{
					systemFlag,
					&cli.BoolFlag{Name: "json", Usage: "print json instead of yaml"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					w, f, err := open(fctx, false)
					if err != nil {
						return err
					}

					if c.IsSet("system") {
						p, err := w.Platform(c.String("system"))
						if err != nil {
							return err
						}

						out, err := f.Outputs(p)
						if err != nil {
							return err
						}
						return printValue(os.Stdout, out, c.Bool("json"))
					}

					all, err := f.Evaluate(ctx)
					if err != nil {
						return err
					}
					return printValue(os.Stdout, all, c.Bool("json"))
				},
			},
			{
				Name:  "package",
				Usage: "prints the default package of a system",
				Flags: []cli.Flag{
					systemFlag,
					&cli.BoolFlag{Name: "hash", Usage: "include the NAR hash of the source tree"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					w, f, err := open(fctx, false)
					if err != nil {
						return err
					}

					p, err := w.Platform(c.String("system"))
					if err != nil {
						return err
					}

					out, err := f.BuildPackage(p)
					if err != nil {
						return err
					}

					if c.Bool("hash") {
						if out, err = devflake.WithSourceHash(out); err != nil {
							return err
						}
					}

					return printValue(os.Stdout, out, false)
				},
			},
			{
				Name:  "shell",
				Usage: "prints the development shell of a system",
				Flags: []cli.Flag{
					systemFlag,
					&cli.BoolFlag{Name: "env", Usage: "print a sourceable script exporting the shell environment"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					w, f, err := open(fctx, false)
					if err != nil {
						return err
					}

					p, err := w.Platform(c.String("system"))
					if err != nil {
						return err
					}

					shell, err := f.DevShell(p)
					if err != nil {
						return err
					}

					if !c.Bool("env") {
						return printValue(os.Stdout, shell, false)
					}

					b, err := shell.ShellEnv()
					if err != nil {
						return err
					}
					_, err = os.Stdout.Write(b)
					return err
				},
			},
			{
				Name:  "render",
				Usage: "writes flake.nix next to the descriptor",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "destination file"},
					&cli.BoolFlag{Name: "force", Usage: "write even when unchanged"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					_, f, err := open(fctx, false)
					if err != nil {
						return err
					}

					written, err := f.WriteFlake(c.String("output"), c.Bool("force"))
					if err != nil {
						return err
					}

					if !written {
						slog.Info("flake.nix is up to date")
						return nil
					}
					slog.Info("rendered flake.nix")
					return nil
				},
			},
			{
				Name:  "pack",
				Usage: "writes the source tree as an xz compressed NAR",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "destination file, defaults to stdout"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					w, err := devflake.LoadWorkspace(fctx)
					if err != nil {
						return err
					}

					dest := c.String("output")
					if dest == "" {
						if isTerminal(os.Stdout) {
							return fmt.Errorf("refusing to write an archive to a terminal, use --output")
						}
						return devflake.PackSource(w.Descriptor.SourceDir(), os.Stdout)
					}

					out, err := os.Create(dest)
					if err != nil {
						return err
					}
					defer out.Close()

					if err := devflake.PackSource(w.Descriptor.SourceDir(), out); err != nil {
						return err
					}

					slog.Info("packed source", "source", w.Descriptor.SourceDir(), "archive", dest)
					return out.Close()
				},
			},
			{
				Name:  "systems",
				Usage: "lists the supported systems, the current one marked with *",
				Action: func(ctx context.Context, c *cli.Command) error {
					w, err := devflake.LoadWorkspace(fctx)
					if err != nil {
						return err
					}

					systems, err := w.Descriptor.Platforms()
					if err != nil {
						return err
					}

					current, _ := w.Platform("")
					for _, p := range systems {
						marker := " "
						if p == current {
							marker = "*"
						}
						fmt.Printf("%s %s\n", marker, p)
					}
					return nil
				},
			},
		},

		Suggest: true,
	}

	ctx, cf := signal.NotifyContext(context.TODO(), syscall.SIGINT, syscall.SIGTERM)
	defer cf()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("while running cmd, got", "err", err)
		cf()
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// open loads the workspace and pins its inputs
func open(ctx *devflake.Context, update bool) (*devflake.Workspace, *devflake.Flake, error) {
	w, err := devflake.LoadWorkspace(ctx)
	if err != nil {
		return nil, nil, err
	}

	f, err := w.Resolve(update)
	if err != nil {
		return nil, nil, err
	}

	return w, f, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func printValue(w io.Writer, v any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}

// printInputs aligns columns for a terminal, and prints full revisions tab separated otherwise
func printInputs(w io.Writer, resolved []inputs.Resolved) error {
	if !isTerminal(os.Stdout) {
		for _, r := range resolved {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Rev, r.Locator); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tREV\tLOCATOR\tLAST MODIFIED")
	for _, r := range resolved {
		modified := "-"
		if !r.LastModified.IsZero() {
			modified = r.LastModified.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.ShortRev(), r.Locator, modified)
	}
	return tw.Flush()
}
