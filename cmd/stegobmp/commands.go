package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/provide-io/stegobmp/internal/config"
	"github.com/provide-io/stegobmp/internal/outfile"
	"github.com/provide-io/stegobmp/pkg"
	"github.com/provide-io/stegobmp/pkg/stego/codec"
	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
	"github.com/provide-io/stegobmp/pkg/stego/operations"
)

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", stegoerrors.ErrConfiguration, fmt.Sprintf(format, args...))
}

func (o *options) runRoot(cmd *cobra.Command, args []string) error {
	if o.version {
		printVersion(o.stdout)
		return nil
	}

	switch {
	case o.embed && o.extract:
		return usageError("cannot specify both embed and extract options")
	case !o.embed && !o.extract:
		return usageError("missing required option: embed or extract")
	case o.cover == "":
		return usageError("missing required option: p")
	case o.out == "":
		return usageError("missing required option: out")
	case o.embed && o.in == "":
		return usageError("missing required option: in")
	case o.embed && o.verify != "":
		return usageError("--verify only applies to extract")
	}

	mode, err := outfile.ParseMode(o.outMode)
	if err != nil {
		return err
	}
	fileOpts := pkg.FileOptions{Mode: mode, Verify: o.verify}

	p, logger, err := o.buildPipeline(cmd, o.embed)
	if err != nil {
		return err
	}

	success := color.New(color.FgGreen)

	if o.embed {
		res, err := pkg.EmbedFile(o.in, o.cover, o.out, p, fileOpts)
		if err != nil {
			var tooLarge *stegoerrors.SecretTooLargeError
			if errors.As(err, &tooLarge) {
				logger.Error("The secret message is too large",
					"max", humanize.Bytes(uint64(tooLarge.MaxBytes)),
					"actual", humanize.Bytes(uint64(tooLarge.ActualBytes)))
			}
			return err
		}
		success.Fprintf(o.stdout, "✅ Secret message encoded successfully as %s\n", res.Path)
		fmt.Fprintf(o.stdout, "   %s hidden with %s (capacity %s)\n",
			humanize.Bytes(uint64(res.Bytes)), p.Variant(), humanize.Bytes(uint64(res.Capacity)))
		fmt.Fprintf(o.stdout, "   %s\n", res.Checksum)
		return nil
	}

	res, err := pkg.ExtractFile(o.cover, o.out, p, fileOpts)
	if err != nil {
		return err
	}
	success.Fprintf(o.stdout, "✅ Secret message decoded successfully as %s\n", res.Path)
	fmt.Fprintf(o.stdout, "   %s recovered\n", humanize.Bytes(uint64(res.Bytes)))
	fmt.Fprintf(o.stdout, "   %s\n", res.Checksum)
	return nil
}

func newCapacityCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capacity",
		Short: "Show how large a file a cover image can hide",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.cover == "" {
				return usageError("missing required option: p")
			}
			p, _, err := o.buildPipeline(cmd, false)
			if err != nil {
				return err
			}

			report, err := pkg.CoverCapacity(o.cover, o.extension, p)
			if err != nil {
				return err
			}

			fmt.Fprintf(o.stdout, "The image %q (%dx%d) may hold %s bytes (~ %s) with %s\n",
				o.cover, report.Width, report.Height,
				humanize.Comma(int64(report.Capacity)), humanize.Bytes(uint64(report.Capacity)), p.Variant())
			if report.MaxContent < 0 {
				color.New(color.FgYellow).Fprintf(o.stdout, "No %s file fits in this image\n", o.extension)
				return nil
			}
			if report.MaxFile >= 0 {
				fmt.Fprintf(o.stdout, "Largest %s file: %s bytes (~ %s)\n", o.extension,
					humanize.Comma(int64(report.MaxFile)), humanize.Bytes(uint64(report.MaxFile)))
			}
			if p.Compressed() {
				fmt.Fprintf(o.stdout, "Compressible files fit while they shrink to %s bytes\n",
					humanize.Comma(int64(report.MaxContent)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&o.extension, "ext", ".txt", "Extension of the secret file to size for")
	return cmd
}

func newVerifyCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that a stego image carries a recoverable file without writing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.cover == "" {
				return usageError("missing required option: p")
			}
			p, logger, err := o.buildPipeline(cmd, false)
			if err != nil {
				return err
			}

			res, err := pkg.VerifyStegoWithLogger(o.cover, p, o.checksum, logger.Named("verify"))
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(o.stdout, "✅ %s carries a %s file of %s\n",
				o.cover, res.Extension, humanize.Bytes(uint64(res.Bytes)))
			fmt.Fprintf(o.stdout, "   %s\n", res.Checksum)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.checksum, "checksum", "", "Expected checksum of the hidden file (algo:hex)")
	return cmd
}

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the stegobmp config file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to a config file",
		Long: `Write the defaults, overlaid with STEGOBMP_* variables and any flags given,
to --config or to config.yaml in the platform config directory. Passwords are
never written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.configPath
			if path == "" {
				dir := config.ConfigDir()
				if dir == "" {
					return usageError("no config directory found, pass --config")
				}
				path = filepath.Join(dir, config.DefaultFile)
			}
			if _, err := os.Stat(path); err == nil && !o.force {
				return usageError("%s already exists, pass --force to overwrite", path)
			}

			conf := config.Default()
			if err := o.overlay(cmd, conf); err != nil {
				return err
			}
			if err := validateConfig(conf); err != nil {
				return err
			}
			if err := config.Save(path, conf); err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintf(o.stdout, "✅ Config written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&o.force, "force", false, "Overwrite an existing config file")

	cmd.AddCommand(initCmd)
	return cmd
}

// validateConfig rejects settings that would fail later in buildPipeline.
func validateConfig(conf *config.Config) error {
	if conf.Steg != "" {
		if _, err := codec.Parse(conf.Steg); err != nil {
			return err
		}
	}
	if _, err := operations.ParseChain(conf.Compression); err != nil {
		return err
	}
	if conf.Algorithm != "" || conf.Mode != "" {
		_, err := newEnvelope(conf)
		return err
	}
	_, err := conf.EnvelopeConfig()
	return err
}
