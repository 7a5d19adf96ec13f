package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

func getBuildTimestamp() string {
	// Try to get vcs.time from build info
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	// Fallback to binary modification time
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "stegobmp %s\n", version)
	fmt.Fprintf(w, "Built: %s\n", getBuildTimestamp())
}

// singleDashLong lists long flags that may also be written with one dash,
// as in "-embed -in secret.txt -steg LSBI".
var singleDashLong = map[string]bool{
	"embed":   true,
	"extract": true,
	"in":      true,
	"out":     true,
	"steg":    true,
	"pass":    true,
}

// normalizeArgs rewrites single-dash long flags to the double-dash form pflag
// expects. Arguments after "--" are left alone.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i, arg := range out {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			continue
		}
		name, _, _ := strings.Cut(arg[1:], "=")
		if singleDashLong[name] {
			out[i] = "-" + arg
		}
	}
	return out
}

func main() {
	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		printVersion(os.Stdout)
		os.Exit(0)
	}

	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	return newRootCmdWith(&options{stdout: stdout, stderr: stderr})
}

func newRootCmdWith(o *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stegobmp",
		Short: "Hide files inside BMP images",
		Long: `Hide a file inside a BMP cover image, optionally encrypted, and extract it again.

  stegobmp --embed --in secret.txt -p cover.bmp --out stego.bmp --steg LSBI -a aes256 -m cbc --pass pw
  stegobmp --extract -p stego.bmp --out recovered --steg LSBI -a aes256 -m cbc --pass pw`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          o.runRoot,
	}
	rootCmd.SetOut(o.stdout)
	rootCmd.SetErr(o.stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&o.cover, "cover", "p", "", "Path to the cover image (embed) or stego image (extract)")
	pf.StringVar(&o.steg, "steg", "", "<LSB1 | LSB4 | LSBI | LSBN:n> Steganography algorithm to use")
	pf.StringVarP(&o.algorithm, "algorithm", "a", "", "<aes128 | aes192 | aes256 | 3des> Encryption algorithm to use")
	pf.StringVarP(&o.mode, "mode", "m", "", "<ecb | cfb | ofb | cbc> Encryption mode to use")
	pf.StringVar(&o.pass, "pass", "", "Encryption password, required when an algorithm or mode is given")
	pf.BoolVar(&o.askPass, "ask-pass", false, "Prompt for the encryption password on the terminal")
	pf.StringVar(&o.compress, "compress", "", "Compression applied before embedding (raw, gzip, bzip2, zstd or a|b chain)")
	pf.StringVar(&o.configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	f := rootCmd.Flags()
	f.BoolVar(&o.embed, "embed", false, "Embed the secret file into the cover image")
	f.BoolVar(&o.extract, "extract", false, "Extract the hidden file from a stego image")
	f.StringVar(&o.in, "in", "", "Path to the secret file (embed only)")
	f.StringVar(&o.out, "out", "", "Output path; the extension is replaced by .bmp or the recovered one")
	f.StringVar(&o.verify, "verify", "", "Expected checksum of the extracted file (algo:hex)")
	f.StringVar(&o.outMode, "out-mode", "", "Permissions of the written file in octal (default 0600)")
	f.BoolVarP(&o.version, "version", "V", false, "Show version information")

	rootCmd.AddCommand(newCapacityCmd(o), newVerifyCmd(o), newConfigCmd(o))
	return rootCmd
}
