package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/stegobmp/internal/config"
	"github.com/provide-io/stegobmp/pkg/logging"
	"github.com/provide-io/stegobmp/pkg/stego"
	"github.com/provide-io/stegobmp/pkg/stego/codec"
	"github.com/provide-io/stegobmp/pkg/stego/envelope"
	stegoerrors "github.com/provide-io/stegobmp/pkg/stego/errors"
	"github.com/provide-io/stegobmp/pkg/stego/operations"
)

type options struct {
	stdout, stderr io.Writer

	// shared
	cover      string
	steg       string
	algorithm  string
	mode       string
	pass       string
	askPass    bool
	compress   string
	configPath string
	logLevel   string

	// root
	embed   bool
	extract bool
	in      string
	out     string
	verify  string
	outMode string
	version bool

	// capacity
	extension string

	// verify
	checksum string

	// config init
	force bool

	// readPassword prompts on the terminal unless replaced
	readPassword func(confirm bool) (string, error)
}

// loadConfig layers defaults, the config file, the environment and the
// flags set on cmd.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	conf, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if err := o.overlay(cmd, conf); err != nil {
		return nil, err
	}
	return conf, nil
}

// overlay applies the environment and then the flags set on cmd to conf.
func (o *options) overlay(cmd *cobra.Command, conf *config.Config) error {
	if err := conf.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	flags := cmd.Flags()
	overrides := []struct {
		name  string
		value string
		dst   *string
	}{
		{"steg", o.steg, &conf.Steg},
		{"algorithm", o.algorithm, &conf.Algorithm},
		{"mode", o.mode, &conf.Mode},
		{"compress", o.compress, &conf.Compression},
		{"log-level", o.logLevel, &conf.LogLevel},
	}
	for _, ov := range overrides {
		if flags.Changed(ov.name) {
			*ov.dst = ov.value
		}
	}
	return nil
}

// buildPipeline resolves the configuration into a pipeline. confirmPassword
// asks for the password twice when prompting.
func (o *options) buildPipeline(cmd *cobra.Command, confirmPassword bool) (*stego.Pipeline, hclog.Logger, error) {
	conf, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger("stegobmp", conf.LogLevel, o.stderr)

	if conf.Steg == "" {
		return nil, nil, fmt.Errorf("%w: missing required option: steg", stegoerrors.ErrConfiguration)
	}
	variant, err := codec.Parse(conf.Steg)
	if err != nil {
		return nil, nil, err
	}

	chain, err := operations.ParseChain(conf.Compression)
	if err != nil {
		return nil, nil, err
	}

	opts := stego.Options{
		Variant:     variant,
		Compression: chain,
		Logger:      logger.Named("pipeline"),
	}

	if conf.Algorithm != "" || conf.Mode != "" {
		env, err := newEnvelope(conf)
		if err != nil {
			return nil, nil, err
		}
		password, err := o.password(confirmPassword)
		if err != nil {
			return nil, nil, err
		}
		opts.Envelope = env
		opts.Password = password
		logger.Debug("🔐 Encryption enabled", "algorithm", env.Algorithm(), "mode", env.Mode())
	}

	p, err := stego.NewPipeline(opts)
	if err != nil {
		return nil, nil, err
	}
	return p, logger, nil
}

func newEnvelope(conf *config.Config) (*envelope.Envelope, error) {
	alg := envelope.DefaultAlgorithm
	if conf.Algorithm != "" {
		parsed, err := envelope.ParseAlgorithm(conf.Algorithm)
		if err != nil {
			return nil, err
		}
		alg = parsed
	}

	mode := envelope.DefaultMode
	if conf.Mode != "" {
		parsed, err := envelope.ParseMode(conf.Mode)
		if err != nil {
			return nil, err
		}
		mode = parsed
	}

	kdf, err := conf.EnvelopeConfig()
	if err != nil {
		return nil, err
	}
	return envelope.New(alg, mode, kdf)
}

func (o *options) password(confirm bool) (string, error) {
	if o.pass != "" {
		return o.pass, nil
	}
	if o.askPass {
		read := o.readPassword
		if read == nil {
			read = promptPassword
		}
		return read(confirm)
	}
	return "", fmt.Errorf("%w: password is required when using encryption (--pass or --ask-pass)",
		stegoerrors.ErrConfiguration)
}
