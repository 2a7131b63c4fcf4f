package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/devantler-tech/distreg/pkg/client/registry"
	"github.com/devantler-tech/distreg/pkg/reference"
	"github.com/devantler-tech/distreg/pkg/ui/notify"
)

// Global flag names shared by all subcommands.
const (
	TransportSchemeFlagName    = "transport-scheme"
	DefaultRegistryFlagName    = "default-registry"
	UsernameFlagName           = "username"
	PasswordFlagName           = "password"
	InsecureSkipVerifyFlagName = "insecure-skip-verify"
	VerboseFlagName            = "verbose"
)

// envPrefix is the prefix of environment variables that back the global
// flags, e.g. DISTREG_DEFAULT_REGISTRY.
const envPrefix = "DISTREG"

// GlobalOptions resolves the persistent flags shared by all subcommands,
// with environment variables as fallback.
type GlobalOptions struct {
	viper *viper.Viper
}

// NewGlobalOptions registers the global persistent flags on the root
// command and binds them to DISTREG_* environment variables.
func NewGlobalOptions(cmd *cobra.Command) (*GlobalOptions, error) {
	flags := cmd.PersistentFlags()

	registerGlobalFlags(flags)

	vpr := viper.New()
	vpr.SetEnvPrefix(envPrefix)
	vpr.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vpr.AutomaticEnv()

	for _, name := range []string{
		TransportSchemeFlagName,
		DefaultRegistryFlagName,
		UsernameFlagName,
		PasswordFlagName,
		InsecureSkipVerifyFlagName,
		VerboseFlagName,
	} {
		err := vpr.BindPFlag(name, flags.Lookup(name))
		if err != nil {
			return nil, fmt.Errorf("bind flag %q: %w", name, err)
		}
	}

	return &GlobalOptions{viper: vpr}, nil
}

// registerGlobalFlags declares the global flags on the given flag set.
func registerGlobalFlags(flags *pflag.FlagSet) {
	flags.String(TransportSchemeFlagName, "https", "Transport scheme for registry requests (http or https)")
	flags.String(DefaultRegistryFlagName, "registry-1.docker.io", "Registry to resolve domainless references against")
	flags.String(UsernameFlagName, "", "Username for registry authentication")
	flags.String(PasswordFlagName, "", "Password for registry authentication (prompted when omitted)")
	flags.Bool(InsecureSkipVerifyFlagName, false, "Skip TLS certificate verification")
	flags.BoolP(VerboseFlagName, "v", false, "Enable debug logging")
}

// DefaultRegistry returns the registry domainless references resolve
// against.
func (o *GlobalOptions) DefaultRegistry() string {
	return o.viper.GetString(DefaultRegistryFlagName)
}

// Logger returns the logger for client tracing, with debug level enabled
// when --verbose is set.
func (o *GlobalOptions) Logger(cmd *cobra.Command) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())

	if o.viper.GetBool(VerboseFlagName) {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

// Resolve canonicalizes a reference against the default registry. The
// Docker Hub library namespace is applied when resolving against a
// docker.io registry.
func (o *GlobalOptions) Resolve(input string) (reference.Reference, error) {
	ref, err := reference.Parse(input)
	if err != nil {
		return reference.Reference{}, fmt.Errorf("parse reference %q: %w", input, err)
	}

	defaultRegistry := o.DefaultRegistry()
	dockerCompat := strings.Contains(defaultRegistry, "docker.io")

	resolved, err := registry.Canonicalize(ref, defaultRegistry, dockerCompat)
	if err != nil {
		return reference.Reference{}, err
	}

	return resolved, nil
}

// Client builds a registry client for the given host from the global
// flags.
func (o *GlobalOptions) Client(cmd *cobra.Command, host string) (*registry.Client, error) {
	creds, err := o.credentials(cmd)
	if err != nil {
		return nil, err
	}

	opts := []registry.Option{registry.WithLogger(o.Logger(cmd))}
	if o.viper.GetBool(InsecureSkipVerifyFlagName) {
		opts = append(opts, registry.WithInsecureTLS())
	}

	client, err := registry.New(o.viper.GetString(TransportSchemeFlagName), host, creds, opts...)
	if err != nil {
		return nil, fmt.Errorf("create registry client: %w", err)
	}

	return client, nil
}

// credentials reads the username and password flags, prompting for the
// password on a terminal when only the username is given.
func (o *GlobalOptions) credentials(cmd *cobra.Command) (registry.Credentials, error) {
	username := o.viper.GetString(UsernameFlagName)
	password := o.viper.GetString(PasswordFlagName)

	if username != "" && password == "" {
		file, isFile := cmd.InOrStdin().(*os.File)
		if isFile && term.IsTerminal(int(file.Fd())) {
			notify.Activityf(cmd.ErrOrStderr(), "password for %s:", username)

			raw, err := term.ReadPassword(int(file.Fd()))
			if err != nil {
				return registry.Credentials{}, fmt.Errorf("read password: %w", err)
			}

			password = string(raw)
		}
	}

	return registry.Credentials{Username: username, Password: password}, nil
}
