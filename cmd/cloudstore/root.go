package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/cloudstore/config"
	"github.com/kbukum/cloudstore/observability"
	"github.com/kbukum/cloudstore/storage"
	"github.com/kbukum/cloudstore/util"
	"github.com/kbukum/cloudstore/version"
)

const appName = "cloudstore"

// CLIConfig is the configuration file layout. Flags override it.
type CLIConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Storage              storage.Config       `yaml:"storage" mapstructure:"storage"`
	Telemetry            observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults fills in the service and storage defaults.
func (c *CLIConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = appName
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	// Command output owns stdout; progress logging stays quiet unless asked for.
	if c.Logging.Level == "" && !c.Debug {
		c.Logging.Level = "warn"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Storage.ApplyDefaults()
}

// Validate checks both sections.
func (c *CLIConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return c.Storage.Validate()
}

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile string
	envFile    string
	verbose    bool
	logFormat  string

	provider string
	bucket   string
	basePath string
	pageSize int

	region    string
	profile   string
	endpoint  string
	pathStyle bool
	delegated bool
	policy    string
	group     string
	useMFA    bool

	account         string
	credentialsFile string
	project         string
	localRoot       string

	partSize    string
	concurrency int

	otlpEndpoint string
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "List, copy, move, read and write objects on S3, Azure Blob and GCS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	opts.register(rootCmd)

	rootCmd.AddCommand(
		newLsCmd(opts),
		newCpCmd(opts, false),
		newCpCmd(opts, true),
		newGetCmd(opts),
		newPutCmd(opts),
		newCatCmd(opts),
		newMbCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// register binds the persistent flags on cmd.
func (opts *globalOptions) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./cloudstore.yml, ~/.cloudstore/config.yml)")
	pf.StringVar(&opts.envFile, "env-file", "", ".env file loaded before the environment is read")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: console or json")

	pf.StringVarP(&opts.provider, "provider", "p", "", "storage provider: s3, azure, gcs, local or memory")
	pf.StringVarP(&opts.bucket, "bucket", "b", "", "bucket or container name")
	pf.StringVar(&opts.basePath, "base-path", "", "prefix applied to every folder and file name")
	pf.IntVar(&opts.pageSize, "page-size", 0, "listing page size hint")

	pf.StringVar(&opts.region, "region", "", "AWS region")
	pf.StringVar(&opts.profile, "profile", "", "AWS shared config profile")
	pf.StringVar(&opts.endpoint, "endpoint", "", "S3-compatible or GCS emulator endpoint")
	pf.BoolVar(&opts.pathStyle, "path-style", false, "use path-style S3 addressing")
	pf.BoolVar(&opts.delegated, "delegated", false, "assume the role named in the caller's IAM group policy")
	pf.StringVar(&opts.policy, "policy-name", "", "group policy naming the delegated role")
	pf.StringVar(&opts.group, "group-name", "", "IAM group holding the policy")
	pf.BoolVar(&opts.useMFA, "mfa", false, "prompt for an MFA token when assuming the delegated role")

	pf.StringVar(&opts.account, "account", "", "Azure storage account name")
	pf.StringVar(&opts.credentialsFile, "credentials-file", "", "GCP service account key file")
	pf.StringVar(&opts.project, "project", "", "GCP project")
	pf.StringVar(&opts.localRoot, "local-root", "", "directory holding local buckets")

	pf.StringVar(&opts.partSize, "part-size", "", `multipart chunk size, e.g. "8MiB" or "16777216"`)
	pf.IntVar(&opts.concurrency, "concurrency", 0, "parts transferred in parallel")

	pf.StringVar(&opts.otlpEndpoint, "otlp-endpoint", "", "OTLP HTTP endpoint for traces and metrics")
}

// loadConfig reads the config file and environment, then applies the flags
// that were set on cmd.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	loadOpts := []config.LoaderOption{config.WithEnvPrefix(appName)}
	if opts.configFile != "" {
		if _, err := os.Stat(opts.configFile); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		loadOpts = append(loadOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(opts.envFile))
	}
	if err := config.LoadConfig(appName, cfg, loadOpts...); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	s := &cfg.Storage
	set("provider", func() { s.Provider = opts.provider })
	set("bucket", func() { s.Bucket = opts.bucket })
	set("base-path", func() { s.BasePath = opts.basePath })
	set("page-size", func() { s.PageSize = opts.pageSize })
	set("region", func() { s.AWS.Region = opts.region })
	set("profile", func() { s.AWS.Profile = opts.profile })
	set("endpoint", func() {
		s.AWS.Endpoint = opts.endpoint
		s.GCP.Endpoint = opts.endpoint
	})
	set("path-style", func() { s.AWS.ForcePathStyle = opts.pathStyle })
	set("delegated", func() { s.AWS.Delegated = opts.delegated })
	set("policy-name", func() { s.AWS.PolicyName = opts.policy })
	set("group-name", func() { s.AWS.GroupName = opts.group })
	set("mfa", func() { s.AWS.UseMFA = opts.useMFA })
	set("account", func() { s.Azure.AccountName = opts.account })
	set("credentials-file", func() { s.GCP.CredentialsFile = opts.credentialsFile })
	set("project", func() { s.GCP.Project = opts.project })
	set("local-root", func() { s.Local.Root = opts.localRoot })
	set("concurrency", func() { s.Transfer.Concurrency = opts.concurrency })
	set("otlp-endpoint", func() { cfg.Telemetry.Endpoint = opts.otlpEndpoint })
	set("log-format", func() { cfg.Logging.Format = opts.logFormat })
	if flags.Changed("part-size") {
		size, err := util.ParseSize(opts.partSize)
		if err != nil {
			return nil, fmt.Errorf("--part-size: %w", err)
		}
		s.Transfer.PartSize = size
	}
	if opts.verbose {
		cfg.Debug = true
		cfg.Logging.Level = "debug"
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withBucket loads the configuration and runs fn against a connected bucket.
func withBucket(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, b *storage.Bucket) error) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return runTask(ctx, cfg, cmd.ErrOrStderr(), fn)
}
