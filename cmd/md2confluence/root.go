/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"

	"github.com/fatih/structs"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/toothbrush/md2confluence/internal/logging"
	"gopkg.in/yaml.v2"
)

const defaultConfig = "~/.config/md2confluence.yaml"

var (
	// Store the result of binding cobra flags
	Config string
	// ConfigActual is the file config was actually read from; empty if none.
	ConfigActual string
	Verbose      bool
	Quiet        bool

	ConfluenceURL string
	AuthUsername  string
	AuthToken     string
	// Command to run to retrieve API Personal Access Token
	AuthTokenCmd []string

	WithVCR     bool
	AddMeta     bool
	AddInfo     bool
	AddLabel    string
	ConvertJira bool

	ParsedConfig YamlConfig

	logger = slog.Default()
)

// Build the cobra command that handles our command line tool.
var rootCmd = &cobra.Command{
	Use:   "md2confluence",
	Short: "Publish Markdown files as Confluence pages",
	Long: `
Write your documentation as Markdown next to your code, and publish it to Confluence with one
command.  Images are uploaded as attachments, Jira references can be turned into rich links, and
the page URL can be remembered in the file's front-matter so the next run updates the same page.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("md2confluence: failed to initialise config: %w", err)
		}

		logger = logging.New(os.Stderr, logging.Level(Verbose, Quiet))
		slog.SetDefault(logger)

		if ConfigActual != "" {
			logger.Debug("read config", "file", ConfigActual)
		}
		return nil
	},
}

func init() {
	// Define cobra flags, the default value has the lowest (least significant) precedence
	rootCmd.PersistentFlags().StringVar(&Config, "config", "", "config file location (default: "+defaultConfig+", respects MD2CONFLUENCE_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "display debug output")
	rootCmd.PersistentFlags().BoolVar(&Verbose, "debug", false, "same as --verbose")
	rootCmd.PersistentFlags().BoolVarP(&Quiet, "quiet", "q", false, "only display warnings and errors")
	rootCmd.PersistentFlags().StringVar(&ConfluenceURL, "url", "", "Confluence URL, e.g. https://ORG.atlassian.net (default: taken from the document's confluence-url)")
	rootCmd.PersistentFlags().StringVarP(&AuthUsername, "auth-username", "u", "", "your Atlassian username")
	rootCmd.PersistentFlags().StringVarP(&AuthToken, "auth-token", "t", "", "Atlassian API token (or set "+tokenEnv+")")
	rootCmd.PersistentFlags().StringSliceVar(&AuthTokenCmd, "auth-token-cmd", []string{}, "shell command to retrieve Atlassian auth token")
	rootCmd.PersistentFlags().BoolVar(&WithVCR, "with-vcr", false, "record and replay HTTP traffic with go-vcr (for debugging)")

	rootCmd.PersistentFlags().BoolVar(&AddMeta, "add-meta", false, "record the page URL in the document's front-matter")
	rootCmd.PersistentFlags().BoolVar(&AddInfo, "add-info", false, "add a \"do not edit\" banner to the page")
	rootCmd.PersistentFlags().StringVar(&AddLabel, "add-label", "", "add this label to the page")
	rootCmd.PersistentFlags().BoolVar(&ConvertJira, "convert-jira", false, "replace Jira references with issue snippets - KEY: summary [status]")
}

func initializeConfig(cmd *cobra.Command) error {
	// A .env in the working directory may hold credentials.  It doesn't override the real
	// environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("md2confluence: couldn't load .env: %w", err)
	}

	explicit := Config != ""
	if !explicit {
		// Did the user provide an ENV?
		if envConfig := os.Getenv("MD2CONFLUENCE_CONFIG"); envConfig != "" {
			Config = envConfig
			explicit = true
		} else {
			// As fallback, search for config in home XDG-ish directory
			Config = defaultConfig
		}
	}
	config, err := homedir.Expand(Config)
	if err != nil {
		return fmt.Errorf("md2confluence: unable to expand homedir: %w", err)
	}
	Config = config

	yamlFile, err := os.ReadFile(Config)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		// No config file is fine, flags alone will do.
		return nil
	}
	if err != nil {
		return fmt.Errorf("md2confluence: error reading config file: %w", err)
	}
	ConfigActual = Config

	// I'd like to bark if a user sets a flag we don't recognise:
	if err := yaml.UnmarshalStrict(yamlFile, &ParsedConfig); err != nil {
		return fmt.Errorf("md2confluence: issue parsing config file: %w", err)
	}

	if err := bindFlags(cmd, ParsedConfig); err != nil {
		return fmt.Errorf("md2confluence: failed to bind flags: %w", err)
	}

	return nil
}

type YamlConfig struct {
	WithVCR     *bool `yaml:"with-vcr"`
	AddMeta     *bool `yaml:"add-meta"`
	AddInfo     *bool `yaml:"add-info"`
	ConvertJira *bool `yaml:"convert-jira"`
	Verbose     *bool `yaml:"verbose"`

	URL          string   `yaml:"url"`
	AuthUsername string   `yaml:"auth-username"`
	AuthTokenCmd []string `yaml:"auth-token-cmd"`
	AddLabel     string   `yaml:"add-label"`
}

// Bind each YAML value to the cobra flag of the same name, unless the flag was given on the
// command line.
func bindFlags(cmd *cobra.Command, v YamlConfig) error {
	for _, field := range structs.Fields(v) {
		key := field.Tag("yaml")
		if key == "" {
			return fmt.Errorf("md2confluence: could not retrieve struct tag 'yaml'")
		}
		if flag := cmd.Flag(key); flag == nil {
			// A subcommand without this flag, e.g. `version`.
			continue
		}
		if cmd.Flags().Changed(key) {
			continue
		}

		switch field.Kind() {
		case reflect.Ptr:
			// YamlConfig only uses pointers for bools.
			b, ok := field.Value().(*bool)
			if !ok {
				return fmt.Errorf("md2confluence: found unrecognised field: %+v", field)
			}
			if b != nil {
				if err := cmd.Flags().Set(key, fmt.Sprintf("%v", *b)); err != nil {
					return fmt.Errorf("md2confluence: couldn't set %s: %w", key, err)
				}
			}

		case reflect.String:
			s, ok := field.Value().(string)
			if !ok {
				return fmt.Errorf("md2confluence: found unrecognised field: %+v", field)
			}
			if s != "" {
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("md2confluence: couldn't set %s: %w", key, err)
				}
			}

		case reflect.Slice:
			ss, ok := field.Value().([]string)
			if !ok {
				return fmt.Errorf("md2confluence: found unrecognised field: %+v", field)
			}
			for _, s := range ss {
				// yes, repeatedly calling Set() appends to the slice...
				if err := cmd.Flags().Set(key, s); err != nil {
					return fmt.Errorf("md2confluence: couldn't set %s: %w", key, err)
				}
			}

		default:
			return fmt.Errorf("md2confluence: found unrecognised field: %+v", field)
		}
	}

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("md2confluence: execution error: %w", err)
	}

	return nil
}

func headline(msg string) {
	if !Quiet {
		logging.Headline(os.Stderr, msg)
	}
}
