package main

import (
	"os"
	"path/filepath"

	"github.com/bobvanderlinden/mbrfs/internal/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var (
	// Config is the global tool configuration
	Config = GlobalConfig{}
)

// GlobalConfig is the global tool configuration
type GlobalConfig struct {
	Mount MountConfig `yaml:"mount"`
}

// MountConfig holds defaults for the `mount` subcommand flags. Flags given
// on the command line win.
type MountConfig struct {
	Handles    int      `yaml:"handles"`
	Bounds     string   `yaml:"bounds"`
	AllowOther bool     `yaml:"allow-other"`
	ReadOnly   bool     `yaml:"read-only"`
	Strict     bool     `yaml:"strict"`
	NoLock     bool     `yaml:"no-lock"`
	Options    []string `yaml:"options"`
}

func defaultConfigPath() string {
	return filepath.Join(util.HomeDir(), ".mbrfs", "config.yml")
}

// readConfig loads cfgPath into Config. A missing file is not an error.
func readConfig(cfgPath string) error {
	cfgBytes, err := os.ReadFile(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed to read %q", cfgPath)
	}
	if err := yaml.Unmarshal(cfgBytes, &Config); err != nil {
		return errors.Wrapf(err, "failed to parse %q", cfgPath)
	}
	return nil
}

func newCmd() *cobra.Command {
	var (
		flagQuiet       bool
		flagVerbose     int
		flagVerboseName = "verbose"
		cfgPath         string
	)
	cmd := &cobra.Command{
		Use:               "mbrfs",
		Short:             "expose the primary partitions of an MBR disk as files",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfig(cfgPath); err != nil {
				return err
			}
			// Set up logging
			return util.SetupLogging(flagQuiet, flagVerbose, cmd.Flag(flagVerboseName).Changed)
		},
	}

	cmd.AddCommand(mountCmd())
	cmd.AddCommand(lsCmd())
	cmd.AddCommand(versionCmd())

	cmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "Path to the configuration file")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Quiet execution")
	cmd.PersistentFlags().IntVarP(&flagVerbose, flagVerboseName, "v", 1, "Verbosity of logging: 0 = quiet, 1 = info, 2 = debug, 3 = trace. Default is info. Setting it explicitly will create structured logging lines.")

	return cmd
}
