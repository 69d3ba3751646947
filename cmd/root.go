/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/allbin/serialhost"
	"github.com/allbin/serialhost/native"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialctl",
	Short: "Inspect and drive serial ports",
	Long: `serialctl lists serial ports and drives them through the same handle
registry the scripting runtime uses.

Every port command opens the device raw 8N1, performs its work by handle id
and closes the handle again. Defaults for baud rate, read timeout and log
level come from flags, SERIALCTL_* environment variables or the config file.

Examples:
  serialctl list --table
  serialctl send "AT" /dev/ttyUSB0 --newline
  serialctl monitor /dev/ttyACM0 --baud 115200`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.serialctl.yaml)")
	rootCmd.PersistentFlags().IntP("baud", "b", 9600, "Baud rate")
	rootCmd.PersistentFlags().Duration("read-timeout", time.Second, "Read timeout, 0 to 25.5s in 100ms steps")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn, error")

	viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
	viper.BindPFlag("read-timeout", rootCmd.PersistentFlags().Lookup("read-timeout"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".serialctl")
	}

	viper.SetEnvPrefix("serialctl")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds a stderr logger at the configured level
func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// session is one registry with a single port opened on it
type session struct {
	reg    *native.Registry
	id     native.HandleID
	logger *zap.Logger
}

// openSession opens portPath at the configured baud rate and read timeout
func openSession(portPath string, opts ...serial.Option) (*session, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	baud := viper.GetInt("baud")
	if baud <= 0 {
		return nil, fmt.Errorf("invalid baud rate: %d", baud)
	}

	opts = append([]serial.Option{serial.WithReadTimeout(viper.GetDuration("read-timeout"))}, opts...)
	reg := native.NewRegistry(
		native.WithLogger(logger),
		native.WithPortOptions(opts...),
	)

	id, err := reg.Open(portPath, uint32(baud))
	if err != nil {
		logger.Sync()
		return nil, err
	}
	return &session{reg: reg, id: id, logger: logger}, nil
}

func (s *session) Close() error {
	defer s.logger.Sync()
	return s.reg.Close(s.id)
}

// mustOpen opens portPath or exits
func mustOpen(portPath string, opts ...serial.Option) *session {
	s, err := openSession(portPath, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
		os.Exit(1)
	}
	return s
}

// completePorts completes the argument at position with the device paths
// of the available ports. Other positions fall back to file completion.
func completePorts(position int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != position {
			return nil, cobra.ShellCompDirectiveDefault
		}
		return portCompletions(serial.ListPorts, toComplete)
	}
}

func portCompletions(list func() ([]string, error), toComplete string) ([]string, cobra.ShellCompDirective) {
	paths, err := list()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	matches := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.HasPrefix(p, toComplete) {
			matches = append(matches, p)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}
