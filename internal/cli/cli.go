// Package cli binds cobra flags to viper with environment overrides.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	golog "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = golog.Logger("auctionpauser")

// Flag describes a configuration flag.
type Flag struct {
	Name        string
	DefValue    interface{}
	Description string
}

// ConfigureCLI registers flags on the command and binds them to v. Every
// flag can also be set through an env var, e.g. AUCTIONPAUSER_REMOTE_URL.
func ConfigureCLI(v *viper.Viper, envPrefix string, flags []Flag, rootCmd *cobra.Command) error {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	for _, flag := range flags {
		switch defval := flag.DefValue.(type) {
		case string:
			rootCmd.Flags().String(flag.Name, defval, flag.Description)
		case bool:
			rootCmd.Flags().Bool(flag.Name, defval, flag.Description)
		case int:
			rootCmd.Flags().Int(flag.Name, defval, flag.Description)
		case time.Duration:
			rootCmd.Flags().Duration(flag.Name, defval, flag.Description)
		default:
			return fmt.Errorf("flag %s: unknown type %T", flag.Name, flag.DefValue)
		}
		v.SetDefault(flag.Name, flag.DefValue)
		if err := v.BindPFlag(flag.Name, rootCmd.Flags().Lookup(flag.Name)); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}
	return nil
}

// CheckErr logs a fatal error and terminates.
func CheckErr(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

// WaitForTerminateSignal blocks until the process is interrupted or done is
// closed.
func WaitForTerminateSignal(done <-chan struct{}) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case <-quit:
	case <-done:
	}
}
