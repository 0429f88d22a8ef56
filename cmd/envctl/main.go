package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// OutputFormatter prints results as JSON or plain text depending on --json.
type OutputFormatter struct {
	jsonMode bool
	out      io.Writer
	errOut   io.Writer
}

func newOutputFormatter(cmd *cobra.Command) *OutputFormatter {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &OutputFormatter{jsonMode: jsonMode, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
}

func (f *OutputFormatter) Print(data interface{}, text func() string) error {
	if f.jsonMode || text == nil {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(f.out, string(out))
		return nil
	}
	fmt.Fprintln(f.out, text())
	return nil
}

func (f *OutputFormatter) Error(message string, err error) error {
	if f.jsonMode {
		output := map[string]interface{}{
			"success": false,
			"error":   message,
		}
		if err != nil {
			output["details"] = err.Error()
		}
		out, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(f.errOut, string(out))
	} else if err != nil {
		fmt.Fprintf(f.errOut, "%s: %v\n", message, err)
	} else {
		fmt.Fprintln(f.errOut, message)
	}
	if err == nil {
		return errors.New(message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ENVCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "envctl",
		Short: "Inspect and change the environment settings held by the controller",
		Long: `envctl talks to the controller's HTTP API.

Connection flags can also be set through ENVCTL_URL, ENVCTL_USER,
ENVCTL_PASSWORD and ENVCTL_TIMEOUT.

Examples:
  envctl get
  envctl set-interval 5m
  envctl host-page disable
  envctl dispatch SET_TELEGRAF_SYSTEM_INTERVAL '{"telegrafSystemInterval":"30s"}'
  envctl history --limit 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("url", "http://localhost:8080", "controller base URL")
	flags.String("user", "admin", "basic auth username")
	flags.String("password", "", "basic auth password")
	flags.Duration("timeout", 10*time.Second, "request timeout")
	flags.Bool("json", false, "print JSON output")
	_ = v.BindPFlags(flags)

	cmd.AddCommand(
		newGetCommand(v),
		newSetIntervalCommand(v),
		newHostPageCommand(v),
		newDispatchCommand(v),
		newHistoryCommand(v),
	)
	return cmd
}

func clientFrom(v *viper.Viper) *Client {
	return NewClient(v.GetString("url"), v.GetString("user"), v.GetString("password"), v.GetDuration("timeout"))
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
