package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Alwanly/service-env-state/internal/server/controller/dto"
)

func newGetCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current environment settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newOutputFormatter(cmd)
			state, etag, err := clientFrom(v).GetEnv(cmd.Context())
			if err != nil {
				return formatter.Error("Failed to fetch environment", err)
			}
			return formatter.Print(map[string]interface{}{
				"env":  state,
				"etag": etag,
			}, func() string {
				return formatEnv(state) + fmt.Sprintf("\netag:              %s", etag)
			})
		},
	}
}

func newSetIntervalCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "set-interval <token>",
		Short: "Set the telegraf system interval (e.g. 30s, 1m, 5m)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newOutputFormatter(cmd)
			res, err := clientFrom(v).SetInterval(cmd.Context(), args[0])
			if err != nil {
				return formatter.Error("Failed to set interval", err)
			}
			return formatter.Print(res, func() string { return formatDispatch(res) })
		},
	}
}

func newHostPageCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:       "host-page <enable|disable>",
		Short:     "Enable or disable the host page",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"enable", "disable"},
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newOutputFormatter(cmd)

			var disabled bool
			switch strings.ToLower(args[0]) {
			case "enable":
				disabled = false
			case "disable":
				disabled = true
			default:
				return formatter.Error(fmt.Sprintf("Unknown host page mode %q, expected enable or disable", args[0]), nil)
			}

			res, err := clientFrom(v).SetHostPage(cmd.Context(), disabled)
			if err != nil {
				return formatter.Error("Failed to change host page display", err)
			}
			return formatter.Print(res, func() string { return formatDispatch(res) })
		},
	}
}

func newDispatchCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch <type> [payload-json]",
		Short: "Dispatch a raw action to the controller",
		Long: `Dispatch sends {"type": <type>, "payload": <payload-json>} to the controller.
Unknown types are accepted and leave the environment unchanged.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newOutputFormatter(cmd)

			var payload json.RawMessage
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return formatter.Error("Payload is not valid JSON", nil)
				}
				payload = json.RawMessage(args[1])
			}

			res, err := clientFrom(v).Dispatch(cmd.Context(), args[0], payload)
			if err != nil {
				return formatter.Error("Failed to dispatch action", err)
			}
			return formatter.Print(res, func() string { return formatDispatch(res) })
		},
	}
}

func newHistoryCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted environment snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newOutputFormatter(cmd)
			limit, _ := cmd.Flags().GetInt("limit")

			res, err := clientFrom(v).History(cmd.Context(), limit)
			if err != nil {
				return formatter.Error("Failed to fetch history", err)
			}
			return formatter.Print(res, func() string { return formatHistory(res) })
		},
	}
	cmd.Flags().Int("limit", 0, "number of snapshots to show (controller default when 0)")
	return cmd
}

func formatEnv(e dto.EnvResponse) string {
	return fmt.Sprintf("telegraf interval: %s\nhost page:         %s", e.TelegrafSystemInterval, hostPageLabel(e.HostPageDisabled))
}

func formatDispatch(res dto.DispatchActionResponse) string {
	var b strings.Builder
	if res.Changed {
		fmt.Fprintf(&b, "environment updated to version %d\n", res.Version)
	} else {
		fmt.Fprintf(&b, "no change (version %d)\n", res.Version)
	}
	b.WriteString(formatEnv(res.Env))
	return b.String()
}

func formatHistory(res dto.HistoryResponse) string {
	if len(res.Snapshots) == 0 {
		return "no snapshots"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tACTION\tINTERVAL\tHOST PAGE\tCREATED")
	for _, s := range res.Snapshots {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.Version, s.ActionType, s.Env.TelegrafSystemInterval, hostPageLabel(s.Env.HostPageDisabled), s.CreatedAt)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func hostPageLabel(disabled bool) string {
	if disabled {
		return "disabled"
	}
	return "enabled"
}
