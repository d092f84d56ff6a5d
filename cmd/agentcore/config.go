package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kestrel-dev/agentcore/internal/config"
)

// newConfigCommand implements spec §6's `config get/set/list`, reading
// and writing the user-level settings file the same way
// config.SaveUserSetting does for the teacher's settings layering.
func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit user-level settings",
	}
	cmd.AddCommand(newConfigGetCommand(), newConfigSetCommand(), newConfigListCommand())
	return cmd
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value of a single user setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadUserSettingsMap()
			if err != nil {
				return err
			}
			val, ok := settings[args[0]]
			if !ok {
				fmt.Println("(unset)")
				return nil
			}
			out, _ := json.Marshal(val)
			fmt.Println(string(out))
			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a single user-level setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, raw := args[0], args[1]
			return config.SaveUserSetting(key, coerceSettingValue(raw))
		},
	}
}

func newConfigListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all user-level settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadUserSettingsMap()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func loadUserSettingsMap() (map[string]interface{}, error) {
	path, err := config.UserSettingsPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var settings map[string]interface{}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return settings, nil
}

// coerceSettingValue lets `config set verbose true` and
// `config set fastMode false` round-trip as real booleans instead of
// the literal strings "true"/"false", matching how settings.json
// actually stores these fields.
func coerceSettingValue(raw string) interface{} {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}
