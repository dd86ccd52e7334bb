package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// apiKeyConfigKey is where set-key stores the embedding API key.
const apiKeyConfigKey = "embedding.api_key"

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change quarry configuration.

Settings are stored in ~/.quarry/config.toml. Common keys:
  data_dir               where indexes and the document store live
  ingest.max_file_size   per-file size ceiling in bytes
  chunk.size             characters per chunk
  chunk.overlap          overlapping characters between chunks
  search.limit           default result count
  embedding.provider     "ollama" to enable semantic search
  embedding.base_url     embedding API base URL
  embedding.model        embedding model name`,
	RunE: runSettingsList,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Sets a configuration key. Values that parse as integers or booleans
are stored typed; everything else is stored as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the embedding API key",
	Long: `Prompts for the embedding provider API key without echoing it.
Local Ollama needs no key; hosted providers do.`,
	Args: cobra.NoArgs,
	RunE: runSettingsSetKey,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	keys := configStore.Keys()
	if len(keys) == 0 {
		cmd.Printf("No settings configured. Config file: %s\n", configStore.Path())
		return nil
	}

	cmd.Printf("Settings (%s)\n\n", configStore.Path())
	for _, key := range keys {
		val, _ := configStore.Get(key)
		cmd.Printf("  %s = %s\n", key, displayValue(key, val))
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	val, ok := configStore.Get(key)
	if !ok {
		return fmt.Errorf("key %q is not set", key)
	}

	cmd.Printf("%s = %s\n", key, displayValue(key, val))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	cmd.Printf("Set %s.\n", key)
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Print("Enter API key: ")
	key := readPassword()
	cmd.Println()

	if key == "" {
		return errors.New("no API key entered")
	}
	if err := configStore.Set(apiKeyConfigKey, key); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}

	cmd.Println("API key saved.")
	return nil
}

// parseValue stores integers and booleans typed so TOML round-trips
// them; anything else stays a string.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

// displayValue renders a setting for output, masking secrets.
func displayValue(key string, val any) string {
	s := fmt.Sprintf("%v", val)
	if strings.HasSuffix(key, "api_key") && s != "" {
		return maskAPIKey(s)
	}
	return s
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Read without echo when stdin is a terminal
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
