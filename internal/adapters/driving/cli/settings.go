package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

// maxHistoryLimit bounds the wizard's history prompt.
const maxHistoryLimit = 100

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the client configuration",
	Long: `Show or change the search API, storage backend, cache, history and
suggestion settings kept in ~/.sercha/config.toml.

A running 'sercha tui' applies cache, history and suggestion changes as
soon as the file is saved.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Answer a few prompts to configure the client",
	RunE:  runSettingsWizard,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the configuration with the defaults",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsWizardCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsSection is one titled block of "Key: value" lines.
type settingsSection struct {
	title string
	rows  [][2]string
}

func describeSettings(s *domain.AppSettings) []settingsSection {
	storage := [][2]string{{"Backend", s.Storage.Backend.Description()}}
	switch s.Storage.Backend {
	case domain.StorageSQLite:
		if s.Storage.DataDir != "" {
			storage = append(storage, [2]string{"Data dir", s.Storage.DataDir})
		}
	case domain.StorageRedis:
		storage = append(storage, [2]string{"Address", s.Storage.RedisAddr})
	case domain.StorageMemory:
	}

	return []settingsSection{
		{"API", [][2]string{
			{"Base URL", s.API.BaseURL},
			{"Timeout", s.API.Timeout.String()},
			{"Rate limit", fmt.Sprintf("%g/s (burst %d)", s.API.RateLimit, s.API.Burst)},
		}},
		{"Storage", storage},
		{"Cache", [][2]string{
			{"TTL", s.Cache.TTL.String()},
			{"Max entries", strconv.Itoa(s.Cache.MaxEntries)},
			{"Sweep interval", s.Cache.SweepInterval.String()},
		}},
		{"History", [][2]string{
			{"TTL", s.History.TTL.String()},
			{"Limit", strconv.Itoa(s.History.Limit)},
		}},
		{"Suggest", [][2]string{
			{"Debounce", s.Suggest.Debounce.String()},
			{"Min length", strconv.Itoa(s.Suggest.MinLength)},
			{"Limit", strconv.Itoa(s.Suggest.Limit)},
		}},
	}
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	cmd.Printf("Settings (%s)\n", settingsService.ConfigPath())
	for _, section := range describeSettings(settings) {
		cmd.Printf("\n[%s]\n", section.title)
		for _, row := range section.rows {
			cmd.Printf("  %s: %s\n", row[0], row[1])
		}
	}
	cmd.Println()

	reportValidity(cmd, "Configuration is valid.")
	return nil
}

func reportValidity(cmd *cobra.Command, ok string) {
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'sercha settings wizard' to fix it.")
		return
	}
	cmd.Println(ok)
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	defaults := settingsService.GetDefaults()
	if err := settingsService.Save(&defaults); err != nil {
		return fmt.Errorf("saving defaults: %w", err)
	}
	cmd.Printf("Wrote default settings to %s\n", settingsService.ConfigPath())
	return nil
}

// prompter asks one question per line of input. An empty answer keeps the
// value shown in brackets.
type prompter struct {
	cmd *cobra.Command
	in  *bufio.Reader
}

func (p prompter) ask(question string, current any) string {
	p.cmd.Printf("%s [%v]: ", question, current)
	return readLine(p.in)
}

func (p prompter) heading(title string) {
	p.cmd.Printf("\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	p := prompter{cmd: cmd, in: bufio.NewReader(cmd.InOrStdin())}
	cmd.Println("Sercha settings wizard. Press enter to keep a value.")

	p.heading("1/3 Search API")
	if v := p.ask("Base URL", settings.API.BaseURL); v != "" {
		settings.API.BaseURL = strings.TrimRight(v, "/")
	}

	p.heading("2/3 Storage")
	backends := domain.AllStorageBackends()
	current := 1
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
		if b == settings.Storage.Backend {
			current = i + 1
		}
	}
	choice := parseChoice(p.ask("Backend", current), len(backends), current)
	settings.Storage.Backend = backends[choice-1]
	if settings.Storage.Backend == domain.StorageRedis {
		if v := p.ask("Redis address", settings.Storage.RedisAddr); v != "" {
			settings.Storage.RedisAddr = v
		}
	}

	p.heading("3/3 Cache and history")
	settings.Cache.TTL = parseDurationChoice(p.ask("Cache TTL", settings.Cache.TTL), settings.Cache.TTL)
	settings.History.Limit = parseChoice(p.ask("Recent searches to keep", settings.History.Limit),
		maxHistoryLimit, settings.History.Limit)

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	cmd.Println()
	reportValidity(cmd, "All settings are valid and saved.")
	return nil
}

// readLine returns one trimmed line. A last line without a newline counts.
func readLine(r *bufio.Reader) string {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(line)
}

// parseChoice returns the 1-based choice in input, or defaultVal when it
// is empty or outside 1..maxVal.
func parseChoice(input string, maxVal, defaultVal int) int {
	v, err := strconv.Atoi(input)
	if err != nil || v < 1 || v > maxVal {
		return defaultVal
	}
	return v
}

// parseDurationChoice returns the positive duration in input, or
// defaultVal.
func parseDurationChoice(input string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
