package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"oppmap-go/internal/app"
	"oppmap-go/internal/config"
	"oppmap-go/internal/export"
	"oppmap-go/internal/model"
	"oppmap-go/internal/opp"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, creating it with defaults on first
// run. An unreadable config falls back to defaults with a warning; the
// corrupt file is left in place.
func loadConfig() (*config.Config, string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults["config_path"], config.Default(defaults["base_dir"]))
	if err != nil {
		if !errors.Is(err, config.ErrConfigRead) {
			return nil, "", fmt.Errorf("reading config: %w", err)
		}
		fmt.Fprintf(os.Stderr, "warning: %v; using defaults\n", err)
	}

	return cfg, defaults["config_path"], nil
}

// newApp loads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Add", "Restore").
func newApp(operation string) (*app.App, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "oppmap",
	Short: "Opportunity repository and prioritization heatmap",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.Default(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Data Dir: %s\n", cfg.Storage.DataDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Language:          %s\n", cfg.Language)
		fmt.Printf("Theme:             %s\n", cfg.Theme)
		fmt.Printf("Backup Frequency:  every %d change(s)\n", cfg.BackupFrequency)
		fmt.Printf("Custom Areas:      %s\n", strings.Join(cfg.CustomAreas, ", "))
		fmt.Printf("Custom Topics:     %s\n", strings.Join(cfg.CustomTopics, ", "))
		fmt.Printf("Data Dir:          %s\n", cfg.Storage.DataDir)
		fmt.Printf("Backups Dir:       %s\n", cfg.Backups.Dir)
		fmt.Printf("Log Dir:           %s\n", cfg.LogDir)
		fmt.Printf("Encryption:        %s\n", cfg.Encryption.Type)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Update a configuration value",
	Long: `Update a configuration value and save the config file.

Supported keys: language, theme, backup_frequency, custom_areas,
custom_topics. List values are comma-separated.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		key, value := args[0], args[1]
		switch key {
		case "language":
			cfg.Language = value
		case "theme":
			cfg.Theme = value
		case "backup_frequency":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return fmt.Errorf("backup_frequency must be a positive integer, got %q", value)
			}
			cfg.BackupFrequency = n
		case "custom_areas":
			cfg.CustomAreas = splitList(value)
		case "custom_topics":
			cfg.CustomTopics = splitList(value)
		default:
			return fmt.Errorf("unknown config key: %q", key)
		}

		if err := config.Save(path, cfg); err != nil {
			return err
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List opportunities ranked by score",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		records := criteriaFromFlags(cmd).Apply(a.Records())
		if len(records) == 0 {
			fmt.Println("No opportunities recorded.")
			return nil
		}

		printRecords(records)
		printStats(records)
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add an opportunity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := fieldsFromFlags(cmd)
		if err != nil {
			return err
		}
		f.Opportunity = args[0]

		a, err := newApp("Add")
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.Create(f)
		if err != nil {
			return err
		}

		fmt.Printf("Added %q (score %s, %d total)\n",
			f.Opportunity, formatScore(opp.Score(f.Impact, f.Complexity)), len(records))
		return nil
	},
}

// update command
var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update an opportunity",
	Long: `Update an opportunity by its current rank ID. Only the flags you
pass are changed; everything else keeps its current value. Ranks are
recomputed, so the record may end up under a different ID.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID: %q", args[0])
		}

		a, err := newApp("Update")
		if err != nil {
			return err
		}
		defer a.Close()

		current, found := recordByID(a.Records(), id)
		if !found {
			return fmt.Errorf("no opportunity with ID %d", id)
		}

		f := opp.Fields{
			Opportunity: current.Opportunity,
			RelatedTo:   current.RelatedTo,
			Area:        current.Area,
			Topic:       current.Topic,
			Impact:      current.Impact,
			Complexity:  current.Complexity,
		}
		if err := mergeChangedFlags(cmd, &f); err != nil {
			return err
		}

		if _, err := a.Update(id, f); err != nil {
			return err
		}

		fmt.Printf("Updated %q\n", f.Opportunity)
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an opportunity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID: %q", args[0])
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(fmt.Sprintf("Delete opportunity %d? A backup is taken first.", id)) {
			fmt.Println("Aborted.")
			return nil
		}

		a, err := newApp("Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.Delete(id)
		if err != nil {
			return err
		}

		fmt.Printf("Deleted opportunity %d (%d remaining)\n", id, len(records))
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export opportunities to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		if !validFormat(format) {
			return fmt.Errorf("unknown format %q (supported: %s)", format, strings.Join(export.Formats, ", "))
		}

		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		if out == "" {
			out = a.ExportFilename(format, encrypt)
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()

		count, err := a.Export(criteriaFromFlags(cmd), format, f, encrypt)
		if err != nil {
			os.Remove(out)
			return err
		}

		fmt.Printf("Exported %d record(s) to %s\n", count, out)
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage snapshots",
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("BackupList")
		if err != nil {
			return err
		}
		defer a.Close()

		infos, err := a.Snapshots()
		if err != nil {
			return err
		}

		if len(infos) == 0 {
			fmt.Println("No snapshots stored.")
			return nil
		}

		for _, info := range infos {
			fmt.Printf("%s  %s\n", info.ModTime.Format("2006-01-02 15:04:05"), info.Name)
		}
		return nil
	},
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the current data now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("BackupCreate")
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.BackupNow()
		if err != nil {
			return err
		}

		fmt.Printf("Snapshot written: %s\n", name)
		return nil
	},
}

var backupExportCmd = &cobra.Command{
	Use:   "export NAME [FILE]",
	Short: "Copy a stored snapshot to a file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := name
		if len(args) > 1 {
			out = args[1]
		}

		a, err := newApp("BackupExport")
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()

		if err := a.CopySnapshot(name, f); err != nil {
			os.Remove(out)
			return err
		}

		fmt.Printf("Snapshot copied to %s\n", out)
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore NAME",
	Short: "Restore a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("BackupRestore")
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.RestoreSnapshot(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Restored %d record(s) from %s\n", len(records), args[0])
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Restore from an uploaded file",
	Long: `Replace the current data with the contents of FILE. The file must
carry every expected column. Files ending in .age are decrypted with
the private key; you will be prompted for the key passphrase.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		var passphrase string
		if strings.HasSuffix(path, ".age") {
			p, err := promptPassphrase("Key passphrase: ")
			if err != nil {
				return err
			}
			passphrase = p
		}

		a, err := newApp("Restore")
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.RestoreFile(path, passphrase)
		if err != nil {
			var mismatch *opp.SchemaMismatchError
			if errors.As(err, &mismatch) {
				return fmt.Errorf("%s: the current data was not touched", mismatch)
			}
			return err
		}

		fmt.Printf("Restored %d record(s) from %s\n", len(records), path)
		return nil
	},
}

// reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all data after a final backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm("Delete ALL data? A final backup is taken first.") {
			fmt.Println("Aborted.")
			return nil
		}

		a, err := newApp("Reset")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Reset(); err != nil {
			return err
		}

		fmt.Println("All data deleted.")
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, e := range entries {
			duration := ""
			if e.FinishedAt != nil {
				d := e.FinishedAt.Sub(e.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-7s  %s  %s\n",
				e.ID,
				e.Operation,
				e.StartedAt.Format("2006-01-02 15:04:05"),
				e.Status,
				duration,
				e.Detail,
			)
		}
		return nil
	},
}

// crypt command
var cryptCmd = &cobra.Command{
	Use:   "crypt",
	Short: "Manage export encryption keys",
}

var cryptInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate an encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := promptPassphrase("New key passphrase: ")
		if err != nil {
			return err
		}
		again, err := promptPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != again {
			return fmt.Errorf("passphrases do not match")
		}

		a, err := newApp("CryptInit")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetupEncryption(passphrase); err != nil {
			return err
		}

		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// addFilterFlags registers the shared filter flags on a command.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("type", nil, "Filter by type (enabler, lever)")
	cmd.Flags().StringSlice("area", nil, "Filter by area")
	cmd.Flags().StringSlice("status", nil, "Filter by status")
}

// addFieldFlags registers the record field flags shared by add and update.
func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("related", "", "Related opportunity or initiative")
	cmd.Flags().String("area", "", "Business area")
	cmd.Flags().String("type", "", "Type: enabler or lever")
	cmd.Flags().String("topic", "", "Topic")
	cmd.Flags().Float64("impact", 5.0, "Impact, 0 to 10")
	cmd.Flags().Float64("complexity", 5.0, "Complexity, 0 to 10")
	cmd.Flags().String("status", "", "Status")
}

func criteriaFromFlags(cmd *cobra.Command) opp.Criteria {
	types, _ := cmd.Flags().GetStringSlice("type")
	areas, _ := cmd.Flags().GetStringSlice("area")
	statuses, _ := cmd.Flags().GetStringSlice("status")
	return opp.Criteria{Types: types, Areas: areas, Statuses: statuses}
}

func fieldsFromFlags(cmd *cobra.Command) (opp.Fields, error) {
	var f opp.Fields
	f.RelatedTo, _ = cmd.Flags().GetString("related")
	f.Area, _ = cmd.Flags().GetString("area")
	f.Topic, _ = cmd.Flags().GetString("topic")
	f.Impact, _ = cmd.Flags().GetFloat64("impact")
	f.Complexity, _ = cmd.Flags().GetFloat64("complexity")

	typeFlag, _ := cmd.Flags().GetString("type")
	if typeFlag != "" {
		t, err := parseType(typeFlag)
		if err != nil {
			return f, err
		}
		f.Type = t
	}

	statusFlag, _ := cmd.Flags().GetString("status")
	if statusFlag != "" {
		s, err := parseStatus(statusFlag)
		if err != nil {
			return f, err
		}
		f.Status = s
	}

	return f, nil
}

// mergeChangedFlags overwrites only the fields whose flags were set.
func mergeChangedFlags(cmd *cobra.Command, f *opp.Fields) error {
	if cmd.Flags().Changed("name") {
		f.Opportunity, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("related") {
		f.RelatedTo, _ = cmd.Flags().GetString("related")
	}
	if cmd.Flags().Changed("area") {
		f.Area, _ = cmd.Flags().GetString("area")
	}
	if cmd.Flags().Changed("topic") {
		f.Topic, _ = cmd.Flags().GetString("topic")
	}
	if cmd.Flags().Changed("impact") {
		f.Impact, _ = cmd.Flags().GetFloat64("impact")
	}
	if cmd.Flags().Changed("complexity") {
		f.Complexity, _ = cmd.Flags().GetFloat64("complexity")
	}
	if cmd.Flags().Changed("type") {
		typeFlag, _ := cmd.Flags().GetString("type")
		t, err := parseType(typeFlag)
		if err != nil {
			return err
		}
		f.Type = t
	}
	if cmd.Flags().Changed("status") {
		statusFlag, _ := cmd.Flags().GetString("status")
		s, err := parseStatus(statusFlag)
		if err != nil {
			return err
		}
		f.Status = s
	}
	return nil
}

func parseType(s string) (model.Type, error) {
	for _, t := range model.Types {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown type %q (supported: %s)", s, joinTypes())
}

func parseStatus(s string) (model.Status, error) {
	for _, st := range model.Statuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q (supported: %s)", s, joinStatuses())
}

func joinTypes() string {
	names := make([]string, len(model.Types))
	for i, t := range model.Types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func joinStatuses() string {
	names := make([]string, len(model.Statuses))
	for i, s := range model.Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func recordByID(records []model.Opportunity, id int) (model.Opportunity, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return model.Opportunity{}, false
}

func printRecords(records []model.Opportunity) {
	fmt.Printf("%-4s %-6s %-40s %-8s %-15s %s\n", "ID", "Score", "Opportunity", "Type", "Status", "Area")
	for _, r := range records {
		name := r.Opportunity
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Printf("%-4d %-6s %-40s %-8s %-15s %s\n",
			r.ID, formatScore(r.Score), name, r.Type, r.Status, r.Area)
	}
}

// printStats writes the quick-stats footer: totals, average score, and
// a per-status breakdown.
func printStats(records []model.Opportunity) {
	var sum float64
	byStatus := map[model.Status]int{}
	for _, r := range records {
		sum += r.Score
		byStatus[r.Status]++
	}

	fmt.Printf("\n%d opportunity(ies), average score %.1f\n", len(records), sum/float64(len(records)))
	for _, s := range model.Statuses {
		if byStatus[s] > 0 {
			fmt.Printf("  %-15s %d\n", s, byStatus[s])
		}
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func validFormat(format string) bool {
	for _, f := range export.Formats {
		if f == format {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// confirm asks the user a yes/no question on the terminal. Returns false
// when stdin is not a terminal.
func confirm(prompt string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "refusing to proceed without --yes on a non-interactive stdin")
		return false
	}
	fmt.Printf("%s [y/N]: ", prompt)
	var answer string
	fmt.Scanln(&answer)
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}

// promptPassphrase reads a passphrase from the terminal without echo.
func promptPassphrase(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("cannot prompt for passphrase: stdin is not a terminal")
	}
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configSetCmd)

	// backup subcommands
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupRestoreCmd)

	// crypt subcommands
	cryptCmd.AddCommand(cryptInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
	addFilterFlags(listCmd)
	rootCmd.AddCommand(addCmd)
	addFieldFlags(addCmd)
	rootCmd.AddCommand(updateCmd)
	addFieldFlags(updateCmd)
	updateCmd.Flags().String("name", "", "Opportunity description")
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(exportCmd)
	addFilterFlags(exportCmd)
	exportCmd.Flags().StringP("format", "f", "csv", "Export format: csv, json or xlsx")
	exportCmd.Flags().StringP("out", "o", "", "Output file (default: opportunities_<timestamp>.<format>)")
	exportCmd.Flags().Bool("encrypt", false, "Encrypt the export with the configured public key")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(cryptCmd)
}
