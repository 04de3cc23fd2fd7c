package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"attentionos/internal/analytics"
	"attentionos/internal/analytics/models"
	"attentionos/pkg/config"
)

// NewImportCommand creates the import command
func NewImportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a JSON array of session records into the SQLite store",
		Long: `Import reads session records in the tracking backend's JSON format.
Invalid records are reported and skipped. Records with an id replace the
stored session with the same id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			var records []models.SessionRecord
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if cfg.Source.Kind != config.SourceSQLite {
				return fmt.Errorf("import needs the sqlite source, got %q", cfg.Source.Kind)
			}

			a, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			sessions, rejected := analytics.NewValidator(a.Service.Engine().Location()).FilterValid(records)
			for _, r := range rejected {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipping record %d: %s\n", r.Record.ID, r.Reason)
			}

			valid := make([]models.SessionRecord, len(sessions))
			for i, s := range sessions {
				valid[i] = s.Record()
			}

			n, err := a.Repo.Session.ImportSessions(commandContext(cmd), valid)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d sessions (%d skipped)\n", n, len(rejected))
			return nil
		},
	}
}
