package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"attentionos/pkg/config"
)

// NewBackupCommand creates the backup command
func NewBackupCommand(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a consistent copy of the SQLite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if cfg.Source.Kind != config.SourceSQLite {
				return fmt.Errorf("backup needs the sqlite source, got %q", cfg.Source.Kind)
			}

			a, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			path := output
			if path == "" {
				name := fmt.Sprintf("attentionos_%s.db", time.Now().Format("20060102_150405"))
				path = filepath.Join(filepath.Dir(cfg.Database.Path), "backups", name)
			}

			if err := a.DB.Backup(commandContext(cmd), path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "backup file path (default: backups/ next to the database)")
	return cmd
}
