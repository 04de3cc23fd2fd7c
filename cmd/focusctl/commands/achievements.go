package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"attentionos/internal/analytics/models"
)

// NewAchievementsCommand creates the achievements command
func NewAchievementsCommand(opts *options) *cobra.Command {
	var unlockedOnly bool

	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "List the achievement catalog and what has been unlocked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			unlocked, err := a.Service.Unlocked(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to evaluate achievements: %w", err)
			}

			catalog := a.Service.Engine().Catalog().Definitions()
			return renderAchievements(cmd.OutOrStdout(), catalog, unlocked, unlockedOnly)
		},
	}

	cmd.Flags().BoolVar(&unlockedOnly, "unlocked", false, "only show unlocked achievements")
	return cmd
}

func renderAchievements(w io.Writer, catalog []models.AchievementDefinition, unlocked []models.UnlockedAchievement, unlockedOnly bool) error {
	byID := make(map[string]models.UnlockedAchievement, len(unlocked))
	for _, u := range unlocked {
		byID[u.ID] = u
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Achievements (%d/%d unlocked)", len(unlocked), len(catalog))))

	for _, def := range catalog {
		u, ok := byID[def.ID]
		if unlockedOnly && !ok {
			continue
		}

		if !ok {
			fmt.Fprintf(w, "  %s %s  %s\n", mutedStyle.Render("·"), mutedStyle.Render(def.Name), mutedStyle.Render(def.Description))
			continue
		}

		since := ""
		if u.FirstUnlockedAt != nil {
			since = mutedStyle.Render(" since " + u.FirstUnlockedAt.Local().Format("2006-01-02"))
		}
		fmt.Fprintf(w, "  %s %s  %s%s\n", def.Badge, titleStyle.Render(def.Name), def.Description, since)
	}

	return nil
}
