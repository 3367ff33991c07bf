package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quaid/total-recall/internal/stats"
	"github.com/quaid/total-recall/pkg/models"
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [project] [session-id]",
		Short: "Show projects, sessions, or a session summary without TUI",
		Long: `Show projects and sessions in a non-interactive format.
Without arguments: lists all projects
With a project name: lists the sessions in that project
With a project name and session ID: shows the stored summary for that session`,
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return showProjects(cmd)
	case 1:
		return showSessions(cmd, args[0])
	case 2:
		return showSummary(cmd, args[1])
	default:
		return fmt.Errorf("too many arguments. Usage: total-recall show [project] [session-id]")
	}
}

func scan(cmd *cobra.Command) ([]models.Project, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	snap, err := newStore(cfg).Scan(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	for _, warning := range snap.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped %s: %v\n", warning.Path, warning.Err)
	}
	return snap.Projects, nil
}

func showProjects(cmd *cobra.Command) error {
	projects, err := scan(cmd)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No projects found")
		return nil
	}

	fmt.Println("Projects:")
	fmt.Println("=========")
	for i, project := range projects {
		fmt.Printf("%d. %s\n", i+1, project.Name)
		fmt.Printf("   Path: %s\n", project.Path)
		fmt.Printf("   Sessions: %d (%d messages)\n", project.SessionCount, project.TotalMessages)
		if !project.LastActivity.IsZero() {
			fmt.Printf("   Last Activity: %s\n", project.LastActivity.Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}
	return nil
}

func showSessions(cmd *cobra.Command, projectName string) error {
	projects, err := scan(cmd)
	if err != nil {
		return err
	}

	var project *models.Project
	for i := range projects {
		if projects[i].Name == projectName || projects[i].Path == projectName {
			project = &projects[i]
			break
		}
	}
	if project == nil {
		return fmt.Errorf("project not found: %s", projectName)
	}

	if len(project.Sessions) == 0 {
		fmt.Printf("No sessions in %s\n", project.Name)
		return nil
	}

	fmt.Printf("Sessions in %s:\n", project.Name)
	fmt.Println("================")
	for i, session := range project.Sessions {
		fmt.Printf("%d. %s\n", i+1, session.DisplayName())
		fmt.Printf("   ID: %s\n", session.ID)
		fmt.Printf("   Messages: %d (%s)\n", session.MessageCount, session.DurationString())
		if !session.LastMessage.IsZero() {
			fmt.Printf("   Last Message: %s\n", session.LastMessage.Format("2006-01-02 15:04"))
		}
		if session.Preview != "" {
			fmt.Printf("   %s\n", strings.ReplaceAll(session.Preview, "\n", "\n   "))
		}
		fmt.Println()
	}
	return nil
}

func showSummary(cmd *cobra.Command, sessionID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	summary, err := stats.SummaryForSession(cmd.Context(), cfg.ProjectsDir(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to look up summary: %w", err)
	}
	if summary == "" {
		fmt.Printf("No summary stored for session %s\n", sessionID)
		return nil
	}
	fmt.Println(summary)
	return nil
}
