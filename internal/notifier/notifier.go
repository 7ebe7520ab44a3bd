package notifier

import (
	"github.com/opencourt/ladderd/internal/ladder"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For accepted match results
	SendMatchReported(match *ladder.Match, dryRun bool) error
	// For posting the current table to the channel
	SendStandings(l ladder.Ladder, players []ladder.Player, dryRun bool) error

	// For formatting responses for slash commands
	FormatStandingsResponse(l ladder.Ladder, players []ladder.Player) (any, error)
	FormatLadderNotFoundResponse(query string) (any, error)
}
