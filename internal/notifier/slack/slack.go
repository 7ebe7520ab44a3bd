package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/opencourt/ladderd/internal/ladder"
	"github.com/opencourt/ladderd/internal/metrics"
	"github.com/opencourt/ladderd/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendMatchReported(match *ladder.Match, dryRun bool) error {
	msg := s.formatMatchReported(match)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

func (s *Notifier) SendStandings(l ladder.Ladder, players []ladder.Player, dryRun bool) error {
	msg := s.formatStandings(l, players)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatStandingsResponse formats a standings message for a slash command response.
func (s *Notifier) FormatStandingsResponse(l ladder.Ladder, players []ladder.Player) (any, error) {
	return s.formatStandings(l, players), nil
}

// FormatLadderNotFoundResponse formats a message for when no ladder matches the query.
func (s *Notifier) FormatLadderNotFoundResponse(query string) (any, error) {
	text := fmt.Sprintf("Sorry, I couldn't find a ladder matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	), nil
}

// formatMatchReported creates the Slack message for an accepted match result using Block Kit.
func (s *Notifier) formatMatchReported(match *ladder.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🎾 Match reported! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	winnerName := match.WinnerID
	loserName := match.LoserID
	if match.Winner != nil && match.Winner.User.Name != "" {
		winnerName = match.Winner.User.Name
	}
	if match.Loser != nil && match.Loser.User.Name != "" {
		loserName = match.Loser.User.Name
	}

	detailsText := fmt.Sprintf("%s def. %s\n%s", winnerName, loserName, formatScoreline(match))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	// Context (points awarded)
	pointsText := fmt.Sprintf("%s earned %d points, %s earned %d", winnerName, match.WinnerPoints, loserName, match.LoserPoints)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", pointsText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatScoreline renders set scores as "6-4 3-6 10-8".
func formatScoreline(match *ladder.Match) string {
	sets := []string{
		fmt.Sprintf("%d-%d", match.WinnerSet1, match.LoserSet1),
		fmt.Sprintf("%d-%d", match.WinnerSet2, match.LoserSet2),
	}
	if match.HasThirdSet() {
		sets = append(sets, fmt.Sprintf("%d-%d", *match.WinnerSet3, *match.LoserSet3))
	}
	return strings.Join(sets, " ")
}

// formatStandings creates a Slack message to display the current ladder table.
func (s *Notifier) formatStandings(l ladder.Ladder, players []ladder.Player) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 %s standings 🏆", l.Name), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players yet. Go join the ladder!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, player := range players {
		var medal string
		switch player.Ranking {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s\n> *Points*: %d (earned %d, borrowed %d) | *W-L*: %d-%d",
			player.Ranking,
			medal,
			player.User.Name,
			player.Score,
			player.EarnedPoints,
			player.BorrowedPoints,
			player.Wins,
			player.Losses,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
