package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/opencourt/ladderd/internal/ladder"
	"github.com/opencourt/ladderd/internal/pubsub"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// respondJSON writes a JSON response body.
func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// respondError maps domain errors to their HTTP status and hides everything
// else behind a 500.
func respondError(w http.ResponseWriter, err error) {
	var domainErr *ladder.Error
	if errors.As(err, &domainErr) {
		http.Error(w, domainErr.Message, domainErr.Status())
		return
	}
	log.Error("Request failed", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// pathID parses a numeric path segment.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, ladder.Errorf(ladder.KindInvalidInput, "Invalid %s", name)
	}
	return id, nil
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Service.Stats()
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.Service.Login(bearerToken(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, user)
	}
}

func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.Service.GetUser(principalFromContext(r), r.PathValue("id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, user)
	}
}

func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u ladder.User
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		u.ID = r.PathValue("id")

		updated, err := s.Service.UpdateUser(principalFromContext(r), u)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) ListLaddersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ladders, err := s.Service.GetLadders(principalFromContext(r))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, ladders)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ladderID, err := pathID(r, "id")
		if err != nil {
			respondError(w, err)
			return
		}
		players, err := s.Service.GetPlayers(principalFromContext(r), ladderID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, players)
	}
}

func (s *Server) JoinLadderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ladderID, err := pathID(r, "id")
		if err != nil {
			respondError(w, err)
			return
		}
		var body struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := s.Service.JoinLadder(principalFromContext(r), ladderID, body.Code); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}
}

func (s *Server) UpdatePlayerOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ladderID, err := pathID(r, "id")
		if err != nil {
			respondError(w, err)
			return
		}
		var body struct {
			UserIDs            []string `json:"user_ids"`
			SeedBorrowedPoints bool     `json:"seed_borrowed_points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := s.Service.UpdatePlayerOrder(principalFromContext(r), ladderID, body.UserIDs, body.SeedBorrowedPoints); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) UpdatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ladderID, err := pathID(r, "id")
		if err != nil {
			respondError(w, err)
			return
		}
		var body struct {
			BorrowedPoints int `json:"borrowed_points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := s.Service.UpdatePlayer(principalFromContext(r), ladderID, r.PathValue("userID"), body.BorrowedPoints); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ladderID, err := pathID(r, "id")
		if err != nil {
			respondError(w, err)
			return
		}
		matches, err := s.Service.GetMatches(principalFromContext(r), ladderID, r.URL.Query().Get("user_id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) ReportMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ladderID, err := pathID(r, "id")
		if err != nil {
			respondError(w, err)
			return
		}
		var m ladder.Match
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		m.LadderID = ladderID

		created, err := s.Service.ReportMatch(principalFromContext(r), m)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) UpdateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := pathID(r, "id")
		if err != nil {
			respondError(w, err)
			return
		}
		var scores ladder.Match
		if err := json.NewDecoder(r.Body).Decode(&scores); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		updated, err := s.Service.UpdateMatchScores(principalFromContext(r), matchID, scores)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) DeleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID, err := pathID(r, "id")
		if err != nil {
			respondError(w, err)
			return
		}
		if err := s.Service.DeleteMatch(principalFromContext(r), matchID); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DecayHandler is triggered by the infrastructure scheduler. It is
// idempotent, so an over-eager cron does no harm.
func (s *Server) DecayHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Service.DecayBorrowedPoints(); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Decay completed.")
	}
}

// readPushEnvelope unwraps a pub/sub push delivery: an outer JSON envelope
// carrying the base64-encoded MessagePack payload. Errors are written to w.
func readPushEnvelope(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read request body", "error", err)
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return nil, false
	}
	log.Debug("Received push message", "body", string(bodyBytes))
	// Define a small struct to decode the incoming JSON's `data` field
	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}

	// Parse the outer JSON to get `data`
	if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
		log.Error("Failed to unmarshal wrapper JSON", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return nil, false
	}
	// Decode base64 to raw MessagePack bytes
	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		log.Error("Failed to decode base64 data", "error", err)
		http.Error(w, "Invalid base64 data", http.StatusBadRequest)
		return nil, false
	}
	return rawData, true
}

// MatchReportedEventHandler consumes the pub/sub push subscription for
// accepted match results and fans out the Slack notification.
func (s *Server) MatchReportedEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, ok := readPushEnvelope(w, r)
		if !ok {
			return
		}
		isDryRun := isDryRunFromContext(r)
		match := ladder.Match{}
		if err := s.pubsub.ProcessMessage(rawData, &match); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		if err := s.Notifier.SendMatchReported(&match, isDryRun); err != nil {
			log.Error("Failed to send match notification", "error", err, "matchID", match.ID)
			http.Error(w, "Failed to send notification", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// PointsDecayedEventHandler consumes the decay push subscription and posts
// the ladder's refreshed standings to the channel.
func (s *Server) PointsDecayedEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawData, ok := readPushEnvelope(w, r)
		if !ok {
			return
		}
		event := pubsub.PointsDecayedEvent{}
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}

		l, players, err := s.Service.StandingsForLadder(event.LadderID)
		if err != nil {
			respondError(w, err)
			return
		}
		if err := s.Notifier.SendStandings(*l, players, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send standings", "error", err, "ladderID", event.LadderID)
			http.Error(w, "Failed to send notification", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// StandingsCommandHandler returns a handler for the /standings Slack command.
// Requests are authenticated with Slack's signing secret rather than a user
// token.
func (s *Server) StandingsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}

		if s.Cfg.Slack.SigningSecret != "" {
			verifier, err := slack.NewSecretsVerifier(r.Header, s.Cfg.Slack.SigningSecret)
			if err != nil {
				http.Error(w, "Invalid Slack signature", http.StatusUnauthorized)
				return
			}
			if _, err := verifier.Write(body); err != nil {
				http.Error(w, "Failed to verify request", http.StatusInternalServerError)
				return
			}
			if err := verifier.Ensure(); err != nil {
				log.Warn("Rejected Slack command with bad signature")
				http.Error(w, "Invalid Slack signature", http.StatusUnauthorized)
				return
			}
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		query := r.FormValue("text")
		log.Info("Received standings command", "query", query)

		l, players, err := s.Service.Standings(query)
		if err != nil {
			respondError(w, err)
			return
		}

		var msg any
		if l == nil {
			msg, err = s.Notifier.FormatLadderNotFoundResponse(query)
		} else {
			msg, err = s.Notifier.FormatStandingsResponse(*l, players)
		}
		if err != nil {
			http.Error(w, "Failed to format standings", http.StatusInternalServerError)
			log.Error("Failed to format standings", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}
