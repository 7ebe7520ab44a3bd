package main

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	// One season-long ladder, already in its open window.
	start := time.Now().AddDate(0, 0, -30)
	end := time.Now().AddDate(0, 0, 60)
	res, err := db.Exec(`
		INSERT INTO ladders (name, start_date, end_date, distance_penalty_on,
			weeks_for_borrowed_points, weeks_for_borrowed_points_left, passcode)
		VALUES (?, ?, ?, TRUE, 8, 8, 'seeded')`,
		"Seeded Ladder", start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		log.Fatalf("Failed to insert ladder: %s", err)
	}
	ladderID, _ := res.LastInsertId()

	const numPlayers = 16
	userIDs := make([]string, 0, numPlayers)
	for i := 0; i < numPlayers; i++ {
		id := uuid.NewString()
		userIDs = append(userIDs, id)
		_, err := db.Exec(
			"INSERT OR IGNORE INTO users (id, name, email, admin) VALUES (?, ?, ?, ?)",
			id, fmt.Sprintf("Seeder Player %d", i+1), fmt.Sprintf("seed-%d@example.com", i+1), i == 0)
		if err != nil {
			log.Fatalf("Failed to insert dummy user: %s", err)
		}
		// Initial order seeds the borrowed-points allowance.
		rank := numPlayers - i
		_, err = db.Exec(
			"INSERT OR IGNORE INTO players (ladder_id, user_id, earned_points, borrowed_points, order_hint) VALUES (?, ?, 0, ?, ?)",
			ladderID, id, rank*8, rank)
		if err != nil {
			log.Fatalf("Failed to insert dummy player: %s", err)
		}
	}
	log.Info("Ensured dummy users and players exist.")

	const batchSize = 100 // Insert 100 matches at a time
	const numMatches = 10000

	log.Info("Preparing to insert dummy matches...", "total", numMatches, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*12) // 12 columns per match

	for i := 0; i < numMatches; i++ {
		matchDate := time.Now().Add(-time.Duration(rand.Intn(30*24)) * time.Hour)
		winner := userIDs[rand.Intn(numPlayers)]
		loser := userIDs[rand.Intn(numPlayers)]
		for loser == winner {
			loser = userIDs[rand.Intn(numPlayers)]
		}

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			ladderID,
			matchDate.Format(time.RFC3339),
			winner,
			loser,
			6, rand.Intn(5),
			6, rand.Intn(5),
			nil, // winner_set3_score
			nil, // loser_set3_score
			39,
			12,
		)

		if (i+1)%batchSize == 0 || (i+1) == numMatches {
			stmt := fmt.Sprintf(`
				INSERT INTO matches (ladder_id, match_date, winner_id, loser_id,
					winner_set1_score, loser_set1_score, winner_set2_score, loser_set2_score,
					winner_set3_score, loser_set3_score, winner_points, loser_points)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]interface{}, 0, batchSize*12)
			log.Info("Inserted batch", "completed", i+1, "total", numMatches)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy matches.", "duration", duration)
}
