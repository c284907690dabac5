package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"examwise/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrSessionNotFound is returned when a test session id does not exist
var ErrSessionNotFound = errors.New("test session not found")

// CreateTestSessionParams holds the values the core supplies at finish time
type CreateTestSessionParams struct {
	UserID          uuid.UUID
	TestName        string
	StartTime       time.Time
	EndTime         time.Time
	ScorePercentage float64
}

// CreateTestSession stores one finished session and returns its identifier
func (db *DB) CreateTestSession(ctx context.Context, params CreateTestSessionParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO test_sessions (user_id, test_name, start_time, end_time, score_percentage)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		params.UserID, params.TestName, params.StartTime, params.EndTime, params.ScorePercentage,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create test session: %w", err)
	}
	return id, nil
}

// CreateAnswerRecords stores the per-question records of a finished session,
// one row per question in question order, batched into a single round trip.
func (db *DB) CreateAnswerRecords(ctx context.Context, sessionID uuid.UUID, records []models.AnswerRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for position, record := range records {
		batch.Queue(
			`INSERT INTO answer_records (session_id, position, question, options, correct_answer, user_answer, answered, is_correct)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sessionID, position, record.Question, record.Options,
			record.CorrectAnswer, record.UserAnswer, record.Answered, record.IsCorrect,
		)
	}

	results := db.Pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to create answer records for session %s: %w", sessionID, err)
		}
	}
	return nil
}

// ListTestSessionsByUser returns a user's sessions ordered by end time,
// most recent first.
func (db *DB) ListTestSessionsByUser(ctx context.Context, userID uuid.UUID) ([]models.TestSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, test_name, start_time, end_time, score_percentage
		 FROM test_sessions
		 WHERE user_id = $1
		 ORDER BY end_time DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list test sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.TestSession{}
	for rows.Next() {
		var s models.TestSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.TestName, &s.StartTime, &s.EndTime, &s.ScorePercentage); err != nil {
			return nil, fmt.Errorf("failed to scan test session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetTestSession reads a single session by identifier
func (db *DB) GetTestSession(ctx context.Context, id uuid.UUID) (models.TestSession, error) {
	var s models.TestSession
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, test_name, start_time, end_time, score_percentage
		 FROM test_sessions
		 WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.TestName, &s.StartTime, &s.EndTime, &s.ScorePercentage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TestSession{}, ErrSessionNotFound
		}
		return models.TestSession{}, fmt.Errorf("failed to get test session %s: %w", id, err)
	}
	return s, nil
}

// ListAnswerRecordsBySession reads a session's answer records in question order
func (db *DB) ListAnswerRecordsBySession(ctx context.Context, sessionID uuid.UUID) ([]models.AnswerRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT question, options, correct_answer, user_answer, answered, is_correct
		 FROM answer_records
		 WHERE session_id = $1
		 ORDER BY position ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list answer records: %w", err)
	}
	defer rows.Close()

	records := []models.AnswerRecord{}
	for rows.Next() {
		var r models.AnswerRecord
		if err := rows.Scan(&r.Question, &r.Options, &r.CorrectAnswer, &r.UserAnswer, &r.Answered, &r.IsCorrect); err != nil {
			return nil, fmt.Errorf("failed to scan answer record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// UpsertUserParams identifies an authenticated user by their Google account
type UpsertUserParams struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// UpsertUser creates or refreshes a user row at login time and returns the
// internal identifier.
func (db *DB) UpsertUser(ctx context.Context, params UpsertUserParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO users (google_id, email, name, picture)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (google_id)
		 DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name, picture = EXCLUDED.picture
		 RETURNING id`,
		params.GoogleID, params.Email, params.Name, params.Picture,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return id, nil
}
