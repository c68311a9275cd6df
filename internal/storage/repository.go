package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domerrors "github.com/isu-schedule/telebot-go/internal/errors"
	"github.com/isu-schedule/telebot-go/internal/timetable"
)

// DefaultSemester is assigned to users on first contact; most of the year is
// the spring term from the students' point of view.
const DefaultSemester = 2

// UpsertUser creates the user on first contact (with the default semester)
// or refreshes the username on subsequent ones.
func (db *DB) UpsertUser(ctx context.Context, chatID int64, username string) error {
	query := `
		INSERT INTO users (chat_id, username, semester)
		VALUES (?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			username = excluded.username
	`
	if _, err := db.conn.ExecContext(ctx, query, chatID, username, DefaultSemester); err != nil {
		slog.ErrorContext(ctx, "failed to upsert user", "chat_id", chatID, "error", err)
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by chat id. Returns ErrNotFound for unknown chats.
func (db *DB) GetUser(ctx context.Context, chatID int64) (*User, error) {
	query := `SELECT chat_id, COALESCE(username, ''), semester,
		COALESCE(subject_kind, ''), COALESCE(subject_name, '')
		FROM users WHERE chat_id = ?`

	var user User
	var kind string
	err := db.conn.QueryRowContext(ctx, query, chatID).Scan(
		&user.ChatID, &user.Username, &user.Semester, &kind, &user.SubjectName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	user.SubjectKind = timetable.SubjectKind(kind)
	return &user, nil
}

// SetUserSemester updates the semester preference for a chat.
func (db *DB) SetUserSemester(ctx context.Context, chatID int64, semester int) error {
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE users SET semester = ? WHERE chat_id = ?`, semester, chatID); err != nil {
		return fmt.Errorf("set user semester: %w", err)
	}
	return nil
}

// SetUserSubject replaces the chat's subject selection. Setting a group
// drops any previously selected teacher and vice versa.
func (db *DB) SetUserSubject(ctx context.Context, chatID int64, kind timetable.SubjectKind, name string) error {
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE users SET subject_kind = ?, subject_name = ? WHERE chat_id = ?`,
		string(kind), name, chatID); err != nil {
		return fmt.Errorf("set user subject: %w", err)
	}
	return nil
}

// ListSubscribedUsers returns all users with a configured subject, for the
// daily broadcast.
func (db *DB) ListSubscribedUsers(ctx context.Context) ([]User, error) {
	query := `SELECT chat_id, COALESCE(username, ''), semester, subject_kind, subject_name
		FROM users
		WHERE subject_kind IS NOT NULL AND subject_name IS NOT NULL AND subject_name != ''`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query subscribed users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []User
	for rows.Next() {
		var user User
		var kind string
		if err := rows.Scan(&user.ChatID, &user.Username, &user.Semester, &kind, &user.SubjectName); err != nil {
			return nil, fmt.Errorf("scan subscribed user: %w", err)
		}
		user.SubjectKind = timetable.SubjectKind(kind)
		users = append(users, user)
	}
	return users, rows.Err()
}

// SaveSubjectsBatch inserts or updates catalog entries for one kind and
// semester in a single transaction.
func (db *DB) SaveSubjectsBatch(ctx context.Context, subjects []timetable.Subject) error {
	if len(subjects) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin subjects batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO subjects (kind, name, semester, external_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, name, semester) DO UPDATE SET
			external_id = excluded.external_id
	`)
	if err != nil {
		return fmt.Errorf("prepare subjects batch: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, subject := range subjects {
		if _, err := stmt.ExecContext(ctx,
			string(subject.Kind), subject.Name, subject.Semester, subject.ExternalID); err != nil {
			slog.ErrorContext(ctx, "failed to save subject in batch",
				"kind", subject.Kind, "name", subject.Name, "error", err)
			return fmt.Errorf("save subject %s: %w", subject.Name, err)
		}
	}

	return tx.Commit()
}

// GetSubject retrieves one catalog entry by exact name.
func (db *DB) GetSubject(ctx context.Context, kind timetable.SubjectKind, name string, semester int) (*timetable.Subject, error) {
	query := `SELECT kind, name, semester, external_id FROM subjects
		WHERE kind = ? AND name = ? AND semester = ?`

	var subject timetable.Subject
	var k string
	err := db.conn.QueryRowContext(ctx, query, string(kind), name, semester).Scan(
		&k, &subject.Name, &subject.Semester, &subject.ExternalID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query subject: %w", err)
	}
	subject.Kind = timetable.SubjectKind(k)
	return &subject, nil
}

// SearchSubjects finds catalog entries whose name matches the free-text
// query: an exact case-insensitive match wins outright, otherwise substring
// matches are returned for disambiguation.
func (db *DB) SearchSubjects(ctx context.Context, kind timetable.SubjectKind, semester int, query string) ([]timetable.Subject, error) {
	exact := `SELECT kind, name, semester, external_id FROM subjects
		WHERE kind = ? AND semester = ? AND name = ? COLLATE NOCASE`

	subjects, err := db.querySubjects(ctx, exact, string(kind), semester, query)
	if err != nil {
		return nil, err
	}
	if len(subjects) > 0 {
		return subjects, nil
	}

	like := `SELECT kind, name, semester, external_id FROM subjects
		WHERE kind = ? AND semester = ? AND name LIKE ? COLLATE NOCASE
		ORDER BY name LIMIT 20`
	return db.querySubjects(ctx, like, string(kind), semester, "%"+query+"%")
}

func (db *DB) querySubjects(ctx context.Context, query string, args ...any) ([]timetable.Subject, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subjects []timetable.Subject
	for rows.Next() {
		var subject timetable.Subject
		var kind string
		if err := rows.Scan(&kind, &subject.Name, &subject.Semester, &subject.ExternalID); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subject.Kind = timetable.SubjectKind(kind)
		subjects = append(subjects, subject)
	}
	return subjects, rows.Err()
}

// SaveTimetable persists a parsed schedule, stamping last_updated with now.
func (db *DB) SaveTimetable(ctx context.Context, ref SubjectRef, schedule *timetable.Schedule, now time.Time) error {
	payload, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}

	query := `
		INSERT INTO timetables (subject_kind, subject_name, semester, schedule, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(subject_kind, subject_name, semester) DO UPDATE SET
			schedule = excluded.schedule,
			last_updated = excluded.last_updated
	`
	if _, err := db.conn.ExecContext(ctx, query,
		string(ref.Kind), ref.Name, ref.Semester, string(payload), now.Unix()); err != nil {
		slog.ErrorContext(ctx, "failed to save timetable",
			"kind", ref.Kind, "name", ref.Name, "error", err)
		return fmt.Errorf("save timetable: %w", err)
	}
	return nil
}

// GetTimetable retrieves the persisted schedule for a subject.
// Returns ErrNotFound when no schedule has been persisted yet.
func (db *DB) GetTimetable(ctx context.Context, ref SubjectRef) (*TimetableRecord, error) {
	query := `SELECT schedule, last_updated FROM timetables
		WHERE subject_kind = ? AND subject_name = ? AND semester = ?`

	var payload string
	record := TimetableRecord{
		SubjectKind: ref.Kind,
		SubjectName: ref.Name,
		Semester:    ref.Semester,
	}
	err := db.conn.QueryRowContext(ctx, query, string(ref.Kind), ref.Name, ref.Semester).
		Scan(&payload, &record.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query timetable: %w", err)
	}

	var schedule timetable.Schedule
	if err := json.Unmarshal([]byte(payload), &schedule); err != nil {
		return nil, fmt.Errorf("unmarshal schedule: %w", err)
	}
	record.Schedule = &schedule
	return &record, nil
}

// DistinctUserSubjects lists every unique subject selected by at least one
// user, the work list for the schedule refresh job.
func (db *DB) DistinctUserSubjects(ctx context.Context) ([]SubjectRef, error) {
	query := `SELECT DISTINCT subject_kind, subject_name, semester FROM users
		WHERE subject_kind IS NOT NULL AND subject_name IS NOT NULL AND subject_name != ''`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query distinct subjects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []SubjectRef
	for rows.Next() {
		var ref SubjectRef
		var kind string
		if err := rows.Scan(&kind, &ref.Name, &ref.Semester); err != nil {
			return nil, fmt.Errorf("scan distinct subject: %w", err)
		}
		ref.Kind = timetable.SubjectKind(kind)
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// CountSubjects returns catalog sizes per kind, for the readiness endpoint.
func (db *DB) CountSubjects(ctx context.Context, kind timetable.SubjectKind) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subjects WHERE kind = ?`, string(kind)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subjects: %w", err)
	}
	return count, nil
}
