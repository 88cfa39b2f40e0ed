package tracker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed storage for profiles and daily records.
type Store struct {
	db  *sql.DB
	loc *time.Location
}

type Option func(*Store)

// WithLocation sets the time zone that decides which day an entry belongs
// to. It must match the zone reminders are scheduled in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewStore opens (or creates) the SQLite database at dbPath and
// ensures the schema exists.
func NewStore(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Location returns the zone days are counted in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Date returns the record key of the day t falls on in the store's zone.
func (s *Store) Date(t time.Time) string {
	return t.In(s.loc).Format(DateLayout)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id              TEXT    PRIMARY KEY,
		name            TEXT    NOT NULL,
		email           TEXT    NOT NULL DEFAULT '',
		age             INTEGER NOT NULL,
		height          REAL    NOT NULL,
		weight          REAL    NOT NULL,
		goal            TEXT    NOT NULL DEFAULT 'maintenance',
		activity_level  TEXT    NOT NULL DEFAULT 'moderate',
		target_calories INTEGER NOT NULL,
		water_intake    REAL    NOT NULL,
		active          INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT    NOT NULL,
		last_active     TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS habits (
		id         TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		name       TEXT NOT NULL,
		kind       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_records (
		profile_id  TEXT NOT NULL,
		date        TEXT NOT NULL,
		water_drunk REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (profile_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS food_entries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id TEXT    NOT NULL,
		date       TEXT    NOT NULL,
		name       TEXT    NOT NULL,
		calories   INTEGER NOT NULL,
		quantity   REAL    NOT NULL DEFAULT 0,
		logged_at  TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS exercise_entries (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		profile_id      TEXT    NOT NULL,
		date            TEXT    NOT NULL,
		name            TEXT    NOT NULL,
		duration        INTEGER NOT NULL DEFAULT 0,
		calories_burned INTEGER NOT NULL,
		logged_at       TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS habit_completions (
		profile_id TEXT NOT NULL,
		date       TEXT NOT NULL,
		habit_id   TEXT NOT NULL,
		PRIMARY KEY (profile_id, date, habit_id)
	)`,
}

func createTables(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const profileColumns = `id, name, email, age, height, weight, goal, activity_level,
	target_calories, water_intake, active, created_at, last_active`

// CreateProfile validates in, derives the calorie and water targets, stores
// the profile as the active one and initializes today's record.
func (s *Store) CreateProfile(ctx context.Context, in ProfileInput) (*Profile, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := Profile{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Email:          in.Email,
		Age:            in.Age,
		Height:         in.Height,
		Weight:         in.Weight,
		Goal:           in.Goal,
		ActivityLevel:  in.ActivityLevel,
		TargetCalories: TargetCalories(in.Weight, in.Height, in.Age, in.ActivityLevel, in.Goal),
		WaterIntake:    WaterIntake(in.Weight),
		Active:         true,
		CreatedAt:      now,
		LastActive:     now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE profiles SET active = 0`); err != nil {
		return nil, fmt.Errorf("failed to deactivate profiles: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`, p.ID, p.Name, p.Email, p.Age, p.Height, p.Weight, p.Goal, p.ActivityLevel,
		p.TargetCalories, p.WaterIntake,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}

	if err := ensureDay(ctx, tx, p.ID, s.Date(now)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit profile: %w", err)
	}

	return &p, nil
}

// ListProfiles returns all profiles ordered by creation time.
func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// GetProfile returns a single profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// ActiveProfile returns the profile currently in use. ErrNotFound is
// returned when no profile has been created or selected yet.
func (s *Store) ActiveProfile(ctx context.Context) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE active = 1 LIMIT 1`)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("active profile: %w", ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// SetActive makes the profile with the given ID the active one.
func (s *Store) SetActive(ctx context.Context, id string) (*Profile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE profiles SET active = 0`); err != nil {
		return nil, fmt.Errorf("failed to deactivate profiles: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE profiles SET active = 1, last_active = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return nil, fmt.Errorf("failed to activate profile: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit profile switch: %w", err)
	}

	return s.GetProfile(ctx, id)
}

// DeleteProfile removes a profile together with its habits and records.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}

	for _, table := range []string{"habits", "daily_records", "food_entries", "exercise_entries", "habit_completions"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE profile_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func ensureDay(ctx context.Context, db execer, profileID, date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}
	_, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO daily_records (profile_id, date) VALUES (?, ?)`, profileID, date)
	if err != nil {
		return fmt.Errorf("failed to create daily record: %w", err)
	}
	return nil
}

// AddFood logs a food entry on the given date.
func (s *Store) AddFood(ctx context.Context, profileID, date string, f FoodEntry) (*FoodEntry, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("food name is required")
	}
	if f.Calories < 0 {
		return nil, fmt.Errorf("calories must not be negative")
	}
	if err := ensureDay(ctx, s.db, profileID, date); err != nil {
		return nil, err
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO food_entries (profile_id, date, name, calories, quantity, logged_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, profileID, date, f.Name, f.Calories, f.Quantity, f.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert food: %w", err)
	}

	if f.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to get inserted ID: %w", err)
	}
	return &f, nil
}

// AddExercise logs an exercise entry on the given date.
func (s *Store) AddExercise(ctx context.Context, profileID, date string, e ExerciseEntry) (*ExerciseEntry, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("exercise name is required")
	}
	if e.CaloriesBurned < 0 || e.Duration < 0 {
		return nil, fmt.Errorf("duration and calories must not be negative")
	}
	if err := ensureDay(ctx, s.db, profileID, date); err != nil {
		return nil, err
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO exercise_entries (profile_id, date, name, duration, calories_burned, logged_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, profileID, date, e.Name, e.Duration, e.CaloriesBurned, e.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert exercise: %w", err)
	}

	if e.ID, err = result.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to get inserted ID: %w", err)
	}
	return &e, nil
}

// DeleteFood removes a logged food. The day's totals follow since they are
// summed on read.
func (s *Store) DeleteFood(ctx context.Context, profileID string, id int64) error {
	return s.deleteEntry(ctx, "food_entries", profileID, id)
}

// DeleteExercise removes a logged exercise.
func (s *Store) DeleteExercise(ctx context.Context, profileID string, id int64) error {
	return s.deleteEntry(ctx, "exercise_entries", profileID, id)
}

func (s *Store) deleteEntry(ctx context.Context, table, profileID string, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ? AND profile_id = ?`, id, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddWater adds liters to the day's water total and returns the new total.
func (s *Store) AddWater(ctx context.Context, profileID, date string, liters float64) (float64, error) {
	if liters <= 0 {
		return 0, fmt.Errorf("water amount must be positive")
	}
	if err := ensureDay(ctx, s.db, profileID, date); err != nil {
		return 0, err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE daily_records SET water_drunk = water_drunk + ? WHERE profile_id = ? AND date = ?
	`, liters, profileID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to update water: %w", err)
	}

	var total float64
	err = s.db.QueryRowContext(ctx, `SELECT water_drunk FROM daily_records WHERE profile_id = ? AND date = ?`,
		profileID, date).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to read water total: %w", err)
	}
	return total, nil
}

// AddHabit defines a new habit for a profile.
func (s *Store) AddHabit(ctx context.Context, profileID, name, kind string) (*Habit, error) {
	if name == "" {
		return nil, fmt.Errorf("habit name is required")
	}
	if kind != HabitPositive && kind != HabitNegative {
		return nil, fmt.Errorf("habit kind must be %s or %s", HabitPositive, HabitNegative)
	}

	h := Habit{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Name:      name,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (id, profile_id, name, kind, created_at) VALUES (?, ?, ?, ?, ?)
	`, h.ID, h.ProfileID, h.Name, h.Kind, h.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to insert habit: %w", err)
	}
	return &h, nil
}

// ListHabits returns a profile's habits in creation order.
func (s *Store) ListHabits(ctx context.Context, profileID string) ([]Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, name, kind, created_at FROM habits
		WHERE profile_id = ? ORDER BY created_at ASC, name ASC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []Habit
	for rows.Next() {
		var h Habit
		var createdAt string
		if err := rows.Scan(&h.ID, &h.ProfileID, &h.Name, &h.Kind, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// DeleteHabit removes a habit and every completion recorded for it.
func (s *Store) DeleteHabit(ctx context.Context, profileID, habitID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE id = ? AND profile_id = ?`, habitID, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("habit %s: %w", habitID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM habit_completions WHERE habit_id = ?`, habitID); err != nil {
		return fmt.Errorf("failed to delete habit completions: %w", err)
	}

	return tx.Commit()
}

// SetHabitCompleted marks a habit as completed (or not) on the given date.
func (s *Store) SetHabitCompleted(ctx context.Context, profileID, date, habitID string, done bool) error {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT profile_id FROM habits WHERE id = ?`, habitID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("habit %s: %w", habitID, ErrNotFound)
		}
		return fmt.Errorf("failed to get habit: %w", err)
	}
	if owner != profileID {
		return fmt.Errorf("habit %s: %w", habitID, ErrNotFound)
	}

	if err := ensureDay(ctx, s.db, profileID, date); err != nil {
		return err
	}

	if done {
		_, err = s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO habit_completions (profile_id, date, habit_id) VALUES (?, ?, ?)
		`, profileID, date, habitID)
	} else {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM habit_completions WHERE profile_id = ? AND date = ? AND habit_id = ?
		`, profileID, date, habitID)
	}
	if err != nil {
		return fmt.Errorf("failed to update habit completion: %w", err)
	}
	return nil
}

// DailyRecord assembles the record for one profile and date. ErrNotFound is
// returned when nothing was ever recorded for that day.
func (s *Store) DailyRecord(ctx context.Context, profileID, date string) (*DailyRecord, error) {
	rec := DailyRecord{
		Date:            date,
		HabitsCompleted: HabitsCompleted{Positive: []string{}, Negative: []string{}},
		Foods:           []FoodEntry{},
		Exercises:       []ExerciseEntry{},
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT water_drunk FROM daily_records WHERE profile_id = ? AND date = ?
	`, profileID, date).Scan(&rec.WaterDrunk)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("record %s for %s: %w", date, profileID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get daily record: %w", err)
	}

	if err := s.loadFoods(ctx, profileID, &rec); err != nil {
		return nil, err
	}
	if err := s.loadExercises(ctx, profileID, &rec); err != nil {
		return nil, err
	}
	if err := s.loadCompletions(ctx, profileID, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (s *Store) loadFoods(ctx context.Context, profileID string, rec *DailyRecord) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, calories, quantity, logged_at FROM food_entries
		WHERE profile_id = ? AND date = ? ORDER BY id ASC
	`, profileID, rec.Date)
	if err != nil {
		return fmt.Errorf("failed to list foods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f FoodEntry
		var loggedAt string
		if err := rows.Scan(&f.ID, &f.Name, &f.Calories, &f.Quantity, &loggedAt); err != nil {
			return fmt.Errorf("failed to scan food: %w", err)
		}
		f.Timestamp, _ = time.Parse(time.RFC3339, loggedAt)
		rec.Foods = append(rec.Foods, f)
		rec.CaloriesConsumed += f.Calories
	}
	return rows.Err()
}

func (s *Store) loadExercises(ctx context.Context, profileID string, rec *DailyRecord) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, duration, calories_burned, logged_at FROM exercise_entries
		WHERE profile_id = ? AND date = ? ORDER BY id ASC
	`, profileID, rec.Date)
	if err != nil {
		return fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e ExerciseEntry
		var loggedAt string
		if err := rows.Scan(&e.ID, &e.Name, &e.Duration, &e.CaloriesBurned, &loggedAt); err != nil {
			return fmt.Errorf("failed to scan exercise: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339, loggedAt)
		rec.Exercises = append(rec.Exercises, e)
		rec.CaloriesBurned += e.CaloriesBurned
	}
	return rows.Err()
}

func (s *Store) loadCompletions(ctx context.Context, profileID string, rec *DailyRecord) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.id, h.kind FROM habit_completions c
		JOIN habits h ON h.id = c.habit_id
		WHERE c.profile_id = ? AND c.date = ?
		ORDER BY h.created_at ASC, h.name ASC
	`, profileID, rec.Date)
	if err != nil {
		return fmt.Errorf("failed to list habit completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, kind string
		if err := rows.Scan(&id, &kind); err != nil {
			return fmt.Errorf("failed to scan habit completion: %w", err)
		}
		if kind == HabitNegative {
			rec.HabitsCompleted.Negative = append(rec.HabitsCompleted.Negative, id)
		} else {
			rec.HabitsCompleted.Positive = append(rec.HabitsCompleted.Positive, id)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	var p Profile
	var active int
	var createdAt, lastActive string

	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Age, &p.Height, &p.Weight,
		&p.Goal, &p.ActivityLevel, &p.TargetCalories, &p.WaterIntake,
		&active, &createdAt, &lastActive); err != nil {
		return nil, err
	}

	p.Active = active == 1
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.LastActive, _ = time.Parse(time.RFC3339, lastActive)

	return &p, nil
}
