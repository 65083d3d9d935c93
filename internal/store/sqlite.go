package store

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        external_user_id TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS events (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        title TEXT NOT NULL,
        address TEXT,
        lat REAL,
        long REAL,
        date_time TEXT, -- 'DD/MM/YYYY,HH:MM', compared via substr normalization
        about TEXT,
        category_id INTEGER,
        rating REAL,
        user_id INTEGER,
        created_at TEXT,
        link TEXT,
        visible_date TEXT,
        recurring TEXT,
        end_date TEXT,
        weekdays TEXT,
        dates TEXT,
        all_time TEXT,
        selected_weeks TEXT
    );

    CREATE TABLE IF NOT EXISTS exchanges (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER NOT NULL,
        query TEXT NOT NULL,
        intent TEXT NOT NULL,
        sql_text TEXT,
        reply TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods
func (s *SQLiteStore) GetUserByExternalID(externalUserID string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, created_at FROM users WHERE external_user_id = ?", externalUserID).Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateUser(externalUserID, passwordHash string) (*User, error) {
	res, err := s.db.Exec("INSERT INTO users (external_user_id, password_hash) VALUES (?, ?)", externalUserID, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.getUserByID(id)
}

func (s *SQLiteStore) getUserByID(id int64) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, created_at FROM users WHERE id = ?", id).Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// Event methods
func (s *SQLiteStore) InsertEvent(ev *Event) error {
	res, err := s.db.Exec(`INSERT INTO events
        (title, address, lat, long, date_time, about, category_id, rating, user_id, created_at,
         link, visible_date, recurring, end_date, weekdays, dates, all_time, selected_weeks)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Title, ev.Address, ev.Lat, ev.Long, ev.DateTime, ev.About, ev.CategoryID, ev.Rating,
		ev.UserID, ev.CreatedAt, ev.Link, ev.VisibleDate, ev.Recurring, ev.EndDate,
		ev.Weekdays, ev.Dates, ev.AllTime, ev.SelectedWeeks)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	ev.ID, _ = res.LastInsertId()
	return nil
}

// SearchEvents runs an already-validated SELECT and returns the rows keyed
// by column name. The column list is whatever the query chose, so rows are
// scanned generically.
func (s *SQLiteStore) SearchEvents(query string) ([]EventRecord, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to run search query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var records []EventRecord
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		record := make(EventRecord, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[col] = v
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while iterating results: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) ClearEvents() error {
	if _, err := s.db.Exec("DELETE FROM events"); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}

// Exchange methods
func (s *SQLiteStore) CreateExchange(ex *Exchange) error {
	ex.ID = uuid.NewString()
	ex.CreatedAt = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO exchanges (id, user_id, query, intent, sql_text, reply, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare exchange insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(ex.ID, ex.UserID, ex.Query, ex.Intent, ex.SQL, ex.Reply, ex.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute exchange insert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetExchangesByUserID(userID int64, limit int) ([]Exchange, error) {
	rows, err := s.db.Query(`
        SELECT id, user_id, query, intent, sql_text, reply, created_at
        FROM exchanges
        WHERE user_id = ?
        ORDER BY created_at DESC
        LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(&ex.ID, &ex.UserID, &ex.Query, &ex.Intent, &ex.SQL, &ex.Reply, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange row: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, rows.Err()
}

// SeedEventsFromFile loads the events table from a CSV file with a header
// row. Columns are matched by header name; rows that fail to parse are
// skipped with a warning rather than aborting the load.
func (s *SQLiteStore) SeedEventsFromFile(filePath string) (int, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open events file %s: %w", filePath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}
	if _, ok := colIndex["title"]; !ok {
		return 0, fmt.Errorf("events file %s has no title column", filePath)
	}

	if err := s.ClearEvents(); err != nil {
		return 0, fmt.Errorf("failed to clear existing events: %w", err)
	}

	field := func(row []string, name string) string {
		if i, ok := colIndex[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	count := 0
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Skipping malformed CSV line %d: %v", line, err)
			continue
		}

		ev := Event{
			Title:         field(row, "title"),
			Address:       field(row, "address"),
			DateTime:      field(row, "date_time"),
			About:         field(row, "about"),
			CreatedAt:     field(row, "created_at"),
			Link:          field(row, "link"),
			VisibleDate:   field(row, "visible_date"),
			Recurring:     field(row, "recurring"),
			EndDate:       field(row, "end_date"),
			Weekdays:      field(row, "weekdays"),
			Dates:         field(row, "dates"),
			AllTime:       field(row, "all_time"),
			SelectedWeeks: field(row, "selected_weeks"),
		}
		if ev.Title == "" {
			log.Printf("Skipping CSV line %d with empty title", line)
			continue
		}
		ev.Lat, _ = strconv.ParseFloat(field(row, "lat"), 64)
		ev.Long, _ = strconv.ParseFloat(field(row, "long"), 64)
		ev.Rating, _ = strconv.ParseFloat(field(row, "rating"), 64)
		ev.CategoryID, _ = strconv.ParseInt(field(row, "category_id"), 10, 64)
		ev.UserID, _ = strconv.ParseInt(field(row, "user_id"), 10, 64)

		if err := s.InsertEvent(&ev); err != nil {
			log.Printf("Failed to store event from line %d (%q): %v. Skipping.", line, ev.Title, err)
			continue
		}
		count++
	}
	log.Printf("Successfully seeded %d events.", count)
	return count, nil
}
