package fleetdb

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of *sql.DB / *sql.Tx used by Queries.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries wraps all SQL access to the store.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ----- lines -----

type CreateLineParams struct {
	ID   string
	Name string
}

func (q *Queries) CreateLine(ctx context.Context, arg CreateLineParams) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO lines (id, name) VALUES (?, ?)`, arg.ID, arg.Name)
	return err
}

func (q *Queries) GetLine(ctx context.Context, id string) (Line, error) {
	var line Line
	err := q.db.QueryRowContext(ctx, `SELECT id, name FROM lines WHERE id = ?`, id).
		Scan(&line.ID, &line.Name)
	return line, err
}

func (q *Queries) ListLines(ctx context.Context) ([]Line, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name FROM lines ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.Name); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (q *Queries) UpdateLine(ctx context.Context, arg CreateLineParams) error {
	_, err := q.db.ExecContext(ctx, `UPDATE lines SET name = ? WHERE id = ?`, arg.Name, arg.ID)
	return err
}

func (q *Queries) DeleteLine(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM lines WHERE id = ?`, id)
	return err
}

// ----- stops -----

type CreateStopParams struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

func (q *Queries) CreateStop(ctx context.Context, arg CreateStopParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO stops (id, name, lat, lon) VALUES (?, ?, ?, ?)`,
		arg.ID, arg.Name, arg.Lat, arg.Lon)
	return err
}

func (q *Queries) GetStop(ctx context.Context, id string) (Stop, error) {
	var stop Stop
	err := q.db.QueryRowContext(ctx, `SELECT id, name, lat, lon FROM stops WHERE id = ?`, id).
		Scan(&stop.ID, &stop.Name, &stop.Lat, &stop.Lon)
	return stop, err
}

func (q *Queries) ListStops(ctx context.Context) ([]Stop, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, lat, lon FROM stops ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var stops []Stop
	for rows.Next() {
		var stop Stop
		if err := rows.Scan(&stop.ID, &stop.Name, &stop.Lat, &stop.Lon); err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}
	return stops, rows.Err()
}

func (q *Queries) UpdateStop(ctx context.Context, arg CreateStopParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE stops SET name = ?, lat = ?, lon = ? WHERE id = ?`,
		arg.Name, arg.Lat, arg.Lon, arg.ID)
	return err
}

func (q *Queries) DeleteStop(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM stops WHERE id = ?`, id)
	return err
}

// ----- stop order on a line -----

type AddStopToLineParams struct {
	LineID        string
	StopID        string
	SequenceOrder int64
}

func (q *Queries) AddStopToLine(ctx context.Context, arg AddStopToLineParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO stops_on_lines (line_id, stop_id, sequence_order) VALUES (?, ?, ?)`,
		arg.LineID, arg.StopID, arg.SequenceOrder)
	return err
}

func (q *Queries) ClearStopsOnLine(ctx context.Context, lineID string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM stops_on_lines WHERE line_id = ?`, lineID)
	return err
}

// GetOrderedStopsForLine returns the line's stops ascending by sequence order.
func (q *Queries) GetOrderedStopsForLine(ctx context.Context, lineID string) ([]StopOnLine, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.lat, s.lon, sol.sequence_order
		FROM stops_on_lines sol
		JOIN stops s ON s.id = sol.stop_id
		WHERE sol.line_id = ?
		ORDER BY sol.sequence_order ASC`, lineID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var stops []StopOnLine
	for rows.Next() {
		var s StopOnLine
		if err := rows.Scan(&s.StopID, &s.Name, &s.Lat, &s.Lon, &s.SequenceOrder); err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

// ----- driver codes -----

type CreateDriverCodeParams struct {
	ID        string
	CodeHash  string
	CreatedAt time.Time
}

func (q *Queries) CreateDriverCode(ctx context.Context, arg CreateDriverCodeParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO driver_codes (id, code_hash, is_active, created_at) VALUES (?, ?, 1, ?)`,
		arg.ID, arg.CodeHash, arg.CreatedAt)
	return err
}

func (q *Queries) ListActiveDriverCodes(ctx context.Context) ([]DriverCode, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, code_hash, is_active, created_at FROM driver_codes WHERE is_active = 1`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var codes []DriverCode
	for rows.Next() {
		var code DriverCode
		if err := rows.Scan(&code.ID, &code.CodeHash, &code.IsActive, &code.CreatedAt); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func (q *Queries) DeactivateDriverCode(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE driver_codes SET is_active = 0 WHERE id = ?`, id)
	return err
}

// ----- sessions -----

type CreateSessionParams struct {
	ID        string
	Token     string
	CodeID    string
	LineID    sql.NullString
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, code_id, line_id, is_active, created_at, expires_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)`,
		arg.ID, arg.Token, arg.CodeID, arg.LineID, arg.CreatedAt, arg.ExpiresAt)
	return err
}

func scanSession(row *sql.Row) (Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.Token, &s.CodeID, &s.LineID, &s.IsActive, &s.CreatedAt, &s.ExpiresAt, &s.EndedAt)
	return s, err
}

func (q *Queries) GetSessionByToken(ctx context.Context, token string) (Session, error) {
	return scanSession(q.db.QueryRowContext(ctx, `
		SELECT id, token, code_id, line_id, is_active, created_at, expires_at, ended_at
		FROM sessions WHERE token = ?`, token))
}

func (q *Queries) GetSession(ctx context.Context, id string) (Session, error) {
	return scanSession(q.db.QueryRowContext(ctx, `
		SELECT id, token, code_id, line_id, is_active, created_at, expires_at, ended_at
		FROM sessions WHERE id = ?`, id))
}

// HasActiveSessionForCode reports whether the driver code is already bound
// to an active, unexpired session.
func (q *Queries) HasActiveSessionForCode(ctx context.Context, codeID string, now time.Time) (bool, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sessions
		WHERE code_id = ? AND is_active = 1 AND expires_at > ?`, codeID, now).Scan(&count)
	return count > 0, err
}

func (q *Queries) UpdateSessionLine(ctx context.Context, sessionID, lineID string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE sessions SET line_id = ? WHERE id = ?`, lineID, sessionID)
	return err
}

func (q *Queries) EndSession(ctx context.Context, sessionID string, endedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE sessions SET is_active = 0, ended_at = ? WHERE id = ?`, endedAt, sessionID)
	return err
}

// GetActiveSessionIDsForLine returns sessions on the line that are active
// and not expired as of now.
func (q *Queries) GetActiveSessionIDsForLine(ctx context.Context, lineID string, now time.Time) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id FROM sessions
		WHERE line_id = ? AND is_active = 1 AND expires_at > ?
		ORDER BY created_at ASC`, lineID, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ExpireSessions marks active sessions past their expiry as inactive and
// returns the number of rows affected.
func (q *Queries) ExpireSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		UPDATE sessions SET is_active = 0, ended_at = ?
		WHERE is_active = 1 AND expires_at < ?`, now, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ----- locations -----

type InsertLocationParams struct {
	SessionID  string
	LineID     string
	Lat        float64
	Lon        float64
	Accuracy   sql.NullFloat64
	Speed      sql.NullFloat64
	Heading    sql.NullFloat64
	RecordedAt time.Time
}

func (q *Queries) InsertLocation(ctx context.Context, arg InsertLocationParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO locations (session_id, line_id, lat, lon, accuracy, speed, heading, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.SessionID, arg.LineID, arg.Lat, arg.Lon, arg.Accuracy, arg.Speed, arg.Heading, arg.RecordedAt)
	return err
}

func scanLocationRows(rows *sql.Rows) ([]Location, error) {
	defer func() { _ = rows.Close() }()

	var locations []Location
	for rows.Next() {
		var l Location
		err := rows.Scan(&l.ID, &l.SessionID, &l.LineID, &l.Lat, &l.Lon,
			&l.Accuracy, &l.Speed, &l.Heading, &l.RecordedAt)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// GetRecentLocations returns up to limit fixes for the session, newest first.
func (q *Queries) GetRecentLocations(ctx context.Context, sessionID string, limit int64) ([]Location, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, session_id, line_id, lat, lon, accuracy, speed, heading, recorded_at
		FROM locations WHERE session_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	return scanLocationRows(rows)
}

// GetLatestLocationsForLine returns the newest fix of every active session
// on the line.
func (q *Queries) GetLatestLocationsForLine(ctx context.Context, lineID string, now time.Time) ([]Location, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT l.id, l.session_id, l.line_id, l.lat, l.lon, l.accuracy, l.speed, l.heading, l.recorded_at
		FROM locations l
		JOIN sessions s ON s.id = l.session_id
		WHERE l.line_id = ? AND s.is_active = 1 AND s.expires_at > ?
		  AND l.id = (SELECT MAX(l2.id) FROM locations l2 WHERE l2.session_id = l.session_id)
		ORDER BY l.recorded_at DESC`, lineID, now)
	if err != nil {
		return nil, err
	}
	return scanLocationRows(rows)
}

func (q *Queries) CountLocations(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&count)
	return count, err
}

func (q *Queries) CountLocationsByLine(ctx context.Context) ([]LineLocationCount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT line_id, COUNT(*) FROM locations GROUP BY line_id ORDER BY line_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var counts []LineLocationCount
	for rows.Next() {
		var c LineLocationCount
		if err := rows.Scan(&c.LineID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// LocationTimeRange returns the oldest and newest recorded timestamps, or
// (nil, nil) when no locations exist.
func (q *Queries) LocationTimeRange(ctx context.Context) (*time.Time, *time.Time, error) {
	var oldest, newest sql.NullTime
	err := q.db.QueryRowContext(ctx,
		`SELECT MIN(recorded_at), MAX(recorded_at) FROM locations`).Scan(&oldest, &newest)
	if err != nil {
		return nil, nil, err
	}
	if !oldest.Valid || !newest.Valid {
		return nil, nil, nil
	}
	return &oldest.Time, &newest.Time, nil
}

// DeleteAllLocations removes every location row and returns the count.
func (q *Queries) DeleteAllLocations(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM locations`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteLocationsBefore removes location rows recorded before the cutoff
// and returns the count.
func (q *Queries) DeleteLocationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM locations WHERE recorded_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
