// ABOUTME: Call cache operations
// ABOUTME: Upsert-on-fetch, filtered listing, and invalidation
package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/fleetcall/dispatchctl/models"
)

func PutCall(db *sql.DB, call *models.Call) error {
	payload, err := json.Marshal(call)
	if err != nil {
		return err
	}

	var outcome *string
	if call.CallOutcome != "" {
		outcome = &call.CallOutcome
	}

	_, err = db.Exec(`
		INSERT INTO calls (id, driver_name, load_number, agent_config_id, call_type, status, call_outcome, duration, payload, fetched_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			driver_name = excluded.driver_name,
			load_number = excluded.load_number,
			agent_config_id = excluded.agent_config_id,
			call_type = excluded.call_type,
			status = excluded.status,
			call_outcome = excluded.call_outcome,
			duration = excluded.duration,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at,
			updated_at = excluded.updated_at
	`, call.ID, call.DriverName, call.LoadNumber, call.AgentConfigID, call.CallType,
		call.Status, outcome, call.Duration, string(payload), time.Now(), call.UpdatedAt)

	return err
}

func PutCalls(db *sql.DB, calls []models.Call) error {
	for i := range calls {
		if err := PutCall(db, &calls[i]); err != nil {
			return err
		}
	}
	return nil
}

func GetCall(db *sql.DB, id int) (*models.Call, error) {
	var payload string
	err := db.QueryRow(`SELECT payload FROM calls WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var call models.Call
	if err := json.Unmarshal([]byte(payload), &call); err != nil {
		return nil, err
	}
	return &call, nil
}

// ListCalls returns cached calls, newest first. status filters when
// non-empty.
func ListCalls(db *sql.DB, status models.CallStatus, limit int) ([]models.Call, error) {
	query := `SELECT payload FROM calls`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calls []models.Call
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var call models.Call
		if err := json.Unmarshal([]byte(payload), &call); err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

// UpdateCallStatus applies a realtime status push to the cached row without
// refetching the whole record.
func UpdateCallStatus(db *sql.DB, update *models.CallStatusUpdate) error {
	call, err := GetCall(db, update.CallID)
	if err != nil || call == nil {
		return err
	}

	call.Status = update.Status
	if update.Duration > 0 {
		call.Duration = update.Duration
	}
	call.UpdatedAt = update.Timestamp
	return PutCall(db, call)
}

func InvalidateCall(db *sql.DB, id int) error {
	_, err := db.Exec(`DELETE FROM calls WHERE id = ?`, id)
	return err
}

func InvalidateCalls(db *sql.DB) error {
	_, err := db.Exec(`DELETE FROM calls`)
	return err
}
