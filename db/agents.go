// ABOUTME: Agent config cache operations
// ABOUTME: Upsert-on-fetch, list, and invalidate-on-mutation
package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/fleetcall/dispatchctl/models"
)

// PutAgent stores a fetched config. The full JSON payload rides along so
// the cache never lags the wire shape.
func PutAgent(db *sql.DB, cfg *models.AgentConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO agent_configs (id, name, scenario_type, is_active, is_deployed, version, payload, fetched_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			scenario_type = excluded.scenario_type,
			is_active = excluded.is_active,
			is_deployed = excluded.is_deployed,
			version = excluded.version,
			payload = excluded.payload,
			fetched_at = excluded.fetched_at,
			updated_at = excluded.updated_at
	`, cfg.ID, cfg.Name, cfg.ScenarioType, cfg.IsActive, cfg.IsDeployed, cfg.Version,
		string(payload), time.Now(), cfg.UpdatedAt)

	return err
}

func PutAgents(db *sql.DB, configs []models.AgentConfig) error {
	for i := range configs {
		if err := PutAgent(db, &configs[i]); err != nil {
			return err
		}
	}
	return nil
}

func GetAgent(db *sql.DB, id int) (*models.AgentConfig, error) {
	var payload string
	err := db.QueryRow(`SELECT payload FROM agent_configs WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg models.AgentConfig
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListAgents returns cached configs, newest first. scenario filters when
// non-empty.
func ListAgents(db *sql.DB, scenario models.ScenarioType, limit int) ([]models.AgentConfig, error) {
	query := `SELECT payload FROM agent_configs`
	args := []any{}
	if scenario != "" {
		query += ` WHERE scenario_type = ?`
		args = append(args, scenario)
	}
	query += ` ORDER BY updated_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []models.AgentConfig
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var cfg models.AgentConfig
		if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// InvalidateAgent drops one config after a mutation; the next fetch
// repopulates it.
func InvalidateAgent(db *sql.DB, id int) error {
	_, err := db.Exec(`DELETE FROM agent_configs WHERE id = ?`, id)
	return err
}

// InvalidateAgents drops the whole agent cache.
func InvalidateAgents(db *sql.DB) error {
	_, err := db.Exec(`DELETE FROM agent_configs`)
	return err
}
