// ABOUTME: Cache schema definitions
// ABOUTME: Mirrors agent configs and calls fetched from the backend
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS agent_configs (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	scenario_type TEXT NOT NULL CHECK(scenario_type IN ('check_in', 'emergency')),
	is_active INTEGER NOT NULL DEFAULT 0,
	is_deployed INTEGER NOT NULL DEFAULT 0,
	version INTEGER NOT NULL DEFAULT 1,
	payload TEXT NOT NULL,
	fetched_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_agent_configs_scenario ON agent_configs(scenario_type);

CREATE TABLE IF NOT EXISTS calls (
	id INTEGER PRIMARY KEY,
	driver_name TEXT NOT NULL,
	load_number TEXT NOT NULL,
	agent_config_id INTEGER NOT NULL,
	call_type TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('initiated', 'in_progress', 'completed', 'failed', 'cancelled')),
	call_outcome TEXT,
	duration INTEGER,
	payload TEXT NOT NULL,
	fetched_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calls_status ON calls(status);
CREATE INDEX IF NOT EXISTS idx_calls_agent_config ON calls(agent_config_id);
CREATE INDEX IF NOT EXISTS idx_calls_updated ON calls(updated_at DESC);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
