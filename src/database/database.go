package database

import (
	"database/sql"
	stdlog "log"

	"github.com/lingesh369/tradelens/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateTradesTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		entry_time TEXT,
		exit_time TEXT,
		action TEXT,
		quantity REAL,
		instrument TEXT,
		entry_price REAL,
		exit_price REAL,
		sl REAL,
		target REAL,
		commission REAL,
		fees REAL,
		profit REAL,
		market_type TEXT,
		contract_multiplier REAL NOT NULL DEFAULT 1,
		import_batch TEXT,
		hash_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, hash_id)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_user_id ON trades(user_id);
	CREATE INDEX IF NOT EXISTS idx_trades_user_entry_time ON trades(user_id, entry_time);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateTradesTable adds columns introduced after the first release to an
// existing trades table. New installs get the full schema from InitDB.
func migrateTradesTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='trades'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'trades' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'trades' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'trades' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'trades' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(trades)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'trades'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'trades': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'trades'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'trades': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'trades'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'trades': %v", err)
		}
		return
	}

	if _, ok := columnExists["market_type"]; !ok {
		_, err := DB.Exec("ALTER TABLE trades ADD COLUMN market_type TEXT")
		if err != nil {
			logger.L.Error("Error adding 'market_type' column to 'trades' table", "error", err)
		} else {
			logger.L.Info("Added 'market_type' column to 'trades' table")
		}
	}
	if _, ok := columnExists["contract_multiplier"]; !ok {
		_, err := DB.Exec("ALTER TABLE trades ADD COLUMN contract_multiplier REAL NOT NULL DEFAULT 1")
		if err != nil {
			logger.L.Error("Error adding 'contract_multiplier' column to 'trades' table", "error", err)
		} else {
			logger.L.Info("Added 'contract_multiplier' column to 'trades' table")
		}
	}
	if _, ok := columnExists["import_batch"]; !ok {
		_, err := DB.Exec("ALTER TABLE trades ADD COLUMN import_batch TEXT")
		if err != nil {
			logger.L.Error("Error adding 'import_batch' column to 'trades' table", "error", err)
		} else {
			logger.L.Info("Added 'import_batch' column to 'trades' table")
		}
	}
	if _, ok := columnExists["hash_id"]; !ok {
		_, err := DB.Exec("ALTER TABLE trades ADD COLUMN hash_id TEXT")
		if err != nil {
			logger.L.Error("Error adding 'hash_id' column to 'trades' table", "error", err)
		} else {
			logger.L.Info("Added 'hash_id' column to 'trades' table")
		}
	}
}
