package repository

import "github.com/trackwise/expense-voice/pkg/database"

// Migrations is the expense schema in version order. Amounts are stored as
// text and parsed as decimals so user-entered precision survives.
var Migrations = []database.Migration{
	{
		Version: 1,
		Name:    "create_expenses",
		SQL: `
			CREATE TABLE IF NOT EXISTS expenses (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL,
				amount TEXT NOT NULL,
				category TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				date DATETIME NOT NULL,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_expenses_username_date
				ON expenses (username, date);
			CREATE INDEX IF NOT EXISTS idx_expenses_category
				ON expenses (category);
		`,
	},
}
