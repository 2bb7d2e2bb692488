package sqlite

import (
	"database/sql"
	"log"

	"github.com/hoshinonyaruko/tetris-in-im/structs"
)

const createResultsTableSQL = `
CREATE TABLE IF NOT EXISTS Results (
    ID INTEGER PRIMARY KEY AUTOINCREMENT,
    SessionID TEXT,
    Score INTEGER,
    Level INTEGER,
    Lines INTEGER,
    Outcome TEXT,
    FinishedAt INTEGER
);
`

const createResultsScoreIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_results_score ON Results (Score DESC);
`

const createResultsSessionIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_results_session ON Results (SessionID);
`

func executeSQL(db *sql.DB, sqlStatement string) {
	_, err := db.Exec(sqlStatement)
	if err != nil {
		log.Fatalf("Error executing SQL statement: %s\n%s", sqlStatement, err)
	}
}

func InitializeDatabase(db *sql.DB) {
	executeSQL(db, createResultsTableSQL)
	executeSQL(db, createResultsScoreIndexSQL)
	executeSQL(db, createResultsSessionIndexSQL)
}

// InsertResult 保存一局结束的游戏，并回填自增 ID。
func InsertResult(db *sql.DB, result *structs.Result) error {
	res, err := db.Exec("INSERT INTO Results (SessionID, Score, Level, Lines, Outcome, FinishedAt) VALUES (?, ?, ?, ?, ?, ?)",
		result.SessionID, result.Score, result.Level, result.Lines, string(result.Outcome), result.FinishedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	result.ID = id
	return nil
}

// TopResults 按分数从高到低返回前 limit 条记录。
func TopResults(db *sql.DB, limit int) ([]structs.Result, error) {
	return queryResults(db, "SELECT ID, SessionID, Score, Level, Lines, Outcome, FinishedAt FROM Results ORDER BY Score DESC, FinishedAt ASC LIMIT ?", limit)
}

// SessionResults 返回某个会话的全部历史记录，最新的在前。
func SessionResults(db *sql.DB, sessionID string) ([]structs.Result, error) {
	return queryResults(db, "SELECT ID, SessionID, Score, Level, Lines, Outcome, FinishedAt FROM Results WHERE SessionID = ? ORDER BY FinishedAt DESC, ID DESC", sessionID)
}

func queryResults(db *sql.DB, query string, args ...interface{}) ([]structs.Result, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []structs.Result{}
	for rows.Next() {
		var r structs.Result
		var outcome string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Score, &r.Level, &r.Lines, &outcome, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.Outcome = structs.Phase(outcome)
		results = append(results, r)
	}
	return results, rows.Err()
}
