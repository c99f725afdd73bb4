package persistence

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rowLock adds a SELECT ... FOR UPDATE clause. SQLite has no row locks and
// serializes writers at the connection level, so the clause is skipped there.
func rowLock(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
