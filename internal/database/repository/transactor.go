package repository

import "gorm.io/gorm"

// Transactor runs a unit of work inside a single database transaction.
// Repositories join it through their WithTx methods.
type Transactor interface {
	WithinTransaction(fn func(tx *gorm.DB) error) error
}

type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a transactor bound to db
func NewTransactor(db *gorm.DB) Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(fn func(tx *gorm.DB) error) error {
	return t.db.Transaction(fn)
}
