// Package txn runs multi-document work inside a MongoDB transaction when the
// deployment supports one, and reports when it does not so callers can fall
// back to an explicit compensation path.
//
// Standalone mongod instances (common in dev and small deployments) reject
// sessions/transactions; the registration orchestrator uses IsNotSupported to
// switch to its pending-account compensation flow in that case.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTransaction executes fn inside a session transaction.
//
// The returned error is fn's error or the driver's commit/abort error. When
// the server cannot run transactions at all, the error satisfies
// IsNotSupported and nothing will have been executed.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	session, err := client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// IsNotSupported reports whether err indicates the server cannot run
// transactions (standalone deployment, no replica set).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// 20 IllegalOperation, 51 (legacy illegal op), 263 OperationNotSupportedInTransaction
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set") {
		return true
	}
	if strings.Contains(msg, "session") && strings.Contains(msg, "not supported") {
		return true
	}
	if strings.Contains(msg, "transaction") && strings.Contains(msg, "session") {
		return true
	}
	if strings.Contains(msg, "illegal operation") && strings.Contains(msg, "transaction") {
		return true
	}
	return false
}
