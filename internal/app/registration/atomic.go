package registration

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/meskelsoft/partyreg/internal/app/system/txn"
)

// TxnAtomic runs functions inside a MongoDB multi-document transaction.
// On deployments without transaction support (standalone mongod) it reports
// ErrAtomicUnsupported so the orchestrator can take the compensating path.
type TxnAtomic struct {
	Client *mongo.Client
}

func (t *TxnAtomic) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	err := txn.WithTransaction(ctx, t.Client, func(sc mongo.SessionContext) error {
		return fn(sc)
	})
	if txn.IsNotSupported(err) {
		return ErrAtomicUnsupported
	}
	return err
}

// NoAtomic always reports ErrAtomicUnsupported. Used in tests and in
// deployments known to run without a replica set.
type NoAtomic struct{}

func (NoAtomic) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return ErrAtomicUnsupported
}
