// internal/app/features/dashboard/handler.go
package dashboard

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/meskelsoft/partyreg/internal/app/features/errors"
	meetingstore "github.com/meskelsoft/partyreg/internal/app/store/meetings"
	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
)

// Handler renders the staff dashboard.
type Handler struct {
	DB       *mongo.Database
	Members  *memberstore.Store
	Meetings *meetingstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Members:  memberstore.New(db),
		Meetings: meetingstore.New(db),
		Log:      logger,
		ErrLog:   errLog,
	}
}
