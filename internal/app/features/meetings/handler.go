// internal/app/features/meetings/handler.go
package meetings

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/meskelsoft/partyreg/internal/app/features/errors"
	meetingstore "github.com/meskelsoft/partyreg/internal/app/store/meetings"
	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
)

// Handler owns the meeting and attendance screens.
type Handler struct {
	DB       *mongo.Database
	Meetings *meetingstore.Store
	Members  *memberstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Meetings: meetingstore.New(db),
		Members:  memberstore.New(db),
		Log:      logger,
		ErrLog:   errLog,
	}
}
