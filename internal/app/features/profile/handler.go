// internal/app/features/profile/handler.go
package profile

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/meskelsoft/partyreg/internal/app/features/errors"
	accountstore "github.com/meskelsoft/partyreg/internal/app/store/accounts"
	meetingstore "github.com/meskelsoft/partyreg/internal/app/store/meetings"
	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
)

// Handler owns the member self-service screens.
type Handler struct {
	DB       *mongo.Database
	Members  *memberstore.Store
	Accounts *accountstore.Store
	Meetings *meetingstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Members:  memberstore.New(db),
		Accounts: accountstore.New(db),
		Meetings: meetingstore.New(db),
		Log:      logger,
		ErrLog:   errLog,
	}
}
