// internal/app/features/announcements/handler.go
package announcements

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/meskelsoft/partyreg/internal/app/features/errors"
	announcementstore "github.com/meskelsoft/partyreg/internal/app/store/announcements"
)

// Handler owns the announcement screens. Reading is open to every
// signed-in member; authoring is staff-only (enforced in Routes).
type Handler struct {
	DB     *mongo.Database
	Store  *announcementstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Store:  announcementstore.New(db),
		Log:    logger,
		ErrLog: errLog,
	}
}
