// internal/app/features/register/handler.go
package register

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/meskelsoft/partyreg/internal/app/features/errors"
	"github.com/meskelsoft/partyreg/internal/app/registration"
	"github.com/meskelsoft/partyreg/internal/app/system/auth"
)

// Handler owns the public registration flow.
type Handler struct {
	DB         *mongo.Database
	Orch       *registration.Orchestrator
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, orch *registration.Orchestrator, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Orch:       orch,
		SessionMgr: sessionMgr,
		Log:        logger,
		ErrLog:     errLog,
	}
}
