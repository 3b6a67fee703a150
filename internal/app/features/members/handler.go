// internal/app/features/members/handler.go
package members

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	uierrors "github.com/meskelsoft/partyreg/internal/app/features/errors"
	"github.com/meskelsoft/partyreg/internal/app/registration"
	accountstore "github.com/meskelsoft/partyreg/internal/app/store/accounts"
	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
	"github.com/meskelsoft/partyreg/internal/app/system/auth"
)

// Handler owns the staff member-management screens.
type Handler struct {
	DB         *mongo.Database
	Members    *memberstore.Store
	Accounts   *accountstore.Store
	Orch       *registration.Orchestrator
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, orch *registration.Orchestrator, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Members:    memberstore.New(db),
		Accounts:   accountstore.New(db),
		Orch:       orch,
		SessionMgr: sessionMgr,
		Log:        logger,
		ErrLog:     errLog,
	}
}
