// internal/app/features/members/actions.go
package members

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/meskelsoft/partyreg/internal/app/registration"
	"github.com/meskelsoft/partyreg/internal/app/system/timeouts"
)

// HandleDeactivate handles POST /members/{id}/deactivate. Members are only
// ever soft-deleted; the membership id stays issued. The linked login
// account is disabled in the same action so a deactivated member cannot
// sign in again.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	member := h.loadMember(w, r)
	if member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Members.Deactivate(ctx, member.ID); err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	if member.AccountID != nil {
		if err := h.Accounts.SetStatus(ctx, *member.AccountID, "disabled"); err != nil {
			h.ErrLog.ServerError(w, r, err, "")
			return
		}
	}
	h.Log.Info("member deactivated", zap.String("membership_id", member.MembershipID))
	http.Redirect(w, r, "/members?success=deactivated", http.StatusSeeOther)
}

// HandleReactivate handles POST /members/{id}/reactivate. Restores the
// login account alongside the member record.
func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	member := h.loadMember(w, r)
	if member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Members.Reactivate(ctx, member.ID); err != nil {
		h.ErrLog.ServerError(w, r, err, "")
		return
	}
	if member.AccountID != nil {
		if err := h.Accounts.SetStatus(ctx, *member.AccountID, "active"); err != nil {
			h.ErrLog.ServerError(w, r, err, "")
			return
		}
	}
	http.Redirect(w, r, "/members?success=reactivated", http.StatusSeeOther)
}

// HandleProvision handles POST /members/{id}/provision: finishes a
// registration stuck in pending_account.
func (h *Handler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	member := h.loadMember(w, r)
	if member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Orch.CompleteProvisioning(ctx, member.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "መለያ መፍጠር አልተቻለም።")
		return
	}
	h.redirectAfterCredential(w, r, member.ID.Hex(), res, "provisioned")
}

// HandleResend handles POST /members/{id}/resend: rotates and re-delivers
// the credential.
func (h *Handler) HandleResend(w http.ResponseWriter, r *http.Request) {
	member := h.loadMember(w, r)
	if member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Orch.ResendCredential(ctx, member.ID)
	if err != nil {
		h.ErrLog.ServerError(w, r, err, "መላክ አልተቻለም።")
		return
	}
	h.redirectAfterCredential(w, r, member.ID.Hex(), res, "resent")
}

// redirectAfterCredential sends staff back to the member view. When delivery
// failed, the credential rides a one-time flash so the office can hand it
// over in person. A resend token travels as ?ref= so the screen shows the
// reference staff quote against the rotation log.
func (h *Handler) redirectAfterCredential(w http.ResponseWriter, r *http.Request, idHex string, res registration.Result, successCode string) {
	ref := ""
	if res.ResendToken != "" {
		ref = "&ref=" + res.ResendToken
	}
	if res.Delivered {
		http.Redirect(w, r, "/members/"+idHex+"?success="+successCode+ref, http.StatusSeeOther)
		return
	}
	if err := h.SessionMgr.FlashCredential(w, r, res.Username, res.Secret); err != nil {
		h.Log.Warn("credential flash failed", zap.Error(err))
		http.Redirect(w, r, "/members/"+idHex+"?error=delivery", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/members/"+idHex+"?success=credential_pending"+ref, http.StatusSeeOther)
}
