package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/meskelsoft/partyreg/internal/domain/models"
)

// CompleteProvisioning finishes a registration that stalled in the
// pending_account state: it creates the login account (or adopts one that
// already exists for the member), links it and delivers a fresh credential.
// Safe to call repeatedly; it never creates a second member or account.
func (o *Orchestrator) CompleteProvisioning(ctx context.Context, memberID primitive.ObjectID) (Result, error) {
	member, err := o.Members.GetByID(ctx, memberID)
	if err != nil {
		return Result{}, err
	}
	if member.ProvisionStatus == models.Provisioned {
		return Result{}, fmt.Errorf("member %s is already provisioned", member.MembershipID)
	}

	account, err := o.Accounts.GetByMemberID(ctx, memberID)
	if err != nil && !isNotFound(err) {
		return Result{}, err
	}

	secret, err := GenerateSecret()
	if err != nil {
		return Result{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, fmt.Errorf("hash credential: %w", err)
	}

	if account == nil {
		created, err := o.Accounts.Create(ctx, models.Account{
			Username:     member.Phone,
			Email:        member.Email,
			PasswordHash: hash,
			MemberID:     member.ID,
		})
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrAccountProvisioningFailed, err)
		}
		account = &created
	} else {
		// Adopted account gets the fresh credential too so the delivered
		// secret always matches the stored hash.
		if err := o.Accounts.SetPasswordHash(ctx, account.ID, hash); err != nil {
			return Result{}, err
		}
	}

	if err := o.Members.LinkAccount(ctx, member.ID, account.ID, models.ProvisionCredential); err != nil {
		return Result{}, err
	}
	member.AccountID = &account.ID
	member.ProvisionStatus = models.ProvisionCredential

	res := Result{
		Member:   *member,
		Account:  *account,
		Username: account.Username,
		Secret:   secret,
	}
	res.Delivered, res.Channel = o.deliver(ctx, *member, account.Username, secret)
	return res, nil
}

// ResendCredential rotates the account's password and re-delivers it. Used
// from the member view for credential_pending members and for members who
// lost their first credential.
func (o *Orchestrator) ResendCredential(ctx context.Context, memberID primitive.ObjectID) (Result, error) {
	member, err := o.Members.GetByID(ctx, memberID)
	if err != nil {
		return Result{}, err
	}
	account, err := o.Accounts.GetByMemberID(ctx, memberID)
	if err != nil {
		return Result{}, err
	}

	secret, err := GenerateSecret()
	if err != nil {
		return Result{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, fmt.Errorf("hash credential: %w", err)
	}
	if err := o.Accounts.SetPasswordHash(ctx, account.ID, hash); err != nil {
		return Result{}, err
	}

	token := uuid.NewString()
	o.Log.Info("credential rotated for resend",
		zap.String("membership_id", member.MembershipID),
		zap.String("resend_token", token))

	res := Result{
		Member:      *member,
		Account:     *account,
		Username:    account.Username,
		Secret:      secret,
		ResendToken: token,
	}
	res.Delivered, res.Channel = o.deliver(ctx, *member, account.Username, secret)
	o.Log.Info("resend delivery finished",
		zap.String("resend_token", token),
		zap.Bool("delivered", res.Delivered),
		zap.String("channel", string(res.Channel)))
	return res, nil
}

// Stores surface mongo.ErrNoDocuments unchanged for point lookups.
func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
