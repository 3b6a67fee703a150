// Package registration orchestrates the full intake of a new party member:
// membership id allocation, member and account creation, and one-time
// credential delivery.
//
// The member and account writes happen inside a transaction when the
// deployment supports one; otherwise the orchestrator falls back to a
// compensating order (member first, in the pending_account state) so a
// crash between the two writes leaves a record operators can finish from
// the member view instead of a half-provisioned login.
package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/meskelsoft/partyreg/internal/app/notify"
	accountstore "github.com/meskelsoft/partyreg/internal/app/store/accounts"
	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
	"github.com/meskelsoft/partyreg/internal/app/system/normalize"
	"github.com/meskelsoft/partyreg/internal/domain/models"
)

// DefaultRetryBudget bounds how many membership ids Register will try to
// claim before giving up. Collisions only happen when the counter was
// seeded below already-issued ids, so one retry is almost always enough.
const DefaultRetryBudget = 4

// MemberStore is the slice of the members store the orchestrator needs.
type MemberStore interface {
	Create(ctx context.Context, m models.Member) (models.Member, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
	LinkAccount(ctx context.Context, memberID, accountID primitive.ObjectID, provisionStatus string) error
	SetProvisionStatus(ctx context.Context, memberID primitive.ObjectID, provisionStatus string) error
}

// AccountStore is the slice of the accounts store the orchestrator needs.
type AccountStore interface {
	Create(ctx context.Context, a models.Account) (models.Account, error)
	GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*models.Account, error)
	SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash []byte) error
}

// IDAllocator issues membership ids.
type IDAllocator interface {
	Allocate(ctx context.Context, region string, year int) (string, error)
}

// Atomic runs fn so that either all of its writes land or none do.
// Implementations that cannot guarantee that return ErrAtomicUnsupported
// without running fn.
type Atomic interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Registrant is the validated intake form for one new member.
type Registrant struct {
	FullName  string
	Gender    string
	BirthDate time.Time
	Phone     string
	Email     string

	Region string
	Zone   string
	Woreda string
	Kebele string

	Level     string
	PartyRole string
	JoinDate  time.Time // zero means "now"

	EducationLevel string
	Profession     string
}

// Result is what a successful registration produced. Secret is the only
// place the cleartext credential exists; callers show it once (or confirm
// delivery) and drop it.
type Result struct {
	Member   models.Member
	Account  models.Account
	Username string
	Secret   string

	Delivered bool
	Channel   notify.Channel

	// ResendToken is set by ResendCredential only. Staff quote it when a
	// member disputes a rotation; it matches the orchestrator's log lines.
	ResendToken string
}

// Orchestrator wires the stores, the id allocator and the credential
// sender into the registration flow.
type Orchestrator struct {
	Members  MemberStore
	Accounts AccountStore
	IDs      IDAllocator
	Sender   notify.Sender
	Atomic   Atomic
	Log      *zap.Logger

	// RetryBudget defaults to DefaultRetryBudget when zero.
	RetryBudget int

	// Now defaults to time.Now; injected by tests.
	Now func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) budget() int {
	if o.RetryBudget > 0 {
		return o.RetryBudget
	}
	return DefaultRetryBudget
}

// Register creates the member, provisions the linked account and delivers
// the credential. A delivery failure does not fail the registration: the
// member lands in the credential_pending state and the result reports
// Delivered=false so the caller can surface the follow-up.
func (o *Orchestrator) Register(ctx context.Context, reg Registrant) (Result, error) {
	joinDate := reg.JoinDate
	if joinDate.IsZero() {
		joinDate = o.now()
	}
	username := normalize.Phone(reg.Phone)

	secret, err := GenerateSecret()
	if err != nil {
		return Result{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, fmt.Errorf("hash credential: %w", err)
	}

	var member models.Member
	var account models.Account

	claimed := false
	for attempt := 0; attempt < o.budget(); attempt++ {
		membershipID, err := o.IDs.Allocate(ctx, reg.Region, joinDate.Year())
		if err != nil {
			return Result{}, fmt.Errorf("allocate membership id: %w", err)
		}

		member, account, err = o.createPair(ctx, reg, membershipID, joinDate, username, hash)
		if err == nil {
			claimed = true
			break
		}
		if errors.Is(err, memberstore.ErrDuplicateMembershipID) {
			o.Log.Warn("membership id already issued, reallocating",
				zap.String("membership_id", membershipID),
				zap.Int("attempt", attempt+1))
			continue
		}
		if errors.Is(err, memberstore.ErrDuplicatePhone) ||
			errors.Is(err, memberstore.ErrDuplicateEmail) ||
			errors.Is(err, accountstore.ErrDuplicateUsername) {
			return Result{}, fmt.Errorf("%w: %v", ErrDuplicateRegistrant, err)
		}
		return Result{}, err
	}
	if !claimed {
		return Result{}, ErrAllocationExhausted
	}

	res := Result{
		Member:   member,
		Account:  account,
		Username: username,
		Secret:   secret,
	}

	if account.ID.IsZero() {
		// Compensating path left the member without an account.
		return res, ErrAccountProvisioningFailed
	}

	res.Delivered, res.Channel = o.deliver(ctx, member, username, secret)
	return res, nil
}

// createPair writes the member and its account, transactionally when the
// deployment allows, otherwise member-first with the pending_account marker.
func (o *Orchestrator) createPair(ctx context.Context, reg Registrant, membershipID string, joinDate time.Time, username string, hash []byte) (models.Member, models.Account, error) {
	var member models.Member
	var account models.Account

	m := models.Member{
		FullName:       reg.FullName,
		Gender:         reg.Gender,
		BirthDate:      reg.BirthDate,
		Phone:          reg.Phone,
		Email:          reg.Email,
		Region:         reg.Region,
		Zone:           reg.Zone,
		Woreda:         reg.Woreda,
		Kebele:         reg.Kebele,
		MembershipID:   membershipID,
		Level:          reg.Level,
		PartyRole:      reg.PartyRole,
		JoinDate:       joinDate,
		EducationLevel: reg.EducationLevel,
		Profession:     reg.Profession,
	}

	err := o.Atomic.Run(ctx, func(ctx context.Context) error {
		var err error
		member, err = o.Members.Create(ctx, m)
		if err != nil {
			return err
		}
		account, err = o.Accounts.Create(ctx, models.Account{
			Username:     username,
			Email:        member.Email,
			PasswordHash: hash,
			MemberID:     member.ID,
		})
		if err != nil {
			return err
		}
		return o.Members.LinkAccount(ctx, member.ID, account.ID, models.ProvisionCredential)
	})
	if err == nil {
		member.AccountID = &account.ID
		member.ProvisionStatus = models.ProvisionCredential
		return member, account, nil
	}
	if !errors.Is(err, ErrAtomicUnsupported) {
		return models.Member{}, models.Account{}, err
	}

	// No transactions available: write the member first so a failure on
	// the account insert leaves a record operators can finish.
	member, err = o.Members.Create(ctx, m)
	if err != nil {
		return models.Member{}, models.Account{}, err
	}
	account, err = o.Accounts.Create(ctx, models.Account{
		Username:     username,
		Email:        member.Email,
		PasswordHash: hash,
		MemberID:     member.ID,
	})
	if err != nil {
		o.Log.Error("account creation failed after member insert",
			zap.String("membership_id", member.MembershipID),
			zap.Error(err))
		return member, models.Account{}, nil
	}
	if err := o.Members.LinkAccount(ctx, member.ID, account.ID, models.ProvisionCredential); err != nil {
		return member, models.Account{}, nil
	}
	member.AccountID = &account.ID
	member.ProvisionStatus = models.ProvisionCredential
	return member, account, nil
}

// deliver sends the credential and advances the provisioning state on
// success. Returns whether delivery happened and over which channel.
func (o *Orchestrator) deliver(ctx context.Context, member models.Member, username, secret string) (bool, notify.Channel) {
	dest := notify.PickDestination(member.Phone, member.Email)
	if dest.Channel == notify.ChannelNone {
		o.Log.Warn("no delivery channel for new member",
			zap.String("membership_id", member.MembershipID))
		return false, notify.ChannelNone
	}
	if err := o.Sender.SendCredential(ctx, dest, username, secret); err != nil {
		o.Log.Warn("credential delivery failed, member left credential_pending",
			zap.String("membership_id", member.MembershipID),
			zap.String("channel", string(dest.Channel)),
			zap.Error(err))
		return false, dest.Channel
	}
	if err := o.Members.SetProvisionStatus(ctx, member.ID, models.Provisioned); err != nil {
		o.Log.Error("failed to mark member provisioned",
			zap.String("membership_id", member.MembershipID),
			zap.Error(err))
	}
	return true, dest.Channel
}
