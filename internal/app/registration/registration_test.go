package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/meskelsoft/partyreg/internal/app/idalloc"
	"github.com/meskelsoft/partyreg/internal/app/notify"
	accountstore "github.com/meskelsoft/partyreg/internal/app/store/accounts"
	memberstore "github.com/meskelsoft/partyreg/internal/app/store/members"
	"github.com/meskelsoft/partyreg/internal/app/system/normalize"
	"github.com/meskelsoft/partyreg/internal/domain/models"
)

// memSequences is an in-memory stand-in for the sequences store.
type memSequences struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func (m *memSequences) Next(ctx context.Context, code string, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seqs == nil {
		m.seqs = make(map[string]int64)
	}
	k := fmt.Sprintf("%s-%d", code, year)
	m.seqs[k]++
	return m.seqs[k], nil
}

// memMembers mirrors the member store's uniqueness rules in memory.
type memMembers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Member

	// rejectIDs counts down forced duplicate-id rejections per membership id.
	rejectIDs map[string]int
}

func newMemMembers() *memMembers {
	return &memMembers{byID: make(map[primitive.ObjectID]*models.Member)}
}

func (m *memMembers) Create(ctx context.Context, mem models.Member) (models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mem.Phone = normalize.Phone(mem.Phone)
	mem.Email = normalize.Email(mem.Email)
	if n := m.rejectIDs[mem.MembershipID]; n > 0 {
		m.rejectIDs[mem.MembershipID] = n - 1
		return models.Member{}, memberstore.ErrDuplicateMembershipID
	}
	for _, have := range m.byID {
		if have.Phone == mem.Phone {
			return models.Member{}, memberstore.ErrDuplicatePhone
		}
		if have.MembershipID == mem.MembershipID {
			return models.Member{}, memberstore.ErrDuplicateMembershipID
		}
		if mem.Email != "" && have.Email == mem.Email {
			return models.Member{}, memberstore.ErrDuplicateEmail
		}
	}
	mem.ID = primitive.NewObjectID()
	if mem.ProvisionStatus == "" {
		mem.ProvisionStatus = models.ProvisionPending
	}
	mem.IsActive = true
	cp := mem
	m.byID[mem.ID] = &cp
	return mem, nil
}

func (m *memMembers) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *mem
	return &cp, nil
}

func (m *memMembers) LinkAccount(ctx context.Context, memberID, accountID primitive.ObjectID, provisionStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.byID[memberID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	id := accountID
	mem.AccountID = &id
	mem.ProvisionStatus = provisionStatus
	return nil
}

func (m *memMembers) SetProvisionStatus(ctx context.Context, memberID primitive.ObjectID, provisionStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.byID[memberID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	mem.ProvisionStatus = provisionStatus
	return nil
}

// memAccounts mirrors the account store in memory.
type memAccounts struct {
	mu         sync.Mutex
	byID       map[primitive.ObjectID]*models.Account
	createErr  error
	createErrN int // how many Creates fail before succeeding
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[primitive.ObjectID]*models.Account)}
}

func (m *memAccounts) Create(ctx context.Context, a models.Account) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil && m.createErrN != 0 {
		if m.createErrN > 0 {
			m.createErrN--
		}
		return models.Account{}, m.createErr
	}
	a.Username = normalize.Phone(a.Username)
	for _, have := range m.byID {
		if have.Username == a.Username {
			return models.Account{}, accountstore.ErrDuplicateUsername
		}
	}
	a.ID = primitive.NewObjectID()
	a.Status = "active"
	cp := a
	m.byID[a.ID] = &cp
	return a, nil
}

func (m *memAccounts) GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.MemberID == memberID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memAccounts) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	a.PasswordHash = append([]byte(nil), hash...)
	return nil
}

// memSender records deliveries and can be told to fail.
type memSender struct {
	mu    sync.Mutex
	err   error
	sent  []notify.Destination
	creds []string // "username secret" pairs, delivery order
}

func (s *memSender) SendCredential(ctx context.Context, dest notify.Destination, username, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, dest)
	s.creds = append(s.creds, username+" "+secret)
	return nil
}

// passthrough runs the function directly, like a transaction that commits.
type passthrough struct{}

func (passthrough) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testRig struct {
	members  *memMembers
	accounts *memAccounts
	sender   *memSender
	orch     *Orchestrator
}

func newRig(atomic Atomic) *testRig {
	r := &testRig{
		members:  newMemMembers(),
		accounts: newMemAccounts(),
		sender:   &memSender{},
	}
	r.orch = &Orchestrator{
		Members:  r.members,
		Accounts: r.accounts,
		IDs:      idalloc.New(&memSequences{}, zap.NewNop()),
		Sender:   r.sender,
		Atomic:   atomic,
		Log:      zap.NewNop(),
		Now:      func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) },
	}
	return r
}

func registrant(name, phone, region string) Registrant {
	return Registrant{
		FullName:  name,
		Gender:    "male",
		BirthDate: time.Date(1990, 3, 12, 0, 0, 0, 0, time.UTC),
		Phone:     phone,
		Region:    region,
		Level:     models.LevelFull,
	}
}

func TestRegister_AllocatesSequentialIDs(t *testing.T) {
	rig := newRig(passthrough{})
	ctx := context.Background()

	first, err := rig.orch.Register(ctx, registrant("Abel Tesfaye", "0911111111", "አማራ"))
	if err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if first.Member.MembershipID != "AMH-2025-0001" {
		t.Errorf("first id = %q, want AMH-2025-0001", first.Member.MembershipID)
	}

	second, err := rig.orch.Register(ctx, registrant("Sara Bekele", "0922222222", "አማራ"))
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if second.Member.MembershipID != "AMH-2025-0002" {
		t.Errorf("second id = %q, want AMH-2025-0002", second.Member.MembershipID)
	}
}

func TestRegister_UnknownRegionFallsBack(t *testing.T) {
	rig := newRig(passthrough{})
	res, err := rig.orch.Register(context.Background(), registrant("Lensa Gudina", "0933333333", "Unknown Region"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Member.MembershipID != "OTH-2025-0001" {
		t.Errorf("id = %q, want OTH-2025-0001", res.Member.MembershipID)
	}
}

func TestRegister_ProvisionsAndDelivers(t *testing.T) {
	rig := newRig(passthrough{})
	res, err := rig.orch.Register(context.Background(), registrant("Abel Tesfaye", "0911111111", "አማራ"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if res.Username != "+251911111111" {
		t.Errorf("username = %q", res.Username)
	}
	if len(res.Secret) != secretLen {
		t.Errorf("secret length = %d, want %d", len(res.Secret), secretLen)
	}
	if !res.Delivered || res.Channel != notify.ChannelSMS {
		t.Errorf("delivered=%v channel=%q, want sms delivery", res.Delivered, res.Channel)
	}
	if res.Account.ID.IsZero() {
		t.Fatal("account not created")
	}

	mem, err := rig.members.GetByID(context.Background(), res.Member.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if mem.ProvisionStatus != models.Provisioned {
		t.Errorf("provision status = %q, want %q", mem.ProvisionStatus, models.Provisioned)
	}
	if mem.AccountID == nil || *mem.AccountID != res.Account.ID {
		t.Error("member not linked to account")
	}

	if len(rig.sender.sent) != 1 || rig.sender.sent[0].To != "+251911111111" {
		t.Errorf("deliveries = %v", rig.sender.sent)
	}
}

func TestRegister_DuplicatePhone(t *testing.T) {
	rig := newRig(passthrough{})
	ctx := context.Background()
	if _, err := rig.orch.Register(ctx, registrant("Abel Tesfaye", "0911111111", "አማራ")); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := rig.orch.Register(ctx, registrant("Someone Else", "0911111111", "ኦሮሚያ"))
	if !errors.Is(err, ErrDuplicateRegistrant) {
		t.Fatalf("err = %v, want ErrDuplicateRegistrant", err)
	}
}

func TestRegister_DeliveryFailureLeavesCredentialPending(t *testing.T) {
	rig := newRig(passthrough{})
	rig.sender.err = errors.New("gateway down")

	res, err := rig.orch.Register(context.Background(), registrant("Abel Tesfaye", "0911111111", "አማራ"))
	if err != nil {
		t.Fatalf("Register should succeed despite delivery failure: %v", err)
	}
	if res.Delivered {
		t.Error("Delivered = true, want false")
	}

	mem, _ := rig.members.GetByID(context.Background(), res.Member.ID)
	if mem.ProvisionStatus != models.ProvisionCredential {
		t.Errorf("provision status = %q, want %q", mem.ProvisionStatus, models.ProvisionCredential)
	}
}

func TestRegister_NoDeliveryChannel(t *testing.T) {
	rig := newRig(passthrough{})
	reg := registrant("Abel Tesfaye", "12345", "አማራ") // not an Ethiopian mobile
	reg.Email = ""

	res, err := rig.orch.Register(context.Background(), reg)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Delivered || res.Channel != notify.ChannelNone {
		t.Errorf("delivered=%v channel=%q, want no delivery", res.Delivered, res.Channel)
	}
}

func TestRegister_ReallocatesOnDuplicateID(t *testing.T) {
	rig := newRig(passthrough{})
	rig.members.rejectIDs = map[string]int{"AMH-2025-0001": 1}

	res, err := rig.orch.Register(context.Background(), registrant("Abel Tesfaye", "0911111111", "አማራ"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Member.MembershipID != "AMH-2025-0002" {
		t.Errorf("id = %q, want AMH-2025-0002 after one collision", res.Member.MembershipID)
	}
}

func TestRegister_AllocationExhausted(t *testing.T) {
	rig := newRig(passthrough{})
	rig.members.rejectIDs = map[string]int{
		"AMH-2025-0001": 1, "AMH-2025-0002": 1, "AMH-2025-0003": 1, "AMH-2025-0004": 1,
	}

	_, err := rig.orch.Register(context.Background(), registrant("Abel Tesfaye", "0911111111", "አማራ"))
	if !errors.Is(err, ErrAllocationExhausted) {
		t.Fatalf("err = %v, want ErrAllocationExhausted", err)
	}
}

func TestRegister_CompensatingPathRecovers(t *testing.T) {
	rig := newRig(NoAtomic{})
	rig.accounts.createErr = errors.New("write failed")
	rig.accounts.createErrN = -1 // fail every Create for now
	ctx := context.Background()

	res, err := rig.orch.Register(ctx, registrant("Abel Tesfaye", "0911111111", "አማራ"))
	if !errors.Is(err, ErrAccountProvisioningFailed) {
		t.Fatalf("err = %v, want ErrAccountProvisioningFailed", err)
	}
	if res.Member.ID.IsZero() {
		t.Fatal("member should still have been created")
	}

	mem, _ := rig.members.GetByID(ctx, res.Member.ID)
	if mem.ProvisionStatus != models.ProvisionPending {
		t.Fatalf("provision status = %q, want %q", mem.ProvisionStatus, models.ProvisionPending)
	}

	// Operator retries once the account store is healthy again.
	rig.accounts.createErr = nil
	fixed, err := rig.orch.CompleteProvisioning(ctx, res.Member.ID)
	if err != nil {
		t.Fatalf("CompleteProvisioning: %v", err)
	}
	if fixed.Member.MembershipID != res.Member.MembershipID {
		t.Errorf("membership id changed during remediation: %q -> %q",
			res.Member.MembershipID, fixed.Member.MembershipID)
	}
	if !fixed.Delivered {
		t.Error("remediation should have delivered the credential")
	}

	mem, _ = rig.members.GetByID(ctx, res.Member.ID)
	if mem.ProvisionStatus != models.Provisioned {
		t.Errorf("provision status = %q, want %q", mem.ProvisionStatus, models.Provisioned)
	}
	if len(rig.members.byID) != 1 {
		t.Errorf("member count = %d, want 1", len(rig.members.byID))
	}
	if len(rig.accounts.byID) != 1 {
		t.Errorf("account count = %d, want 1", len(rig.accounts.byID))
	}
}

func TestResendCredential_RotatesSecret(t *testing.T) {
	rig := newRig(passthrough{})
	ctx := context.Background()

	res, err := rig.orch.Register(ctx, registrant("Abel Tesfaye", "0911111111", "አማራ"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	again, err := rig.orch.ResendCredential(ctx, res.Member.ID)
	if err != nil {
		t.Fatalf("ResendCredential: %v", err)
	}
	if again.Secret == res.Secret {
		t.Error("resend should rotate the secret")
	}
	if !again.Delivered {
		t.Error("resend should deliver")
	}
	if again.ResendToken == "" {
		t.Error("resend should carry a reference token")
	}
	if len(rig.sender.sent) != 2 {
		t.Errorf("deliveries = %d, want 2", len(rig.sender.sent))
	}

	third, err := rig.orch.ResendCredential(ctx, res.Member.ID)
	if err != nil {
		t.Fatalf("ResendCredential: %v", err)
	}
	if third.ResendToken == again.ResendToken {
		t.Error("each resend should get its own reference token")
	}
}

func TestRegister_Concurrent(t *testing.T) {
	rig := newRig(passthrough{})
	const n = 32

	var wg sync.WaitGroup
	results := make([]Result, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			phone := fmt.Sprintf("09%08d", 11000000+i)
			results[i], errs[i] = rig.orch.Register(context.Background(),
				registrant(fmt.Sprintf("Member %d", i), phone, "ኦሮሚያ"))
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("register %d: %v", i, errs[i])
		}
		id := results[i].Member.MembershipID
		if !strings.HasPrefix(id, "ORO-2025-") {
			t.Fatalf("unexpected id %q", id)
		}
		if seen[id] {
			t.Fatalf("membership id %q issued twice", id)
		}
		seen[id] = true
	}
}

func TestGenerateSecret_Distinct(t *testing.T) {
	seen := make(map[string]bool, 10000)
	for i := 0; i < 10000; i++ {
		s, err := GenerateSecret()
		if err != nil {
			t.Fatalf("GenerateSecret: %v", err)
		}
		if len(s) != secretLen {
			t.Fatalf("secret length = %d", len(s))
		}
		for _, c := range s {
			if !strings.ContainsRune(secretAlphabet, c) {
				t.Fatalf("secret %q contains %q outside the alphabet", s, c)
			}
		}
		if seen[s] {
			t.Fatalf("duplicate secret after %d draws", i)
		}
		seen[s] = true
	}
}
