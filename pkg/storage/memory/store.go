// Package memory is an in-process implementation of the storage interfaces.
// Every write takes the same preconditions as the DynamoDB store, so services
// can be exercised against it, including under concurrency.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/models"
	"github.com/chris/wallet-payout-engine/pkg/storage"
)

// Store keeps all records in maps guarded by a single mutex.
type Store struct {
	mu sync.Mutex

	users         map[string]models.User
	ledger        map[string][]models.WalletTransaction
	referrals     map[string]models.Referral
	campaigns     map[string]models.CampaignReferral
	payouts       map[string]models.Payout
	notifications map[string]models.Notification

	now func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:         map[string]models.User{},
		ledger:        map[string][]models.WalletTransaction{},
		referrals:     map[string]models.Referral{},
		campaigns:     map[string]models.CampaignReferral{},
		payouts:       map[string]models.Payout{},
		notifications: map[string]models.Notification{},
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var _ storage.Storage = (*Store)(nil)

// SetClock replaces the time source used for created_at and updated_at stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// --- users ---

func (s *Store) GetUser(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *Store) GetUserByReferralCode(_ context.Context, code string) (*models.User, error) {
	code = models.NormalizeCode(code)
	return s.findUser(func(u models.User) bool { return code != "" && u.MyReferralCode == code })
}

func (s *Store) findUser(match func(models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Id]; ok {
		return storage.ErrAlreadyExists
	}
	now := s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.MyReferralCode = models.NormalizeCode(user.MyReferralCode)
	s.users[user.Id] = *user
	return nil
}

func (s *Store) UpdateUser(_ context.Context, userID string, patch storage.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.MyReferralCode != nil {
		u.MyReferralCode = models.NormalizeCode(*patch.MyReferralCode)
	}
	if patch.OnboardingCompleted != nil {
		u.OnboardingCompleted = *patch.OnboardingCompleted
	}
	u.UpdatedAt = s.now()
	s.users[userID] = u
	return nil
}

func (s *Store) SetCampaignReferralCode(_ context.Context, userID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	if u.CampaignReferralCode != "" && u.CampaignReferralCode != code {
		return storage.ErrConditionFailed
	}
	u.CampaignReferralCode = code
	u.UpdatedAt = s.now()
	s.users[userID] = u
	return nil
}

// --- ledger ---

func (s *Store) GetLedgerTip(_ context.Context, userID string) (*models.LedgerTip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tip := &models.LedgerTip{UserId: userID}
	if entries := s.ledger[userID]; len(entries) > 0 {
		last := entries[len(entries)-1]
		tip.Sequence = last.Sequence
		tip.Balance = last.BalanceAfter
	}
	return tip, nil
}

func (s *Store) ListLedgerEntries(_ context.Context, userID string) ([]models.WalletTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WalletTransaction(nil), s.ledger[userID]...), nil
}

func (s *Store) ListLedgerEntriesByReference(_ context.Context, referenceID string) ([]models.WalletTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.WalletTransaction
	for _, userID := range sortedKeys(s.ledger) {
		for _, e := range s.ledger[userID] {
			if e.ReferenceId == referenceID {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

// CommitLedger validates every precondition before applying anything, so a
// failed commit leaves no trace.
func (s *Store) CommitLedger(_ context.Context, postings []storage.Posting, transitions []storage.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(postings, transitions)
}

func (s *Store) commit(postings []storage.Posting, transitions []storage.Transition) error {
	seen := map[string]bool{}
	conflict := false
	for _, p := range postings {
		userID := p.Entry.UserId
		if seen[userID] {
			return fmt.Errorf("failed to commit ledger: user %s posted twice in one commit", userID)
		}
		seen[userID] = true

		u, ok := s.users[userID]
		if !ok || u.LedgerVersion != p.Entry.Sequence-1 || int64(len(s.ledger[userID])) != p.Entry.Sequence-1 {
			conflict = true
		}
	}

	updated := make([]interface{}, len(transitions))
	for i, t := range transitions {
		record, err := s.transitioned(t)
		if err != nil {
			return err
		}
		updated[i] = record
	}
	if conflict {
		return storage.ErrVersionConflict
	}

	now := s.now()
	for _, p := range postings {
		entry := p.Entry
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		s.ledger[entry.UserId] = append(s.ledger[entry.UserId], entry)
		u := s.users[entry.UserId]
		u.WalletBalance = entry.BalanceAfter
		u.LedgerVersion = entry.Sequence
		u.UpdatedAt = now
		s.users[entry.UserId] = u
	}
	for _, record := range updated {
		s.store(record)
	}
	return nil
}

// --- transitions ---

func (s *Store) ApplyTransition(_ context.Context, t storage.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.transitioned(t)
	if err != nil {
		return err
	}
	s.store(record)
	return nil
}

// transitioned returns the record after t without storing it. Records are
// round-tripped through their JSON form, whose field names match the stored
// attribute names.
func (s *Store) transitioned(t storage.Transition) (interface{}, error) {
	var current interface{}
	switch t.Entity {
	case storage.EntityReferral:
		r, ok := s.referrals[t.ID]
		if !ok {
			return nil, storage.ErrNotFound
		}
		current = r
	case storage.EntityPayout:
		p, ok := s.payouts[t.ID]
		if !ok {
			return nil, storage.ErrNotFound
		}
		current = p
	default:
		return nil, fmt.Errorf("unknown entity %q", t.Entity)
	}

	attrs, err := toAttributes(current)
	if err != nil {
		return nil, err
	}

	if t.From != "" && attrs["status"] != t.From {
		return nil, storage.ErrConditionFailed
	}
	for name, want := range t.Match {
		got, ok := attrs[name]
		if !ok {
			return nil, storage.ErrConditionFailed
		}
		normalized, err := normalize(want)
		if err != nil {
			return nil, err
		}
		if !reflect.DeepEqual(got, normalized) {
			return nil, storage.ErrConditionFailed
		}
	}

	if t.To != "" {
		attrs["status"] = t.To
	}
	for name, v := range t.Set {
		normalized, err := normalize(v)
		if err != nil {
			return nil, err
		}
		attrs[name] = normalized
	}
	attrs["updated_at"] = s.now().Format(time.RFC3339Nano)
	for _, name := range t.Remove {
		delete(attrs, name)
	}
	for name, delta := range t.Add {
		n, _ := attrs[name].(float64)
		attrs[name] = n + float64(delta)
	}

	switch t.Entity {
	case storage.EntityReferral:
		var r models.Referral
		if err := fromAttributes(attrs, &r); err != nil {
			return nil, err
		}
		return r, nil
	default:
		var p models.Payout
		if err := fromAttributes(attrs, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (s *Store) store(record interface{}) {
	switch r := record.(type) {
	case models.Referral:
		s.referrals[r.Id] = r
	case models.Payout:
		s.payouts[r.Id] = r
	}
}

func toAttributes(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	var attrs map[string]interface{}
	if err := json.Unmarshal(b, &attrs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return attrs, nil
}

func fromAttributes(attrs map[string]interface{}, out interface{}) error {
	b, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("failed to marshal attributes: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to unmarshal attributes: %w", err)
	}
	return nil
}

func normalize(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return out, nil
}

// --- referrals ---

func (s *Store) GetReferral(_ context.Context, id string) (*models.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.referrals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &r, nil
}

func (s *Store) CreateReferral(_ context.Context, referral *models.Referral) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.referrals[referral.Id]; ok {
		return storage.ErrAlreadyExists
	}
	now := s.now()
	if referral.CreatedAt.IsZero() {
		referral.CreatedAt = now
	}
	referral.UpdatedAt = now
	s.referrals[referral.Id] = *referral
	return nil
}

func (s *Store) ListReferralsByStatus(_ context.Context, status models.ReferralStatus) ([]models.Referral, error) {
	out := s.filterReferrals(func(r models.Referral) bool { return r.Status == status })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListReferralsByReferrer(_ context.Context, referrerID string) ([]models.Referral, error) {
	return s.filterReferrals(func(r models.Referral) bool { return r.ReferrerId == referrerID }), nil
}

func (s *Store) ListReferralsByCode(_ context.Context, code string) ([]models.Referral, error) {
	return s.filterReferrals(func(r models.Referral) bool { return r.ReferralCode == code }), nil
}

func (s *Store) filterReferrals(match func(models.Referral) bool) []models.Referral {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Referral
	for _, id := range sortedKeys(s.referrals) {
		if r := s.referrals[id]; match(r) {
			out = append(out, r)
		}
	}
	return out
}

// --- campaigns ---

func (s *Store) GetCampaign(_ context.Context, code string) (*models.CampaignReferral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[code]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListCampaigns(_ context.Context) ([]models.CampaignReferral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CampaignReferral
	for _, code := range sortedKeys(s.campaigns) {
		out = append(out, s.campaigns[code])
	}
	return out, nil
}

func (s *Store) CreateCampaign(_ context.Context, campaign *models.CampaignReferral) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[campaign.Code]; ok {
		return storage.ErrAlreadyExists
	}
	now := s.now()
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}
	campaign.UpdatedAt = now
	s.campaigns[campaign.Code] = *campaign
	return nil
}

func (s *Store) IncrementCampaignStats(_ context.Context, code string, delta storage.CampaignStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[code]
	if !ok {
		return storage.ErrNotFound
	}
	c.TotalSignups += delta.Signups
	c.TotalCompanions += delta.Companions
	c.TotalSeekers += delta.Seekers
	c.UpdatedAt = s.now()
	s.campaigns[code] = c
	return nil
}

func (s *Store) SetCampaignStats(_ context.Context, code string, stats storage.CampaignStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[code]
	if !ok {
		return storage.ErrNotFound
	}
	c.TotalSignups = stats.Signups
	c.TotalCompanions = stats.Companions
	c.TotalSeekers = stats.Seekers
	c.UpdatedAt = s.now()
	s.campaigns[code] = c
	return nil
}

// --- payouts ---

func (s *Store) GetPayout(_ context.Context, id string) (*models.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payouts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListPayoutsByStatus(_ context.Context, status models.PayoutStatus) ([]models.Payout, error) {
	out := s.filterPayouts(func(p models.Payout) bool { return p.Status == status })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListPayoutsByCompanion(_ context.Context, companionID string) ([]models.Payout, error) {
	return s.filterPayouts(func(p models.Payout) bool { return p.CompanionId == companionID }), nil
}

func (s *Store) filterPayouts(match func(models.Payout) bool) []models.Payout {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payout
	for _, id := range sortedKeys(s.payouts) {
		if p := s.payouts[id]; match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) CreatePayout(_ context.Context, payout *models.Payout, reservation *storage.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payouts[payout.Id]; ok {
		return storage.ErrAlreadyExists
	}
	if reservation != nil {
		if err := s.commit([]storage.Posting{*reservation}, nil); err != nil {
			return err
		}
	}
	now := s.now()
	if payout.CreatedAt.IsZero() {
		payout.CreatedAt = now
	}
	payout.UpdatedAt = now
	s.payouts[payout.Id] = *payout
	return nil
}

// --- notifications ---

func (s *Store) SaveNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[n.Id]; ok {
		return nil
	}
	s.notifications[n.Id] = *n
	return nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, limit int32) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserId == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > int(limit) {
		out = out[:limit]
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
