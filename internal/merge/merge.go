// Package merge resolves ledger rows to accounts, creating unseen accounts
// and enriching known ones without ever blanking a populated field.
package merge

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/arrears/internal/columns"
	"github.com/cleared-dev/arrears/internal/locale"
	"github.com/cleared-dev/arrears/internal/model"
	"github.com/cleared-dev/arrears/internal/store"
)

// AddressPolicy decides whether a stored address may change.
type AddressPolicy string

const (
	// AddressFrozen keeps the first non-empty address.
	AddressFrozen AddressPolicy = "frozen"
	// AddressRefresh lets a later non-empty address replace it.
	AddressRefresh AddressPolicy = "refresh"
)

// Store is the account persistence the engine needs.
type Store interface {
	FindAccount(ctx context.Context, key model.AccountKey) (*model.Account, error)
	InsertAccount(ctx context.Context, a *model.Account) error
	UpdateAccount(ctx context.Context, a *model.Account) error
}

// Engine resolves accounts for one import run. It caches every account it
// has loaded or created, so it must not be shared between runs.
type Engine struct {
	policy AddressPolicy
	now    func() time.Time
	newID  func() string
	cache  map[model.AccountKey]*model.Account
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs overrides the identifier source.
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine returns an engine with an empty cache. An unknown policy is
// treated as AddressFrozen.
func NewEngine(policy AddressPolicy, opts ...Option) *Engine {
	if policy != AddressRefresh {
		policy = AddressFrozen
	}
	e := &Engine{
		policy: policy,
		now:    time.Now,
		newID:  uuid.NewString,
		cache:  make(map[model.AccountKey]*model.Account),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve returns the account for rec, creating it when its key is new and
// merging rec's non-empty fields into it otherwise.
func (e *Engine) Resolve(ctx context.Context, st Store, rec columns.Record) (*model.Account, bool, error) {
	in := FromRecord(rec)
	key := in.Key()

	acct, ok := e.cache[key]
	if !ok {
		found, err := st.FindAccount(ctx, key)
		switch {
		case errors.Is(err, store.ErrNotFound):
			in.ID = e.newID()
			in.CreatedAt = e.now()
			in.UpdatedAt = in.CreatedAt
			if err := st.InsertAccount(ctx, in); err != nil {
				return nil, false, err
			}
			e.cache[key] = in
			return in, true, nil
		case err != nil:
			return nil, false, err
		}
		acct = found
		e.cache[key] = acct
	}

	if Merge(acct, in, e.policy) {
		acct.UpdatedAt = e.now()
		if err := st.UpdateAccount(ctx, acct); err != nil {
			return nil, false, err
		}
	}
	return acct, false, nil
}

// FromRecord builds an unsaved account from a row.
func FromRecord(rec columns.Record) *model.Account {
	return &model.Account{
		Ls:            strings.TrimSpace(rec.Ls),
		AccrualCenter: rec.AccrualCenter,
		LsCode:        rec.LsCode,
		FullName:      rec.FullName,
		AddressRaw:    rec.Address,
		PremisesType:  NormalizePremises(rec.PremisesType),
		LsStatus:      rec.LsStatus,
		LsCloseDate:   locale.NullableDate(rec.LsCloseDate),
		LsType:        rec.LsType,
		MgmtStatus:    rec.MgmtStatus,
		Organization:  rec.Organization,
		GroupCompany:  rec.GroupCompany,
		Division:      rec.Division,
		DivisionHead:  rec.DivisionHead,
		ObjectName:    rec.ObjectName,
		District:      rec.District,
		House:         rec.House,
		AddressNo:     rec.AddressNo,
		RoomNo:        rec.RoomNo,
	}
}

// NormalizePremises maps "Отдельная квартира" to "Квартира".
func NormalizePremises(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "Отдельная квартира") {
		return "Квартира"
	}
	return s
}

// Merge copies in's non-empty fields into dst and reports whether dst
// changed. Key fields are never touched.
func Merge(dst, in *model.Account, policy AddressPolicy) bool {
	changed := false
	for _, f := range []struct{ cur, inc *string }{
		{&dst.LsCode, &in.LsCode},
		{&dst.FullName, &in.FullName},
		{&dst.AddressNorm, &in.AddressNorm},
		{&dst.PremisesType, &in.PremisesType},
		{&dst.LsStatus, &in.LsStatus},
		{&dst.LsType, &in.LsType},
		{&dst.MgmtStatus, &in.MgmtStatus},
		{&dst.Organization, &in.Organization},
		{&dst.GroupCompany, &in.GroupCompany},
		{&dst.Division, &in.Division},
		{&dst.DivisionHead, &in.DivisionHead},
		{&dst.ObjectName, &in.ObjectName},
		{&dst.District, &in.District},
		{&dst.House, &in.House},
		{&dst.AddressNo, &in.AddressNo},
		{&dst.RoomNo, &in.RoomNo},
	} {
		if pick(f.cur, *f.inc) {
			changed = true
		}
	}

	if in.AddressRaw != "" && (dst.AddressRaw == "" || policy == AddressRefresh) {
		if pick(&dst.AddressRaw, in.AddressRaw) {
			changed = true
		}
	}

	if in.LsCloseDate != nil && (dst.LsCloseDate == nil || !dst.LsCloseDate.Equal(*in.LsCloseDate)) {
		d := *in.LsCloseDate
		dst.LsCloseDate = &d
		changed = true
	}
	return changed
}

func pick(cur *string, incoming string) bool {
	if incoming == "" || *cur == incoming {
		return false
	}
	*cur = incoming
	return true
}
