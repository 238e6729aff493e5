package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/fincore/internal/id"
	"github.com/cleared-dev/fincore/internal/logger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/store"
)

// AccountInput holds the mutable fields of an account.
type AccountInput struct {
	Code       string
	Name       string
	Type       model.AccountType // derived from the code prefix when empty
	ParentCode string
	Currency   string
	Tags       []string
}

// Service manages a tenant's chart of accounts.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a chart of accounts Service.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// SeedTemplate installs a template chart unless the tenant already has accounts.
// Returns the number of accounts created.
func (s *Service) SeedTemplate(ctx context.Context, tenantID, templateName string) (int, error) {
	tpl, err := LoadTemplate(templateName)
	if err != nil {
		return 0, err
	}

	var seeded int
	err = s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		n, err := Seed(data, tpl.Inputs(), s.now())
		seeded = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("seeding chart of accounts: %w", err)
	}

	log := logger.ForTenant(ctx, tenantID)
	log.Info().Str("template", tpl.Name).Int("accounts", seeded).Msg("chart of accounts seeded")
	return seeded, nil
}

// UpsertAccount updates the account with a matching code or inserts a new one.
func (s *Service) UpsertAccount(ctx context.Context, tenantID string, in AccountInput) (model.Account, error) {
	var acct model.Account
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		a, err := Upsert(data, in, s.now())
		acct = a
		return err
	})
	if err != nil {
		return model.Account{}, fmt.Errorf("upserting account: %w", err)
	}
	return acct, nil
}

// Import upserts every account of a chart, e.g. one read from CSV.
func (s *Service) Import(ctx context.Context, tenantID string, inputs []AccountInput) (int, error) {
	err := s.store.Update(ctx, tenantID, func(data *model.FinanceData) error {
		now := s.now()
		for i, in := range inputs {
			if _, err := Upsert(data, in, now); err != nil {
				return fmt.Errorf("account %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("importing accounts: %w", err)
	}
	return len(inputs), nil
}

// List returns all accounts of a tenant, newest first.
func (s *Service) List(ctx context.Context, tenantID string) ([]model.Account, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return data.Accounts, nil
}

// Get returns an account by code.
func (s *Service) Get(ctx context.Context, tenantID, code string) (model.Account, error) {
	data, err := s.store.Load(ctx, tenantID)
	if err != nil {
		return model.Account{}, err
	}
	a, ok := data.FindAccount(code)
	if !ok {
		return model.Account{}, &model.NotFoundError{Kind: "account", ID: code}
	}
	return a, nil
}

// Seed inserts inputs into an empty chart. A chart with any account is left
// untouched and 0 is returned.
func Seed(data *model.FinanceData, inputs []AccountInput, now time.Time) (int, error) {
	if len(data.Accounts) > 0 {
		return 0, nil
	}
	for _, in := range inputs {
		if _, err := Upsert(data, in, now); err != nil {
			return 0, err
		}
	}
	return len(inputs), nil
}

// Upsert applies in to data's chart. Matching is by exact code; parent codes
// are not checked against the chart.
func Upsert(data *model.FinanceData, in AccountInput, now time.Time) (model.Account, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" {
		return model.Account{}, model.Invalid("code", "account code is required")
	}
	if in.Name == "" {
		return model.Account{}, model.Invalid("name", "account name is required")
	}
	if in.Type == "" {
		in.Type = model.TypeFromCode(in.Code)
	}
	if !in.Type.Valid() {
		return model.Account{}, model.Invalid("type", "account %s has unknown type %q", in.Code, in.Type)
	}

	for i, a := range data.Accounts {
		if a.Code != in.Code {
			continue
		}
		a.Name = in.Name
		a.Type = in.Type
		a.ParentCode = in.ParentCode
		a.Currency = in.Currency
		a.Tags = in.Tags
		a.UpdatedAt = now
		data.Accounts[i] = a
		return a, nil
	}

	acct := model.Account{
		ID:         id.New(),
		Code:       in.Code,
		Name:       in.Name,
		Type:       in.Type,
		ParentCode: in.ParentCode,
		Currency:   in.Currency,
		Tags:       in.Tags,
		CreatedAt:  now,
	}
	data.Accounts = append([]model.Account{acct}, data.Accounts...)
	return acct, nil
}

// Chart provides in-memory lookup over a chart of accounts.
type Chart struct {
	accounts []model.Account
	byCode   map[string]model.Account
}

// NewChart indexes accounts by code.
func NewChart(accounts []model.Account) *Chart {
	byCode := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a
	}
	return &Chart{accounts: accounts, byCode: byCode}
}

// Get returns an account by code.
func (c *Chart) Get(code string) (model.Account, bool) {
	a, ok := c.byCode[code]
	return a, ok
}

// Exists reports whether an account code exists.
func (c *Chart) Exists(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

// TypeOf resolves the type of a code: the chart entry wins, the code prefix
// is the fallback.
func (c *Chart) TypeOf(code string) model.AccountType {
	if a, ok := c.byCode[code]; ok && a.Type.Valid() {
		return a.Type
	}
	return model.TypeFromCode(code)
}

// ByType returns all accounts of the given type.
func (c *Chart) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range c.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}
