package server

import (
	"context"
	"time"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
	"github.com/finsightapp/finsight/internal/refresh"

	"github.com/finsightapp/finsight/internal/app"
)

// mockQuoteService returns canned quotes keyed by symbol.
type mockQuoteService struct {
	quotes    map[string]models.Quote
	lookupErr error
}

func (m *mockQuoteService) Hydrate(symbols []string) map[string]models.Quote {
	out := make(map[string]models.Quote)
	for _, s := range symbols {
		if q, ok := m.quotes[models.NormalizeSymbol(s)]; ok {
			out[q.Symbol] = q
		}
	}
	return out
}

func (m *mockQuoteService) Lookup(_ context.Context, symbol string) (*models.Quote, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	if q, ok := m.quotes[models.NormalizeSymbol(symbol)]; ok {
		return &q, nil
	}
	return nil, models.ErrNotFound
}

func (m *mockQuoteService) RefreshDaily(context.Context, []string) {}

func (m *mockQuoteService) RefreshRealtime(context.Context, []models.RefreshTarget) {}

// mockPortfolioService records calls and serves canned holdings.
type mockPortfolioService struct {
	holdings []*models.HoldingView
	totals   *models.PortfolioTotals
	added    *models.HoldingRecord
	err      error

	updatedID     string
	updatedShares int64
	soldID        string
	soldShares    int64
	removedID     string
}

func (m *mockPortfolioService) ListHoldings(context.Context) ([]*models.HoldingView, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.holdings, nil
}

func (m *mockPortfolioService) AddHolding(_ context.Context, symbol, name string, shares int64) (*models.HoldingRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if shares <= 0 {
		return nil, models.NewValidationError("shares", "must be greater than zero")
	}
	m.added = &models.HoldingRecord{
		ID:     "h1",
		Symbol: models.NormalizeSymbol(symbol),
		Name:   name,
		Shares: shares,
	}
	return m.added, nil
}

func (m *mockPortfolioService) UpdateShares(_ context.Context, id string, shares int64) (*models.HoldingRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updatedID = id
	m.updatedShares = shares
	return &models.HoldingRecord{ID: id, Shares: shares}, nil
}

func (m *mockPortfolioService) SellShares(_ context.Context, id string, shares int64) error {
	if m.err != nil {
		return m.err
	}
	m.soldID = id
	m.soldShares = shares
	return nil
}

func (m *mockPortfolioService) RemoveHolding(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.removedID = id
	return nil
}

func (m *mockPortfolioService) Totals(context.Context) (*models.PortfolioTotals, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.totals != nil {
		return m.totals, nil
	}
	return &models.PortfolioTotals{}, nil
}

func (m *mockPortfolioService) RefreshTargets(context.Context) ([]models.RefreshTarget, error) {
	return nil, nil
}

// mockFinsightService serves canned insight records.
type mockFinsightService struct {
	records   []*models.FinsightRecord
	removedID string
	err       error
}

func (m *mockFinsightService) List(context.Context) ([]*models.FinsightRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *mockFinsightService) Add(_ context.Context, symbol, name, reason string) (*models.FinsightRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.FinsightRecord{
		ID:     "f1",
		Symbol: models.NormalizeSymbol(symbol),
		Name:   name,
		Reason: reason,
	}, nil
}

func (m *mockFinsightService) Remove(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.removedID = id
	return nil
}

// mockAdvisorService serves a canned recommendation set.
type mockAdvisorService struct {
	set      *models.RecommendationSet
	resetHit bool
	err      error
}

func (m *mockAdvisorService) Get(context.Context) (*models.RecommendationSet, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.set == nil {
		return nil, models.ErrNotFound
	}
	return m.set, nil
}

func (m *mockAdvisorService) Generate(_ context.Context, profile *models.RiskProfile) (*models.RecommendationSet, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.set = &models.RecommendationSet{
		Profile: *profile,
		Items:   []models.Recommendation{{Symbol: "VTI", Name: "Vanguard Total Market"}},
	}
	return m.set, nil
}

func (m *mockAdvisorService) Reset(context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.resetHit = true
	m.set = nil
	return nil
}

// mockUserStore is an in-memory user store for auth tests.
type mockUserStore struct {
	users map[string]*models.User // keyed by user ID
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*models.User)}
}

func (m *mockUserStore) GetUser(_ context.Context, userID string) (*models.User, error) {
	if u, ok := m.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (m *mockUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *mockUserStore) SaveUser(_ context.Context, user *models.User) error {
	copied := *user
	m.users[user.UserID] = &copied
	return nil
}

func (m *mockUserStore) DeleteUser(_ context.Context, userID string) error {
	delete(m.users, userID)
	return nil
}

func (m *mockUserStore) GetUserKV(context.Context, string, string) (*models.UserKeyValue, error) {
	return nil, models.ErrNotFound
}
func (m *mockUserStore) SetUserKV(context.Context, string, string, string) error { return nil }
func (m *mockUserStore) GetSystemKV(context.Context, string) (string, error) {
	return "", models.ErrNotFound
}
func (m *mockUserStore) SetSystemKV(context.Context, string, string) error { return nil }

// mockStorage satisfies interfaces.StorageManager for handler tests; only the
// user store is exercised through the middleware.
type mockStorage struct {
	users *mockUserStore
}

func (m *mockStorage) UserStore() interfaces.UserStore         { return m.users }
func (m *mockStorage) HoldingStore() interfaces.HoldingStore   { return nil }
func (m *mockStorage) FinsightStore() interfaces.FinsightStore { return nil }
func (m *mockStorage) AdvisorStore() interfaces.AdvisorStore   { return nil }
func (m *mockStorage) Close() error                            { return nil }

var (
	_ interfaces.QuoteService     = (*mockQuoteService)(nil)
	_ interfaces.PortfolioService = (*mockPortfolioService)(nil)
	_ interfaces.FinsightService  = (*mockFinsightService)(nil)
	_ interfaces.AdvisorService   = (*mockAdvisorService)(nil)
	_ interfaces.StorageManager   = (*mockStorage)(nil)
)

// testMocks bundles the mocks behind a test server for assertions.
type testMocks struct {
	quotes    *mockQuoteService
	portfolio *mockPortfolioService
	finsights *mockFinsightService
	advisor   *mockAdvisorService
	users     *mockUserStore
}

// newTestServer builds a Server over mock services with silent logging.
func newTestServer() (*Server, *testMocks) {
	mocks := &testMocks{
		quotes:    &mockQuoteService{quotes: make(map[string]models.Quote)},
		portfolio: &mockPortfolioService{},
		finsights: &mockFinsightService{},
		advisor:   &mockAdvisorService{},
		users:     newMockUserStore(),
	}

	logger := common.NewSilentLogger()
	a := &app.App{
		Config:           common.NewDefaultConfig(),
		Logger:           logger,
		Storage:          &mockStorage{users: mocks.users},
		QuoteService:     mocks.quotes,
		PortfolioService: mocks.portfolio,
		FinsightService:  mocks.finsights,
		AdvisorService:   mocks.advisor,
		Refresher:        refresh.NewRefresher(mocks.quotes, mocks.portfolio, logger, time.Hour, time.Hour),
		StartupTime:      time.Now(),
	}

	return NewServer(a), mocks
}
