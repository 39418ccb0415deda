// Package advisor runs the recommendation quiz flow: profile in, ranked
// suggestions out. Generated sets are cached in the store per user and only
// regenerated on an explicit reset.
package advisor

import (
	"context"
	"time"

	"github.com/finsightapp/finsight/internal/common"
	"github.com/finsightapp/finsight/internal/interfaces"
	"github.com/finsightapp/finsight/internal/models"
)

// Service implements AdvisorService
type Service struct {
	storage interfaces.StorageManager
	client  interfaces.AdvisorClient
	logger  *common.Logger
	now     func() time.Time // injectable clock for testing
}

// NewService creates a new advisor service
func NewService(storage interfaces.StorageManager, client interfaces.AdvisorClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the cached recommendation set, or models.ErrNotFound when the
// user has not completed the quiz (or is unauthenticated).
func (s *Service) Get(ctx context.Context) (*models.RecommendationSet, error) {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return nil, models.ErrNotFound
	}
	return s.storage.AdvisorStore().GetRecommendations(ctx, userID)
}

// Generate maps a quiz profile to recommendations and caches the result.
// Generation failures leave any previously cached set intact.
func (s *Service) Generate(ctx context.Context, profile *models.RiskProfile) (*models.RecommendationSet, error) {
	if profile == nil || profile.RiskTolerance == "" {
		return nil, models.NewValidationError("risk_tolerance", "must not be empty")
	}
	if profile.HorizonYears <= 0 {
		return nil, models.NewValidationError("horizon_years", "must be greater than zero")
	}

	userID := common.ResolveUserID(ctx)
	profile.UserID = userID
	profile.UpdatedAt = s.now().UTC()

	items, err := s.client.GenerateRecommendations(ctx, profile)
	if err != nil {
		return nil, err
	}

	set := &models.RecommendationSet{
		UserID:      userID,
		Profile:     *profile,
		Items:       items,
		GeneratedAt: s.now().UTC(),
	}

	if userID == "" {
		// Ephemeral mode: serve the set without caching.
		return set, nil
	}

	// Cache write is best-effort: a failed save costs a regeneration on the
	// next visit, nothing more.
	if err := s.storage.AdvisorStore().SaveRecommendations(ctx, set); err != nil {
		s.logger.Warn().Err(err).Msg("Recommendation cache write dropped")
	}

	s.logger.Info().
		Str("risk", profile.RiskTolerance).
		Int("items", len(items)).
		Msg("Recommendations generated")

	return set, nil
}

// Reset discards the cached recommendations so the next quiz regenerates.
func (s *Service) Reset(ctx context.Context) error {
	userID := common.ResolveUserID(ctx)
	if userID == "" {
		return nil
	}
	return s.storage.AdvisorStore().DeleteRecommendations(ctx, userID)
}

// Ensure Service implements AdvisorService
var _ interfaces.AdvisorService = (*Service)(nil)
