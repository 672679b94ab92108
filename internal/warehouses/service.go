package warehouse

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/db/models"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/enums"
	pkgerrors "github.com/vijayg-dev/warehouse-listing-backend/pkg/errors"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/images"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/logger"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/mailer"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/pagination"
	"github.com/vijayg-dev/warehouse-listing-backend/pkg/storage"
)

const (
	defaultFeaturedLimit = 6
	maxFeaturedLimit     = 20
	citySuggestionLimit  = 10
	publicStatsCacheKey  = "public_stats"
)

// Service exposes the listing lifecycle for owners, admins and the public.
type Service interface {
	Create(ctx context.Context, ownerID string, input CreateInput, files []*multipart.FileHeader) (*WarehouseDTO, error)
	Update(ctx context.Context, actorID, id string, input UpdateInput, files []*multipart.FileHeader) (*WarehouseDTO, error)
	Delete(ctx context.Context, actorID string, isAdmin bool, id string) error
	Get(ctx context.Context, actorID string, isAdmin bool, id string) (*WarehouseDTO, error)
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	OwnerStats(ctx context.Context, ownerID string) (*OwnerStatsDTO, error)

	Approve(ctx context.Context, adminID, id, comment string) (*WarehouseDTO, error)
	Reject(ctx context.Context, adminID, id, comment string) (*WarehouseDTO, error)
	AdminUpdate(ctx context.Context, id string, input CreateInput) (*WarehouseDTO, error)
	DashboardStats(ctx context.Context) (*DashboardStatsDTO, error)

	PublicGet(ctx context.Context, id string) (*WarehouseDTO, error)
	PublicStats(ctx context.Context) (*PublicStatsDTO, error)
	Featured(ctx context.Context, limit int) ([]WarehouseDTO, error)
	Cities(ctx context.Context, prefix string) ([]string, error)
}

type userLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type statsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	users     userLoader
	files     storage.FileStore
	notifier  mailer.Notifier
	resolver  images.Resolver
	cache     statsCache
	cacheTTL  time.Duration
	maxImages int
	logg      *logger.Logger
}

// NewService constructs the listing service. cache may be nil; everything else
// is required.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	users userLoader,
	files storage.FileStore,
	notifier mailer.Notifier,
	resolver images.Resolver,
	cache statsCache,
	cacheTTL time.Duration,
	maxImages int,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if files == nil {
		return nil, fmt.Errorf("file store required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxImages <= 0 {
		maxImages = 5
	}
	return &service{
		repo:      repo,
		dbClient:  dbClient,
		users:     users,
		files:     files,
		notifier:  notifier,
		resolver:  resolver,
		cache:     cache,
		cacheTTL:  cacheTTL,
		maxImages: maxImages,
		logg:      logg,
	}, nil
}

func (s *service) Create(ctx context.Context, ownerID string, input CreateInput, files []*multipart.FileHeader) (*WarehouseDTO, error) {
	input = input.trimmed()
	if err := input.validate(); err != nil {
		return nil, err
	}
	if len(files) > s.maxImages {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("a listing may carry at most %d images", s.maxImages))
	}

	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown account")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}
	if !owner.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	dup, err := s.repo.FindDuplicate(ctx, input.Name, input.Address, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking for duplicate listing")
	}
	if dup != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a listing with this name and address already exists")
	}

	saved, err := s.saveUploads(ctx, files)
	if err != nil {
		return nil, err
	}

	wh := input.toModel()
	wh.OwnerID = ownerID
	wh.Images = images.Encode(saved)
	wh.Status = enums.ApprovalPending

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, wh); err != nil {
			return err
		}
		return repo.CreateApproval(ctx, &models.WarehouseApproval{
			WarehouseID: wh.ID,
			Status:      enums.ApprovalPending,
		})
	})
	if err != nil {
		s.removeFiles(ctx, saved)
		if db.IsUniqueViolation(err, "idx_warehouses_name_address") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a listing with this name and address already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating listing")
	}

	ctx = s.logg.WithWarehouseID(ctx, wh.ID)
	s.logg.Info(ctx, "listing submitted for review")

	dto := toDTO(wh, s.resolver, nil)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, actorID, id string, input UpdateInput, files []*multipart.FileHeader) (*WarehouseDTO, error) {
	wh, err := s.loadListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh.OwnerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the listing owner may edit it")
	}

	input.CreateInput = input.CreateInput.trimmed()
	if err := input.CreateInput.validate(); err != nil {
		return nil, err
	}

	dup, err := s.repo.FindDuplicate(ctx, input.Name, input.Address, wh.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking for duplicate listing")
	}
	if dup != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a listing with this name and address already exists")
	}

	existing := images.Decode(wh.Images)
	kept := intersect(existing, input.KeepImages)
	if len(kept)+len(files) > s.maxImages {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("a listing may carry at most %d images", s.maxImages))
	}

	saved, err := s.saveUploads(ctx, files)
	if err != nil {
		return nil, err
	}
	finalImages := append(append([]string{}, kept...), saved...)

	capturedVersion := wh.Version
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		updates := input.CreateInput.toUpdatesMap()
		updates["images"] = images.Encode(finalImages)
		updates["status"] = enums.ApprovalPending
		updates["version"] = capturedVersion + 1

		res := tx.WithContext(ctx).
			Model(&models.Warehouse{}).
			Where("id = ? AND version = ?", wh.ID, capturedVersion).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "the listing changed while you were editing it")
		}

		repo := s.repo.WithTx(tx)
		approval, err := repo.FindApprovalByWarehouse(ctx, wh.ID)
		if err != nil {
			return err
		}
		approval.Status = enums.ApprovalPending
		approval.AdminComment = ""
		approval.ReviewedBy = ""
		approval.ReviewedAt = nil
		return repo.SaveApproval(ctx, approval)
	})
	if err != nil {
		s.removeFiles(ctx, saved)
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating listing")
	}

	// Files the owner dropped are no longer referenced anywhere.
	s.removeFiles(ctx, difference(existing, kept))

	updated, err := s.loadListing(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(updated, s.resolver, nil)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actorID string, isAdmin bool, id string) error {
	wh, err := s.loadListing(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && wh.OwnerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the listing owner may delete it")
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteApprovalByWarehouse(ctx, wh.ID); err != nil {
			return err
		}
		if err := repo.DeleteAnalyticsByWarehouse(ctx, wh.ID); err != nil {
			return err
		}
		return repo.Delete(ctx, wh.ID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting listing")
	}

	s.removeFiles(ctx, images.Decode(wh.Images))

	ctx = s.logg.WithWarehouseID(ctx, wh.ID)
	s.logg.Info(ctx, "listing deleted")
	return nil
}

func (s *service) Get(ctx context.Context, actorID string, isAdmin bool, id string) (*WarehouseDTO, error) {
	wh, err := s.loadListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && wh.OwnerID != actorID && wh.Status != enums.ApprovalApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}

	var approvalDTO *models.WarehouseApproval
	if isAdmin || wh.OwnerID == actorID {
		approval, err := s.repo.FindApprovalByWarehouse(ctx, wh.ID)
		if err == nil {
			approvalDTO = approval
		} else if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading approval record")
		}
	}

	dto := toDTO(wh, s.resolver, approvalDTO)
	return &dto, nil
}

func (s *service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	q.Page.Limit = pagination.NormalizeLimit(q.Page.Limit)
	if q.Page.Page < 1 {
		q.Page.Page = 1
	}

	rows, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "querying listings")
	}

	return &ListResult{
		Items: toDTOs(rows, s.resolver),
		Meta:  pagination.BuildMeta(q.Page, total),
	}, nil
}

func (s *service) OwnerStats(ctx context.Context, ownerID string) (*OwnerStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting listings")
	}
	views, err := s.repo.SumViews(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing views")
	}

	now := time.Now()
	current, err := s.repo.CountCreatedSince(ctx, ownerID, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting recent listings")
	}
	priorWindow, err := s.repo.CountCreatedSince(ctx, ownerID, now.AddDate(0, 0, -60))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting prior listings")
	}
	previous := priorWindow - current

	return &OwnerStatsDTO{
		Total:      counts[enums.ApprovalPending] + counts[enums.ApprovalApproved] + counts[enums.ApprovalRejected],
		Pending:    counts[enums.ApprovalPending],
		Approved:   counts[enums.ApprovalApproved],
		Rejected:   counts[enums.ApprovalRejected],
		TotalViews: views,
		GrowthRate: growthRate(current, previous),
	}, nil
}

func (s *service) Approve(ctx context.Context, adminID, id, comment string) (*WarehouseDTO, error) {
	return s.review(ctx, adminID, id, strings.TrimSpace(comment), enums.ApprovalApproved)
}

func (s *service) Reject(ctx context.Context, adminID, id, comment string) (*WarehouseDTO, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a rejection comment is required")
	}
	return s.review(ctx, adminID, id, comment, enums.ApprovalRejected)
}

func (s *service) review(ctx context.Context, adminID, id, comment string, status enums.ApprovalStatus) (*WarehouseDTO, error) {
	wh, err := s.loadListing(ctx, id)
	if err != nil {
		return nil, err
	}
	capturedVersion := wh.Version

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		affected, err := repo.UpdateStatusGuarded(ctx, wh.ID, capturedVersion, status)
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "the listing was edited while under review")
		}

		approval, err := repo.FindApprovalByWarehouse(ctx, wh.ID)
		if err != nil {
			return err
		}
		now := time.Now()
		approval.Status = status
		approval.AdminComment = comment
		approval.ReviewedBy = adminID
		approval.ReviewedAt = &now
		return repo.SaveApproval(ctx, approval)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording review decision")
	}

	s.notifyOwner(wh, status, comment)

	updated, err := s.loadListing(ctx, id)
	if err != nil {
		return nil, err
	}
	approval, err := s.repo.FindApprovalByWarehouse(ctx, updated.ID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading approval record")
	}

	dto := toDTO(updated, s.resolver, approval)
	return &dto, nil
}

func (s *service) AdminUpdate(ctx context.Context, id string, input CreateInput) (*WarehouseDTO, error) {
	wh, err := s.loadListing(ctx, id)
	if err != nil {
		return nil, err
	}

	input = input.trimmed()
	if err := input.validate(); err != nil {
		return nil, err
	}

	dup, err := s.repo.FindDuplicate(ctx, input.Name, input.Address, wh.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking for duplicate listing")
	}
	if dup != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a listing with this name and address already exists")
	}

	// Admin edits keep the moderation status but bump the version so a
	// concurrent owner edit cannot silently overwrite them.
	updates := input.toUpdatesMap()
	updates["version"] = wh.Version + 1

	res := s.repo.db.WithContext(ctx).
		Model(&models.Warehouse{}).
		Where("id = ? AND version = ?", wh.ID, wh.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating listing")
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "the listing changed while you were editing it")
	}

	updated, err := s.loadListing(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(updated, s.resolver, nil)
	return &dto, nil
}

func (s *service) DashboardStats(ctx context.Context) (*DashboardStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting listings")
	}
	recent, err := s.repo.CountCreatedSince(ctx, "", time.Now().AddDate(0, 0, -7))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting recent listings")
	}
	views, err := s.repo.SumViews(ctx, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing views")
	}

	return &DashboardStatsDTO{
		Total:        counts[enums.ApprovalPending] + counts[enums.ApprovalApproved] + counts[enums.ApprovalRejected],
		Pending:      counts[enums.ApprovalPending],
		Approved:     counts[enums.ApprovalApproved],
		Rejected:     counts[enums.ApprovalRejected],
		CreatedLast7: recent,
		TotalViews:   views,
	}, nil
}

func (s *service) PublicGet(ctx context.Context, id string) (*WarehouseDTO, error) {
	wh, err := s.loadListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh.Status != enums.ApprovalApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	dto := toDTO(wh, s.resolver, nil)
	return &dto, nil
}

func (s *service) PublicStats(ctx context.Context) (*PublicStatsDTO, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.cache.CacheKey(publicStatsCacheKey)); err == nil && cached != "" {
			var stats PublicStatsDTO
			if err := unmarshalJSON(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	byType, err := s.repo.CountApprovedByType(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating listing types")
	}
	cities, err := s.repo.TopCities(ctx, 5)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating listing cities")
	}

	var total int64
	for _, bucket := range byType {
		total += bucket.Count
	}
	stats := &PublicStatsDTO{
		TotalApproved: total,
		ByType:        byType,
		TopCities:     cities,
	}

	if s.cache != nil {
		if payload, err := marshalJSON(stats); err == nil {
			if err := s.cache.Set(ctx, s.cache.CacheKey(publicStatsCacheKey), payload, s.cacheTTL); err != nil {
				s.logg.Warn(ctx, "caching public stats failed")
			}
		}
	}
	return stats, nil
}

func (s *service) Featured(ctx context.Context, limit int) ([]WarehouseDTO, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	if limit > maxFeaturedLimit {
		limit = maxFeaturedLimit
	}

	rows, err := s.repo.Featured(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading featured listings")
	}
	return toDTOs(rows, s.resolver), nil
}

func (s *service) Cities(ctx context.Context, prefix string) ([]string, error) {
	cities, err := s.repo.Cities(ctx, prefix, citySuggestionLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cities")
	}
	return cities, nil
}

func (s *service) loadListing(ctx context.Context, id string) (*models.Warehouse, error) {
	wh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading listing")
	}
	return wh, nil
}

// saveUploads writes every file, rolling back the already-written ones when a
// later file fails.
func (s *service) saveUploads(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	saved := make([]string, 0, len(files))
	for _, fh := range files {
		file, err := s.files.Save(ctx, fh)
		if err != nil {
			s.removeFiles(ctx, saved)
			if typed := pkgerrors.As(err); typed != nil {
				return nil, typed
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing upload")
		}
		saved = append(saved, file.Path)
	}
	return saved, nil
}

func (s *service) removeFiles(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	if err := s.files.Remove(ctx, paths...); err != nil {
		s.logg.Warn(ctx, "removing listing images failed")
	}
}

// notifyOwner delivers the review outcome without blocking the request.
func (s *service) notifyOwner(wh *models.Warehouse, status enums.ApprovalStatus, comment string) {
	email := wh.Email
	name := wh.Name
	go func() {
		ctx := context.Background()
		var err error
		if status == enums.ApprovalApproved {
			err = s.notifier.NotifyApproved(ctx, email, name)
		} else {
			err = s.notifier.NotifyRejected(ctx, email, name, comment)
		}
		if err != nil {
			s.logg.Warn(ctx, "sending review notification failed")
		}
	}()
}

func growthRate(current, previous int64) float64 {
	if previous <= 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (float64(current-previous) / float64(previous)) * 100
}

func intersect(existing, requested []string) []string {
	allowed := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		allowed[p] = struct{}{}
	}
	out := make([]string, 0, len(requested))
	for _, p := range requested {
		p = strings.TrimSpace(p)
		if _, ok := allowed[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func difference(all, kept []string) []string {
	keep := make(map[string]struct{}, len(kept))
	for _, p := range kept {
		keep[p] = struct{}{}
	}
	out := make([]string, 0, len(all))
	for _, p := range all {
		if _, ok := keep[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}
