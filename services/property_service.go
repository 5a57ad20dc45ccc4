package services

import (
	"context"
	"crypto/md5"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"rental-api/domain"
	"rental-api/dto"
	"rental-api/repositories"
)

// PropertyEventPublisher publica eventos de propiedades hacia otras
// instancias (invalidación de caché, indexación externa).
type PropertyEventPublisher interface {
	PublishPropertyEvent(action, propertyID string) error
}

// PropertyService define las operaciones sobre propiedades, incluida la
// búsqueda con caché.
type PropertyService interface {
	Search(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error)
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Create(ctx context.Context, ownerID string, req dto.PropertyRequest) (*domain.Property, error)
	Update(ctx context.Context, id string, actor domain.Actor, req dto.PropertyRequest) (*domain.Property, error)
	Delete(ctx context.Context, id string, actor domain.Actor) error
	ListByOwner(ctx context.Context, ownerID string, page, size int) (*dto.PropertyPage, error)

	// SetStatus es una operación interna invocada por el ciclo de vida de
	// las reservas. No chequea autorización: el caller es confiable.
	SetStatus(ctx context.Context, id string, status domain.PropertyStatus) (*domain.Property, error)

	// InvalidateSearchCache descarta todos los resultados cacheados.
	InvalidateSearchCache()
}

const (
	defaultPageSize    = 20
	defaultRadiusMeter = 5000
)

type propertyService struct {
	repo           repositories.PropertyRepository
	cache          repositories.CacheRepository
	publisher      PropertyEventPublisher
	cacheTTL       time.Duration
	legacyDispatch bool
	generation     atomic.Int64
	logger         *zap.Logger
}

// NewPropertyService crea el servicio de propiedades. publisher puede ser
// nil cuando no hay broker configurado.
func NewPropertyService(repo repositories.PropertyRepository, cache repositories.CacheRepository, publisher PropertyEventPublisher, cacheTTL time.Duration, legacyDispatch bool, logger *zap.Logger) PropertyService {
	return &propertyService{
		repo:           repo,
		cache:          cache,
		publisher:      publisher,
		cacheTTL:       cacheTTL,
		legacyDispatch: legacyDispatch,
		logger:         logger,
	}
}

// Search resuelve una búsqueda de propiedades. Los resultados se cachean
// bajo una clave que incluye el contador de generación: cada mutación rota
// la generación, con lo que toda búsqueda cacheada queda invalidada de una
// sola vez (las entradas viejas expiran por TTL).
func (s *propertyService) Search(ctx context.Context, req dto.SearchRequest) (*dto.SearchResponse, error) {
	if req.Page < 0 {
		return nil, fmt.Errorf("%w: page must not be negative", domain.ErrInvalidArgument)
	}
	if req.Size < 0 {
		return nil, fmt.Errorf("%w: size must not be negative", domain.ErrInvalidArgument)
	}
	if req.Size == 0 {
		req.Size = defaultPageSize
	}

	var propType domain.PropertyType
	if req.Type != "" {
		t, err := domain.ParsePropertyType(req.Type)
		if err != nil {
			return nil, err
		}
		propType = t
	}

	key := s.cacheKey(req)
	if properties, total, ok := s.cache.Get(key); ok {
		s.logger.Debug("search cache hit", zap.String("key", key))
		return s.searchResponse(req, properties, total), nil
	}

	var (
		properties []domain.Property
		total      int
		err        error
	)
	if s.legacyDispatch {
		properties, total, err = s.searchLegacy(ctx, req, propType)
	} else {
		properties, total, err = s.searchConjunctive(ctx, req, propType)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, properties, total, s.cacheTTL)
	return s.searchResponse(req, properties, total), nil
}

// searchLegacy reproduce el despacho del sistema original: el primer
// criterio no vacío gana, los demás se ignoran. La rama geo no filtra por
// status ni por city, sólo post-filtra type y precio en memoria.
func (s *propertyService) searchLegacy(ctx context.Context, req dto.SearchRequest, propType domain.PropertyType) ([]domain.Property, int, error) {
	if req.HasGeo() {
		nearby, err := s.findNearby(ctx, req)
		if err != nil {
			return nil, 0, err
		}
		filtered := filterProperties(nearby, func(p domain.Property) bool {
			return matchesType(p, propType) && matchesPrice(p, req.MinPrice, req.MaxPrice)
		})
		return paginateSlice(filtered, req.Page, req.Size)
	}

	if req.City != "" {
		return s.repo.FindByCityAndStatus(ctx, req.City, domain.PropertyStatusAvailable, req.Page, req.Size)
	}

	if propType != "" {
		return s.repo.FindByTypeAndStatus(ctx, propType, domain.PropertyStatusAvailable, req.Page, req.Size)
	}

	if req.MinPrice != nil || req.MaxPrice != nil {
		min, max := 0.0, math.MaxFloat64
		if req.MinPrice != nil {
			min = *req.MinPrice
		}
		if req.MaxPrice != nil {
			max = *req.MaxPrice
		}
		return s.repo.FindByPriceBetweenAndStatus(ctx, min, max, domain.PropertyStatusAvailable, req.Page, req.Size)
	}

	return s.repo.FindByStatus(ctx, domain.PropertyStatusAvailable, req.Page, req.Size)
}

// searchConjunctive compone todos los criterios presentes en una sola
// consulta. Con geo, el radio seleciona y el resto filtra en memoria,
// incluidos status y city, que la rama legacy omitía.
func (s *propertyService) searchConjunctive(ctx context.Context, req dto.SearchRequest, propType domain.PropertyType) ([]domain.Property, int, error) {
	if req.HasGeo() {
		nearby, err := s.findNearby(ctx, req)
		if err != nil {
			return nil, 0, err
		}
		filtered := filterProperties(nearby, func(p domain.Property) bool {
			if p.Status != domain.PropertyStatusAvailable {
				return false
			}
			if req.City != "" && p.City != req.City {
				return false
			}
			return matchesType(p, propType) && matchesPrice(p, req.MinPrice, req.MaxPrice)
		})
		return paginateSlice(filtered, req.Page, req.Size)
	}

	return s.repo.FindFiltered(ctx, repositories.PropertyFilter{
		City:     req.City,
		Type:     propType,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Status:   domain.PropertyStatusAvailable,
	}, req.Page, req.Size)
}

func (s *propertyService) findNearby(ctx context.Context, req dto.SearchRequest) ([]domain.Property, error) {
	if err := domain.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
		return nil, err
	}
	radius := float64(defaultRadiusMeter)
	if req.Radius != nil {
		if *req.Radius <= 0 {
			return nil, fmt.Errorf("%w: radius must be positive", domain.ErrInvalidArgument)
		}
		radius = *req.Radius
	}
	return s.repo.FindNear(ctx, *req.Latitude, *req.Longitude, radius)
}

func (s *propertyService) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *propertyService) Create(ctx context.Context, ownerID string, req dto.PropertyRequest) (*domain.Property, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	propType, err := domain.ParsePropertyType(req.Type)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	property := &domain.Property{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Country:     req.Country,
		Location:    domain.NewGeoPoint(*req.Longitude, *req.Latitude),
		Type:        propType,
		Price:       req.Price,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Area:        req.Area,
		Amenities:   req.Amenities,
		Images:      req.Images,
		OwnerID:     ownerID,
		Status:      domain.PropertyStatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, property); err != nil {
		return nil, err
	}

	s.logger.Info("property created", zap.String("property_id", property.ID), zap.String("owner_id", ownerID))
	s.afterMutation("create", property.ID)
	return property, nil
}

// Update reemplaza todos los campos mutables: los campos omitidos en el
// request quedan vacíos (full replace, not partial merge).
func (s *propertyService) Update(ctx context.Context, id string, actor domain.Actor, req dto.PropertyRequest) (*domain.Property, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanModify(actor, property.OwnerID) {
		return nil, fmt.Errorf("%w: cannot update property %s", domain.ErrUnauthorized, id)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	propType, err := domain.ParsePropertyType(req.Type)
	if err != nil {
		return nil, err
	}

	property.Title = req.Title
	property.Description = req.Description
	property.Address = req.Address
	property.City = req.City
	property.State = req.State
	property.ZipCode = req.ZipCode
	property.Country = req.Country
	property.Location = domain.NewGeoPoint(*req.Longitude, *req.Latitude)
	property.Type = propType
	property.Price = req.Price
	property.Bedrooms = req.Bedrooms
	property.Bathrooms = req.Bathrooms
	property.Area = req.Area
	property.Amenities = req.Amenities
	property.Images = req.Images
	property.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, property); err != nil {
		return nil, err
	}

	s.logger.Info("property updated", zap.String("property_id", id), zap.String("actor_id", actor.ID))
	s.afterMutation("update", id)
	return property, nil
}

func (s *propertyService) Delete(ctx context.Context, id string, actor domain.Actor) error {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !domain.CanModify(actor, property.OwnerID) {
		return fmt.Errorf("%w: cannot delete property %s", domain.ErrUnauthorized, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("property deleted", zap.String("property_id", id), zap.String("actor_id", actor.ID))
	s.afterMutation("delete", id)
	return nil
}

func (s *propertyService) SetStatus(ctx context.Context, id string, status domain.PropertyStatus) (*domain.Property, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	property.Status = status
	property.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, property); err != nil {
		return nil, err
	}

	s.logger.Info("property status changed", zap.String("property_id", id), zap.String("status", string(status)))
	s.afterMutation("update", id)
	return property, nil
}

func (s *propertyService) ListByOwner(ctx context.Context, ownerID string, page, size int) (*dto.PropertyPage, error) {
	if page < 0 || size < 0 {
		return nil, fmt.Errorf("%w: page and size must not be negative", domain.ErrInvalidArgument)
	}
	if size == 0 {
		size = defaultPageSize
	}

	properties, total, err := s.repo.FindByOwner(ctx, ownerID, page, size)
	if err != nil {
		return nil, err
	}

	return &dto.PropertyPage{
		Properties: properties,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages(total, size),
	}, nil
}

func (s *propertyService) InvalidateSearchCache() {
	gen := s.generation.Add(1)
	s.logger.Debug("search cache invalidated", zap.Int64("generation", gen))
}

// afterMutation rota la generación del caché y publica el evento al broker.
// La publicación es best-effort: un broker caído no debe fallar la escritura.
func (s *propertyService) afterMutation(action, propertyID string) {
	s.InvalidateSearchCache()
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishPropertyEvent(action, propertyID); err != nil {
		s.logger.Warn("failed to publish property event",
			zap.String("action", action),
			zap.String("property_id", propertyID),
			zap.Error(err))
	}
}

func (s *propertyService) searchResponse(req dto.SearchRequest, properties []domain.Property, total int) *dto.SearchResponse {
	if properties == nil {
		properties = []domain.Property{}
	}
	return &dto.SearchResponse{
		Properties: properties,
		Page:       req.Page,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: totalPages(total, req.Size),
	}
}

// cacheKey deriva la clave de caché de los criterios serializados más la
// generación vigente.
func (s *propertyService) cacheKey(req dto.SearchRequest) string {
	parts := []string{
		"lat:" + fmtFloat(req.Latitude),
		"lng:" + fmtFloat(req.Longitude),
		"radius:" + fmtFloat(req.Radius),
		"city:" + req.City,
		"type:" + strings.ToUpper(req.Type),
		"min:" + fmtFloat(req.MinPrice),
		"max:" + fmtFloat(req.MaxPrice),
		"page:" + strconv.Itoa(req.Page),
		"size:" + strconv.Itoa(req.Size),
		"gen:" + strconv.FormatInt(s.generation.Load(), 10),
	}
	hash := md5.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("search:%x", hash)
}

func fmtFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func filterProperties(properties []domain.Property, keep func(domain.Property) bool) []domain.Property {
	filtered := make([]domain.Property, 0, len(properties))
	for _, p := range properties {
		if keep(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func matchesType(p domain.Property, t domain.PropertyType) bool {
	return t == "" || p.Type == t
}

func matchesPrice(p domain.Property, min, max *float64) bool {
	if min != nil && p.Price < *min {
		return false
	}
	if max != nil && p.Price > *max {
		return false
	}
	return true
}
