package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rental-api/domain"
)

const propertiesCollection = "properties"

// PropertyFilter son los criterios combinables del camino conjuntivo.
// Zero values mean "no constraint" except Status, which is always applied.
type PropertyFilter struct {
	City     string
	Type     domain.PropertyType
	MinPrice *float64
	MaxPrice *float64
	Status   domain.PropertyStatus
}

// PropertyRepository define la interfaz del store de propiedades.
type PropertyRepository interface {
	Create(ctx context.Context, p *domain.Property) error
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Update(ctx context.Context, p *domain.Property) error
	Delete(ctx context.Context, id string) error

	FindByStatus(ctx context.Context, status domain.PropertyStatus, page, size int) ([]domain.Property, int, error)
	FindByCityAndStatus(ctx context.Context, city string, status domain.PropertyStatus, page, size int) ([]domain.Property, int, error)
	FindByTypeAndStatus(ctx context.Context, t domain.PropertyType, status domain.PropertyStatus, page, size int) ([]domain.Property, int, error)
	FindByPriceBetweenAndStatus(ctx context.Context, min, max float64, status domain.PropertyStatus, page, size int) ([]domain.Property, int, error)
	FindByOwner(ctx context.Context, ownerID string, page, size int) ([]domain.Property, int, error)
	FindFiltered(ctx context.Context, f PropertyFilter, page, size int) ([]domain.Property, int, error)

	// FindNear retorna todas las propiedades dentro del radio, sin paginar
	// y sin filtrar por status: el caller aplica los post-filtros.
	FindNear(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.Property, error)
}

type propertyRepository struct {
	collection *mongo.Collection
}

// NewPropertyRepository crea el repositorio de propiedades sobre MongoDB.
func NewPropertyRepository(db *mongo.Database) PropertyRepository {
	return &propertyRepository{collection: db.Collection(propertiesCollection)}
}

func (r *propertyRepository) Create(ctx context.Context, p *domain.Property) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.collection.InsertOne(ctx, p)
	return err
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	var p domain.Property
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: property %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepository) Update(ctx context.Context, p *domain.Property) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: property %s", domain.ErrNotFound, p.ID)
	}
	return nil
}

func (r *propertyRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: property %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *propertyRepository) FindByStatus(ctx context.Context, status domain.PropertyStatus, page, size int) ([]domain.Property, int, error) {
	return r.findPage(ctx, bson.M{"status": status}, page, size)
}

func (r *propertyRepository) FindByCityAndStatus(ctx context.Context, city string, status domain.PropertyStatus, page, size int) ([]domain.Property, int, error) {
	return r.findPage(ctx, bson.M{"city": city, "status": status}, page, size)
}

func (r *propertyRepository) FindByTypeAndStatus(ctx context.Context, t domain.PropertyType, status domain.PropertyStatus, page, size int) ([]domain.Property, int, error) {
	return r.findPage(ctx, bson.M{"type": t, "status": status}, page, size)
}

func (r *propertyRepository) FindByPriceBetweenAndStatus(ctx context.Context, min, max float64, status domain.PropertyStatus, page, size int) ([]domain.Property, int, error) {
	return r.findPage(ctx, bson.M{
		"price":  bson.M{"$gte": min, "$lte": max},
		"status": status,
	}, page, size)
}

func (r *propertyRepository) FindByOwner(ctx context.Context, ownerID string, page, size int) ([]domain.Property, int, error) {
	return r.findPage(ctx, bson.M{"owner_id": ownerID}, page, size)
}

func (r *propertyRepository) FindFiltered(ctx context.Context, f PropertyFilter, page, size int) ([]domain.Property, int, error) {
	filter := bson.M{"status": f.Status}
	if f.City != "" {
		filter["city"] = f.City
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return r.findPage(ctx, filter, page, size)
}

func (r *propertyRepository) FindNear(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.Property, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radiusMeters,
			},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var properties []domain.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// findPage ejecuta count + find con skip/limit, ordenado por created_at desc.
func (r *propertyRepository) findPage(ctx context.Context, filter bson.M, page, size int) ([]domain.Property, int, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSkip(int64(page * size)).
		SetLimit(int64(size)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	properties := make([]domain.Property, 0, size)
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, 0, err
	}
	return properties, int(total), nil
}
