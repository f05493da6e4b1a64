// File: database/repository/catalog/interface.go
package catalogRepo

import (
	"context"

	"labcart/config"
	"labcart/database"
	"labcart/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogRepository is the read-only test/lab catalog the checkout flow
// consumes. The catalog itself is owned by the vendor onboarding system.
type CatalogRepository interface {
	GetTestsByNames(ctx context.Context, names []string) ([]models.LabTest, error)
	GetTestByID(ctx context.Context, id string) (*models.LabTest, error)
	GetLabsOfferingTests(ctx context.Context, names []string) ([]models.Lab, error)
	GetLabByName(ctx context.Context, name string) (*models.Lab, error)
}

type mongoCatalogRepo struct {
	testColl *mongo.Collection
	labColl  *mongo.Collection
}

// NewMongoCatalogRepo constructs a new MongoDB CatalogRepository.
func NewMongoCatalogRepo() CatalogRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &mongoCatalogRepo{
		testColl: db.Collection("tests"),
		labColl:  db.Collection("labs"),
	}
}
