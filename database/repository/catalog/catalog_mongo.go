// File: database/repository/catalog/catalog_mongo.go
package catalogRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labcart/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (r *mongoCatalogRepo) GetTestsByNames(ctx context.Context, names []string) ([]models.LabTest, error) {
	if len(names) == 0 {
		return []models.LabTest{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.testColl.Find(ctx, bson.M{"name": bson.M{"$in": names}})
	if err != nil {
		return nil, fmt.Errorf("catalog test lookup failed: %w", err)
	}
	defer cursor.Close(ctx)

	var tests []models.LabTest
	if err := cursor.All(ctx, &tests); err != nil {
		return nil, fmt.Errorf("decode catalog tests failed: %w", err)
	}
	return tests, nil
}

func (r *mongoCatalogRepo) GetTestByID(ctx context.Context, id string) (*models.LabTest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var test models.LabTest
	err := r.testColl.FindOne(ctx, bson.M{"id": id}).Decode(&test)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("catalog test %s not found", id)
		}
		return nil, fmt.Errorf("catalog test fetch failed: %w", err)
	}
	return &test, nil
}

// GetLabsOfferingTests returns every lab carrying at least one of the
// requested tests. Ranking is the matcher's job, not the repository's.
func (r *mongoCatalogRepo) GetLabsOfferingTests(ctx context.Context, names []string) ([]models.Lab, error) {
	if len(names) == 0 {
		return []models.Lab{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.labColl.Find(ctx, bson.M{"testsAvailable": bson.M{"$in": names}})
	if err != nil {
		return nil, fmt.Errorf("lab lookup failed: %w", err)
	}
	defer cursor.Close(ctx)

	var labs []models.Lab
	if err := cursor.All(ctx, &labs); err != nil {
		return nil, fmt.Errorf("decode labs failed: %w", err)
	}
	return labs, nil
}

func (r *mongoCatalogRepo) GetLabByName(ctx context.Context, name string) (*models.Lab, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var lab models.Lab
	err := r.labColl.FindOne(ctx, bson.M{"name": name}).Decode(&lab)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("lab %q not found", name)
		}
		return nil, fmt.Errorf("lab fetch failed: %w", err)
	}
	return &lab, nil
}
