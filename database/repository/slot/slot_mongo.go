package slotRepo

import (
	"context"
	"fmt"
	"time"

	"medirouter/config"
	"medirouter/database"
	"medirouter/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSlotRepo is the production SlotRepository. Conditional updates
// filter on id+version so concurrent writers cannot clobber each
// other's state transitions.
type MongoSlotRepo struct {
	coll *mongo.Collection
}

func NewMongoSlotRepo() *MongoSlotRepo {
	coll := database.MongoClient.
		Database(config.AppConfig.DatabaseName).
		Collection("doctor_slots")
	return &MongoSlotRepo{coll: coll}
}

func (r *MongoSlotRepo) Insert(ctx context.Context, slot models.DoctorSlot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.coll.InsertOne(ctx, slot); err != nil {
		return fmt.Errorf("failed to insert slot %s: %w", slot.ID, err)
	}
	return nil
}

func (r *MongoSlotRepo) GetByID(ctx context.Context, slotID string) (*models.DoctorSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var slot models.DoctorSlot
	err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slot %s: %w", slotID, err)
	}
	return &slot, nil
}

func (r *MongoSlotRepo) GetByToken(ctx context.Context, token string) (*models.DoctorSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var slot models.DoctorSlot
	err := r.coll.FindOne(ctx, bson.M{"status": models.SlotHeld, "hold_token": token}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slot by token: %w", err)
	}
	return &slot, nil
}

func (r *MongoSlotRepo) ListByDoctor(ctx context.Context, doctorID string) ([]models.DoctorSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cursor, err := r.coll.Find(ctx, bson.M{"doctor_id": doctorID})
	if err != nil {
		return nil, fmt.Errorf("failed to list slots for doctor %s: %w", doctorID, err)
	}
	defer cursor.Close(ctx)
	var slots []models.DoctorSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots for doctor %s: %w", doctorID, err)
	}
	return slots, nil
}

func (r *MongoSlotRepo) ListHeld(ctx context.Context) ([]models.DoctorSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cursor, err := r.coll.Find(ctx, bson.M{"status": models.SlotHeld})
	if err != nil {
		return nil, fmt.Errorf("failed to list held slots: %w", err)
	}
	defer cursor.Close(ctx)
	var slots []models.DoctorSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode held slots: %w", err)
	}
	return slots, nil
}

// UpdateState replaces the slot document only if the stored version
// still matches expectedVersion. Returns false when another writer got
// there first.
func (r *MongoSlotRepo) UpdateState(ctx context.Context, slot models.DoctorSlot, expectedVersion int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	slot.Version = expectedVersion + 1
	res, err := r.coll.ReplaceOne(ctx,
		bson.M{"id": slot.ID, "version": expectedVersion},
		slot,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update slot %s: %w", slot.ID, err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing slot from a stale version.
		count, countErr := r.coll.CountDocuments(ctx, bson.M{"id": slot.ID})
		if countErr != nil {
			return false, fmt.Errorf("failed to verify slot %s: %w", slot.ID, countErr)
		}
		if count == 0 {
			return false, ErrSlotNotFound
		}
		return false, nil
	}
	return true, nil
}
