package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/catalogflow/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// BatchRegistry records bucket imports in a Firestore collection.
type BatchRegistry struct {
	client     *firestore.Client
	collection string
}

// NewBatchRegistry uses collection on client.
func NewBatchRegistry(client *firestore.Client, collection string) *BatchRegistry {
	return &BatchRegistry{client: client, collection: collection}
}

// FindByHash returns the batch already recorded for fileHash, or nil.
func (r *BatchRegistry) FindByHash(ctx context.Context, fileHash string) (*models.ImportBatch, error) {
	docs, err := r.client.Collection(r.collection).Where("fileHash", "==", fileHash).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query for duplicates: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var batch models.ImportBatch
	if err := docs[0].DataTo(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode import batch %s: %w", docs[0].Ref.ID, err)
	}
	batch.ID = docs[0].Ref.ID
	return &batch, nil
}

// Restart moves a FAILED batch back to EXTRACTING for another attempt.
func (r *BatchRegistry) Restart(ctx context.Context, id string) error {
	updates := []firestore.Update{
		{Path: "status", Value: models.BatchStatusExtracting},
		{Path: "errorDetails", Value: firestore.Delete},
	}
	if _, err := r.client.Collection(r.collection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to restart batch %s: %w", id, err)
	}
	return nil
}

// Create stores a new batch and returns its generated id.
func (r *BatchRegistry) Create(ctx context.Context, batch models.ImportBatch) (string, error) {
	docRef, _, err := r.client.Collection(r.collection).Add(ctx, batch)
	if err != nil {
		return "", fmt.Errorf("failed to create import batch: %w", err)
	}
	return docRef.ID, nil
}

// MarkExtracted records a successful extraction.
func (r *BatchRegistry) MarkExtracted(ctx context.Context, id string, pageCount, candidateCount int, reportURI string) error {
	updates := []firestore.Update{
		{Path: "status", Value: models.BatchStatusExtracted},
		{Path: "pageCount", Value: pageCount},
		{Path: "candidateCount", Value: candidateCount},
		{Path: "reportUri", Value: reportURI},
	}
	if _, err := r.client.Collection(r.collection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to mark batch %s extracted: %w", id, err)
	}
	return nil
}

// MarkFailed records why a batch could not be processed.
func (r *BatchRegistry) MarkFailed(ctx context.Context, id, details string) error {
	updates := []firestore.Update{
		{Path: "status", Value: models.BatchStatusFailed},
	}
	if details != "" {
		updates = append(updates, firestore.Update{Path: "errorDetails", Value: details})
	}
	if _, err := r.client.Collection(r.collection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to mark batch %s failed: %w", id, err)
	}
	return nil
}
