package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"

	"github.com/Lllllllleong/catalogflow/internal/config"
	"github.com/Lllllllleong/catalogflow/internal/extract"
	"github.com/Lllllllleong/catalogflow/internal/gcp"
	"github.com/Lllllllleong/catalogflow/internal/models"
)

type IngestConfig struct {
	ProjectID        string
	ReportsBucket    string
	CollectionName   string
	WorkflowID       string
	WorkflowLocation string
}

// GCSEvent is the payload of a Cloud Storage object-finalized event.
type GCSEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size,string"`
}

// ObjectStore reads source documents and writes reports.
type ObjectStore interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, error)
	WriteOnce(ctx context.Context, bucket, object string, content []byte) error
}

// BatchRegistry tracks every imported document.
type BatchRegistry interface {
	FindByHash(ctx context.Context, fileHash string) (*models.ImportBatch, error)
	Create(ctx context.Context, batch models.ImportBatch) (string, error)
	Restart(ctx context.Context, id string) error
	MarkExtracted(ctx context.Context, id string, pageCount, candidateCount int, reportURI string) error
	MarkFailed(ctx context.Context, id, details string) error
}

// WorkflowLauncher starts the review workflow for an extracted batch.
type WorkflowLauncher interface {
	Launch(ctx context.Context, argument any) error
}

// PageCounter reports the page count of a PDF.
type PageCounter interface {
	PageCount(content []byte) (int, error)
}

// IngestFunction extracts candidate products from PDFs dropped into a bucket
// and writes them as a report for review.
type IngestFunction struct {
	objects  ObjectStore
	batches  BatchRegistry
	workflow WorkflowLauncher // nil when no review workflow is configured
	pipeline *extract.Pipeline
	pages    PageCounter
	config   IngestConfig
	now      func() time.Time
}

// NewIngestFunction builds the function from the environment, creating the
// Cloud clients it needs.
func NewIngestFunction(ctx context.Context) (*IngestFunction, error) {
	projectID := config.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	cfg := IngestConfig{
		ProjectID:        projectID,
		ReportsBucket:    config.GetEnv("REPORTS_BUCKET", ""),
		CollectionName:   config.GetEnv("FIRESTORE_COLLECTION", "import_batches"),
		WorkflowLocation: config.GetEnv("WORKFLOW_LOCATION", "us-central1"),
		WorkflowID:       config.GetEnv("WORKFLOW_ID", ""),
	}
	if cfg.ReportsBucket == "" {
		return nil, fmt.Errorf("REPORTS_BUCKET environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	var launcher WorkflowLauncher
	if cfg.WorkflowID != "" {
		executionsClient, err := executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
		launcher = gcp.NewWorkflowLauncher(executionsClient, cfg.ProjectID, cfg.WorkflowLocation, cfg.WorkflowID)
	}

	extractor := extract.NewPDFTextExtractor()
	f := NewIngest(
		cfg,
		gcp.NewObjectStore(storageClient),
		gcp.NewBatchRegistry(firestoreClient, cfg.CollectionName),
		launcher,
		extract.NewPipeline(extractor),
		extractor,
	)
	slog.Info("PDF ingest logic initialized.", "reportsBucket", cfg.ReportsBucket, "workflowId", cfg.WorkflowID)
	return f, nil
}

// NewIngest assembles the function from its collaborators. workflow may be nil.
func NewIngest(cfg IngestConfig, objects ObjectStore, batches BatchRegistry, workflow WorkflowLauncher, pipeline *extract.Pipeline, pages PageCounter) *IngestFunction {
	return &IngestFunction{
		objects:  objects,
		batches:  batches,
		workflow: workflow,
		pipeline: pipeline,
		pages:    pages,
		config:   cfg,
		now:      time.Now,
	}
}

// Process handles one finalized object. Documents the pipeline rejects are
// recorded as FAILED and acknowledged; only infrastructure errors are returned
// so that the event is retried.
func (f *IngestFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	logCtx.Info("Processing new GCS object.")

	filename := path.Base(e.Name)
	if err := extract.ValidateUpload(filename, e.Size); err != nil {
		logCtx.Info("Object is not an importable PDF. Skipping.", "reason", err)
		return nil
	}

	content, err := f.readObject(ctx, e.Bucket, e.Name)
	if err != nil {
		logCtx.Error("Failed to download source PDF", "error", err)
		return err
	}
	if len(content) > extract.MaxUploadSize {
		logCtx.Warn("Object exceeds the upload limit. Skipping.", "maxSize", extract.MaxUploadSize)
		return nil
	}

	fileHash := hashContent(content)
	logCtx = logCtx.With("fileHash", fileHash)

	existing, err := f.batches.FindByHash(ctx, fileHash)
	if err != nil {
		logCtx.Error("Failed to check for duplicate", "error", err)
		return err
	}
	if existing != nil && existing.Status != models.BatchStatusFailed {
		logCtx.Info("Duplicate file detected. Skipping.", "existingBatchId", existing.ID, "status", existing.Status)
		return nil
	}

	batchID, err := f.startBatch(ctx, existing, fileHash, e.Name)
	if err != nil {
		logCtx.Error("Failed to start import batch", "error", err)
		return err
	}
	logCtx = logCtx.With("batchId", batchID)
	logCtx.Info("Import batch started.", "retry", existing != nil)

	pageCount, err := f.pages.PageCount(content)
	if err != nil {
		logCtx.Warn("Could not count pages.", "error", err)
	}

	result, err := f.pipeline.Process(extract.Upload{
		Filename: filename,
		Size:     int64(len(content)),
		Content:  bytes.NewReader(content),
	})
	if err != nil {
		var extractErr *extract.Error
		if errors.As(err, &extractErr) {
			f.markFailed(ctx, logCtx, batchID, "extraction rejected the document", err)
			return nil
		}
		return f.handleError(ctx, logCtx, batchID, "failed to extract products", err)
	}

	reportURI, err := f.writeReport(ctx, batchID, result)
	if err != nil {
		return f.handleError(ctx, logCtx, batchID, "failed to write candidates report", err)
	}

	if err := f.batches.MarkExtracted(ctx, batchID, pageCount, len(result.Products), reportURI); err != nil {
		return f.handleError(ctx, logCtx, batchID, "failed to update status to EXTRACTED", err)
	}
	logCtx.Info("Candidates report written.", "reportUri", reportURI, "candidateCount", len(result.Products))

	if f.workflow != nil {
		logCtx.Info("Triggering review workflow.")
		payload := map[string]any{
			"batchId":        batchID,
			"reportUri":      reportURI,
			"candidateCount": len(result.Products),
		}
		if err := f.workflow.Launch(ctx, payload); err != nil {
			return f.handleError(ctx, logCtx, batchID, "failed to trigger workflow execution", err)
		}
	}

	logCtx.Info("Ingest complete.")
	return nil
}

// startBatch reopens a batch that failed earlier, so a retried event
// reprocesses the document, or records a new one.
func (f *IngestFunction) startBatch(ctx context.Context, failed *models.ImportBatch, fileHash, name string) (string, error) {
	if failed != nil {
		if err := f.batches.Restart(ctx, failed.ID); err != nil {
			return "", err
		}
		return failed.ID, nil
	}
	return f.batches.Create(ctx, models.ImportBatch{
		FileHash:         fileHash,
		OriginalFilename: name,
		Status:           models.BatchStatusExtracting,
		CreatedAt:        f.now().UTC(),
	})
}

// readObject reads at most one byte past the upload limit.
func (f *IngestFunction) readObject(ctx context.Context, bucket, object string) ([]byte, error) {
	r, err := f.objects.Open(ctx, bucket, object)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content, err := io.ReadAll(io.LimitReader(r, extract.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, object, err)
	}
	return content, nil
}

func (f *IngestFunction) writeReport(ctx context.Context, batchID string, result *extract.Result) (string, error) {
	report := models.IngestReport{
		BatchID:         batchID,
		Filename:        result.Filename,
		TotalTextLength: result.TotalTextLength,
		Products:        result.Products,
	}
	content, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	object := ReportObjectName(batchID)
	if err := f.objects.WriteOnce(ctx, f.config.ReportsBucket, object, content); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", f.config.ReportsBucket, object), nil
}

// ReportObjectName is where the report of a batch is stored.
func ReportObjectName(batchID string) string {
	return fmt.Sprintf("reports/%s.json", batchID)
}

func (f *IngestFunction) handleError(ctx context.Context, logCtx *slog.Logger, batchID, message string, originalErr error) error {
	f.markFailed(ctx, logCtx, batchID, message, originalErr)
	return fmt.Errorf("%s: %w", message, originalErr)
}

func (f *IngestFunction) markFailed(ctx context.Context, logCtx *slog.Logger, batchID, message string, originalErr error) {
	details := fmt.Sprintf("%s: %v", message, originalErr)
	if msg, ok := extract.UserMessage(originalErr); ok {
		details = msg
	}
	logCtx.Error(message, "error", originalErr)
	if err := f.batches.MarkFailed(ctx, batchID, details); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
	}
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

