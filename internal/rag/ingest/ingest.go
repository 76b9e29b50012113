package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/domain/commonModels"
	"github.com/avikal/ragchat/internal/metrics"
	"github.com/avikal/ragchat/internal/rag/embedding"
	"github.com/avikal/ragchat/internal/rag/vectorDB"
	"github.com/avikal/ragchat/pkg/logging"
)

var logger = logging.NewLogger("Document Ingestion")

// Pipeline is the batch write path: extract -> chunk -> embed -> upsert.
type Pipeline struct {
	embedder   embedding.Embedder
	vectorDB   vectorDB.DataProcessor
	cfg        config.IngestConfig
	collection string
	model      string
	logger     *logging.Logger
}

func NewPipeline(e embedding.Embedder, db vectorDB.DataProcessor, cfg config.IngestConfig, collection, model string) *Pipeline {
	return &Pipeline{
		embedder:   e,
		vectorDB:   db,
		cfg:        cfg,
		collection: collection,
		model:      model,
		logger:     logger,
	}
}

// Run ingests one source document. Returns the number of chunks written.
func (p *Pipeline) Run(ctx context.Context, docPath, docName string) (int, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	log := p.logger.With("document", docName, "path", docPath)

	docType := getDocType(docPath)
	if docType == commonModels.ERR {
		return 0, fmt.Errorf("unsupported document type for %s", docPath)
	}

	if err := p.vectorDB.EnsureCollection(ctx, p.collection); err != nil {
		return 0, fmt.Errorf("preparing collection: %w", err)
	}

	doc := commonModels.Document{
		Id:                  uuid.New().String(),
		Name:                docName,
		LastIngestTimestamp: time.Now(),
		ContentType:         docType,
	}

	pages, err := extractText(docPath, docType)
	if err != nil {
		return 0, fmt.Errorf("extracting document content: %w", err)
	}
	log.Debug("Extracted document", "pages", len(pages))

	chunks := PrepareChunks(pages, doc, p.model, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	log.Debug("Prepared chunks", "count", len(chunks))

	if err := p.batchIngest(ctx, chunks); err != nil {
		return 0, err
	}

	metrics.AddIngestedChunks(len(chunks))
	log.Info("Ingestion complete", "chunks", len(chunks), "elapsed", time.Since(start))
	return len(chunks), nil
}

// batchIngest embeds and upserts chunk batches through a bounded worker
// pool. Embedding dominates the runtime, so a few concurrent provider
// calls cut ingestion time for large documents without unbounded fanout.
func (p *Pipeline) batchIngest(ctx context.Context, chunks []commonModels.DocChunk) error {
	batchSize := p.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	workers := p.cfg.EmbedWorkers
	if workers <= 0 {
		workers = 1
	}

	type batchJob struct {
		chunks []commonModels.DocChunk
	}

	jobs := make(chan batchJob)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := p.processBatch(runCtx, job.chunks); err != nil {
					fail(err)
					return
				}
			}
		}()
	}

sending:
	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))
		select {
		case jobs <- batchJob{chunks: chunks[i:end]}:
		case <-runCtx.Done():
			break sending
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return runCtx.Err()
}

func (p *Pipeline) processBatch(ctx context.Context, batch []commonModels.DocChunk) error {
	texts := make([]string, 0, len(batch))
	for _, c := range batch {
		texts = append(texts, c.Chunk)
	}

	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch failed: %w", err)
	}

	if err := p.vectorDB.UpsertBatch(ctx, p.collection, batch, vectors); err != nil {
		return fmt.Errorf("upserting batch failed: %w", err)
	}
	return nil
}
