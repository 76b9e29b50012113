package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/avikal/ragchat/internal/config"
	"github.com/avikal/ragchat/internal/domain/commonModels"
	"github.com/avikal/ragchat/internal/metrics"
	"github.com/avikal/ragchat/internal/rag/vectorDB"
	"github.com/avikal/ragchat/pkg/logging"
)

type ClientHolder struct {
	qObj       *qdrant.Client
	dimension  uint64
	distance   qdrant.Distance
	collection string
	logger     *logging.Logger
}

func NewClient(ctx context.Context, cfg config.QdrantConfig, dimension int32) (*ClientHolder, error) {
	logger := logging.NewLogger("Qdrant")

	distance, err := parseDistance(cfg.Distance)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		APIKey:   cfg.APIKey,
		UseTLS:   cfg.UseTLS,
		PoolSize: cfg.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	holder := &ClientHolder{
		qObj:       client,
		dimension:  uint64(dimension),
		distance:   distance,
		collection: cfg.CollectionName,
		logger:     logger,
	}
	go holder.closeOnDone(ctx)
	return holder, nil
}

func (db *ClientHolder) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	db.logger.Info("Shutting down Qdrant")
	if err := db.qObj.Close(); err != nil {
		db.logger.Error("could not close Qdrant", "error", err)
	}
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.qObj.CollectionExists(ctx, collectionName)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", collectionName, err)
	}

	if exists {
		info, err := db.qObj.GetCollectionInfo(ctx, collectionName)
		if err != nil {
			return fmt.Errorf("reading collection %s config: %w", collectionName, err)
		}
		return verifyCollectionConfig(info, db.dimension, db.distance)
	}

	db.logger.Info("Creating collection", "collection", collectionName, "dimension", db.dimension)
	err = db.qObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: db.distance,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", collectionName, err)
	}
	return nil
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		if len(vectors[i]) != int(db.dimension) {
			return fmt.Errorf("vector %d has dimension %d, collection expects %d", i, len(vectors[i]), db.dimension)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       chunk.Chunk,
				"page_num":      chunk.PageNum,
				"source_doc_id": chunk.Doc.Id,
				"doc_name":      chunk.Doc.Name,
				"chunk_order":   chunk.ChunkPageOrder,
				"chunk_id":      chunk.ChunkId,
				"ingested_at":   chunk.Doc.LastIngestTimestamp.Unix(),
			}),
		}
	}

	_, err := db.qObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, topK int) ([]vectorDB.Match, error) {
	log := db.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	result, err := db.qObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		log.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	matches := make([]vectorDB.Match, 0, len(result))
	for _, hit := range result {
		matches = append(matches, vectorDB.Match{
			Content:  hit.Payload["content"].GetStringValue(),
			DocName:  hit.Payload["doc_name"].GetStringValue(),
			PageNum:  hit.Payload["page_num"].GetIntegerValue(),
			ChunkId:  hit.Payload["chunk_id"].GetStringValue(),
			SourceId: hit.Payload["source_doc_id"].GetStringValue(),
			Score:    hit.Score,
		})
	}

	log.Debug("Vector search complete", "matches", len(matches))
	return matches, nil
}

// verifyCollectionConfig surfaces a dimensionality or metric mismatch
// against an existing collection as a fatal configuration error instead
// of letting mismatched vectors in silently.
func verifyCollectionConfig(info *qdrant.CollectionInfo, dimension uint64, distance qdrant.Distance) error {
	if info == nil || info.Config == nil || info.Config.Params == nil || info.Config.Params.VectorsConfig == nil {
		return errors.New("collection info is missing vector params")
	}
	params := info.Config.Params.VectorsConfig.GetParams()
	if params == nil {
		return errors.New("collection uses named vectors, expected a single default vector")
	}
	if params.Size != dimension {
		return fmt.Errorf("collection dimensionality mismatch: collection has %d, configured embedding produces %d", params.Size, dimension)
	}
	if params.Distance != distance {
		return fmt.Errorf("collection distance mismatch: collection uses %s, configured %s", params.Distance, distance)
	}
	return nil
}

func parseDistance(name string) (qdrant.Distance, error) {
	switch name {
	case config.DistanceCosine, "":
		return qdrant.Distance_Cosine, nil
	case "euclid":
		return qdrant.Distance_Euclid, nil
	case "dot":
		return qdrant.Distance_Dot, nil
	default:
		return qdrant.Distance_UnknownDistance, fmt.Errorf("unsupported distance metric %q", name)
	}
}
