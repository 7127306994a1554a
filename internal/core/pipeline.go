// ABOUTME: Pipeline processes topic batches end to end: embed, decide, create or merge
// ABOUTME: Bounded concurrency across documents, strict serialization per target document
package core

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/docweave/docweave/internal/logger"
	"github.com/docweave/docweave/internal/models"
	"github.com/docweave/docweave/internal/storage"
)

// TopicResult is the outcome of processing one topic.
type TopicResult struct {
	Topic      string          `json:"topic"`
	Decision   models.Decision `json:"decision"`
	DocumentID string          `json:"document_id,omitempty"`
	Err        error           `json:"-"`
}

// Report summarizes one pipeline run. Review lists low-confidence decisions
// surfaced for optional operator review; they are not failures.
type Report struct {
	Results []TopicResult
	Created int
	Merged  int
	Failed  int
	Review  []TopicResult
}

// Pipeline routes topics through the decision engine into the creator or the
// merger. Topics may be processed concurrently across different documents;
// all merges into the same target are batched into a single merger call.
type Pipeline struct {
	index          *SimilarityIndex
	engine         *DecisionEngine
	creator        *DocumentCreator
	merger         *DocumentMerger
	embedder       Embedder
	store          storage.Store
	concurrency    int
	candidateLimit int
	log            *logger.Logger

	mu       sync.Mutex
	docLocks map[string]*sync.Mutex
}

// NewPipeline creates a Pipeline.
func NewPipeline(index *SimilarityIndex, engine *DecisionEngine, creator *DocumentCreator,
	merger *DocumentMerger, embedder Embedder, store storage.Store, concurrency int, log *logger.Logger) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		index:          index,
		engine:         engine,
		creator:        creator,
		merger:         merger,
		embedder:       embedder,
		store:          store,
		concurrency:    concurrency,
		candidateLimit: 5,
		log:            log.With("component", "Pipeline"),
		docLocks:       make(map[string]*sync.Mutex),
	}
}

// lockFor returns the serialization lock for a target document id.
func (p *Pipeline) lockFor(id string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.docLocks[id]
	if !ok {
		l = &sync.Mutex{}
		p.docLocks[id] = l
	}
	return l
}

// Run processes a batch of topics. Decisions are made concurrently against
// the store state at batch start; merges are then grouped so each target
// document receives one merger call covering all of its topics. A failed
// topic is logged and recorded, never aborts the rest of the batch. Run stops
// taking up new topics once ctx is canceled; in-flight transactions finish or
// roll back cleanly.
func (p *Pipeline) Run(ctx context.Context, topics []models.Topic) (*Report, error) {
	report := &Report{Results: make([]TopicResult, len(topics))}
	decisions := make([]models.Decision, len(topics))
	failed := make([]error, len(topics))

	// Phase 1: embed and decide, bounded concurrency
	g := &errgroup.Group{}
	g.SetLimit(p.concurrency)
	for i := range topics {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failed[i] = err
				return nil
			}
			decisions[i], failed[i] = p.decide(ctx, topics[i])
			return nil
		})
	}
	_ = g.Wait()

	// Phase 2: group merges by target so each document gets one merger call
	mergeGroups := make(map[string][]int)
	var creates []int
	for i := range topics {
		if failed[i] != nil {
			continue
		}
		if decisions[i].Action == models.ActionMerge {
			mergeGroups[decisions[i].TargetDocID] = append(mergeGroups[decisions[i].TargetDocID], i)
		} else {
			creates = append(creates, i)
		}
	}

	g = &errgroup.Group{}
	g.SetLimit(p.concurrency)

	for _, idx := range creates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failed[idx] = err
				return nil
			}
			doc, err := p.creator.Create(ctx, topics[idx])
			if err != nil {
				failed[idx] = err
				return nil
			}
			report.Results[idx].DocumentID = doc.ID
			return nil
		})
	}

	for target, group := range mergeGroups {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				for _, idx := range group {
					failed[idx] = err
				}
				return nil
			}

			lock := p.lockFor(target)
			lock.Lock()
			defer lock.Unlock()

			batch := make([]models.Topic, 0, len(group))
			for _, idx := range group {
				batch = append(batch, topics[idx])
			}

			doc, err := p.store.GetDocument(ctx, target)
			if err == nil {
				_, err = p.merger.Merge(ctx, batch, doc)
			}
			for _, idx := range group {
				if err != nil {
					failed[idx] = err
				} else {
					report.Results[idx].DocumentID = target
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := range topics {
		report.Results[i].Topic = topics[i].Title
		report.Results[i].Decision = decisions[i]
		report.Results[i].Err = failed[i]

		switch {
		case failed[i] != nil:
			report.Failed++
			target := decisions[i].TargetDocID
			p.log.Error("topic failed", "topic", topics[i].Title, "target", target, "error", failed[i])
		case decisions[i].Action == models.ActionMerge:
			report.Merged++
		default:
			report.Created++
		}
		if failed[i] == nil && decisions[i].Confidence == models.ConfidenceLow {
			report.Review = append(report.Review, report.Results[i])
		}
	}

	return report, ctx.Err()
}

// decide embeds one topic and routes it through the decision engine.
func (p *Pipeline) decide(ctx context.Context, topic models.Topic) (models.Decision, error) {
	vectors, err := p.embedder.EmbedBatch(ctx, []string{topic.Content})
	if err != nil {
		return models.Decision{}, err
	}
	candidates, err := p.index.Candidates(ctx, vectors[0], p.candidateLimit)
	if err != nil {
		return models.Decision{}, err
	}
	return p.engine.Decide(ctx, topic, candidates), nil
}
