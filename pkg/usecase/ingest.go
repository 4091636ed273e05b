package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mentorag/pkg/domain/interfaces"
	"github.com/secmon-lab/mentorag/pkg/domain/model"
	"github.com/secmon-lab/mentorag/pkg/domain/types"
	"github.com/secmon-lab/mentorag/pkg/service/chunker"
	"github.com/secmon-lab/mentorag/pkg/service/profile"
	"github.com/secmon-lab/mentorag/pkg/utils/async"
	"github.com/secmon-lab/mentorag/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultContentTitle names documents ingested without a title
const DefaultContentTitle = "Untitled"

// IngestInput is one document to add to a mentor's corpus
type IngestInput struct {
	MentorID model.MentorID
	Title    string
	Text     string
}

type IngestUseCase struct {
	repo     interfaces.Repository
	chunker  *chunker.Chunker
	embedder interfaces.Embedder
	profiler profile.Service
	tasks    *async.Group
	rag      RAGConfig
}

func NewIngestUseCase(repo interfaces.Repository, c *chunker.Chunker, embedder interfaces.Embedder, profiler profile.Service, tasks *async.Group, rag RAGConfig) *IngestUseCase {
	return &IngestUseCase{
		repo:     repo,
		chunker:  c,
		embedder: embedder,
		profiler: profiler,
		tasks:    tasks,
		rag:      rag,
	}
}

// Ingest chunks and embeds a document and stores its chunks. The chunks are
// stored only when every embedding succeeded; otherwise the content record is
// marked failed and no chunk is written. Profile synthesis for the document
// then runs in the background.
func (uc *IngestUseCase) Ingest(ctx context.Context, input IngestInput) (*model.Content, error) {
	if uc.chunker == nil || uc.embedder == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "ingestion requires a chunker and an embedder")
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, goerr.Wrap(ErrEmptyDocument, "document text is empty", goerr.V(MentorIDKey, input.MentorID))
	}

	mentor, err := uc.repo.Mentor().Get(ctx, input.MentorID)
	if err != nil {
		return nil, goerr.Wrap(ErrMentorNotFound, "mentor not found", goerr.V(MentorIDKey, input.MentorID))
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = DefaultContentTitle
	}

	content, err := uc.repo.Content().Create(ctx, &model.Content{
		MentorID: mentor.ID,
		Title:    title,
		Status:   types.ContentStatusProcessing,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create content", goerr.V(MentorIDKey, mentor.ID))
	}

	logger := logging.From(ctx).With(MentorIDKey, mentor.ID, ContentIDKey, content.ID)

	chunks, err := uc.embedChunks(ctx, content, input.Text)
	if err == nil {
		err = uc.repo.Chunk().CreateBatch(ctx, chunks)
	}
	if err != nil {
		uc.markFailed(ctx, content)
		return nil, goerr.Wrap(err, "failed to process content",
			goerr.V(MentorIDKey, mentor.ID),
			goerr.V(ContentIDKey, content.ID))
	}

	content.Status = types.ContentStatusProcessed
	content.ChunkCount = len(chunks)
	updated, err := uc.repo.Content().Update(ctx, content)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update content", goerr.V(ContentIDKey, content.ID))
	}

	logger.Info("content processed", "chunks", len(chunks))

	if uc.profiler != nil {
		uc.tasks.Dispatch(ctx, func(ctx context.Context) error {
			return uc.synthesizeProfile(ctx, mentor.ID, input.Text)
		})
	}

	return updated, nil
}

// embedChunks splits text and embeds every window with bounded concurrency.
// The first failure cancels the remaining calls.
func (uc *IngestUseCase) embedChunks(ctx context.Context, content *model.Content, text string) ([]*model.Chunk, error) {
	texts := uc.chunker.Chunk(text)
	if len(texts) == 0 {
		return nil, goerr.Wrap(ErrEmptyDocument, "document produced no chunk")
	}

	vectors := make([][]float32, len(texts))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(uc.rag.EmbedConcurrency, 1))
	for i, t := range texts {
		eg.Go(func() error {
			vec, err := uc.embedder.Embed(egCtx, t)
			if err != nil {
				return goerr.Wrap(err, "failed to embed chunk", goerr.V("chunk_index", i))
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	chunks := make([]*model.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = &model.Chunk{
			ContentID:  content.ID,
			MentorID:   content.MentorID,
			Title:      content.Title,
			ChunkIndex: i,
			Text:       t,
			Embedding:  vectors[i],
		}
	}
	return chunks, nil
}

func (uc *IngestUseCase) markFailed(ctx context.Context, content *model.Content) {
	// the record must be settled even when the request was canceled
	ctx = context.WithoutCancel(ctx)
	content.Status = types.ContentStatusFailed
	if _, err := uc.repo.Content().Update(ctx, content); err != nil {
		logging.From(ctx).Error("failed to mark content as failed",
			"error", err,
			ContentIDKey, content.ID)
	}
}

// synthesizeProfile analyzes a document against the approved profile and
// leaves the result waiting for review
func (uc *IngestUseCase) synthesizeProfile(ctx context.Context, mentorID model.MentorID, text string) error {
	mentor, err := uc.repo.Mentor().Get(ctx, mentorID)
	if err != nil {
		return goerr.Wrap(err, "failed to get mentor for profile synthesis", goerr.V(MentorIDKey, mentorID))
	}

	candidate, err := uc.profiler.Synthesize(ctx, profile.Input{
		DocumentText: text,
		Name:         mentor.Name,
		Specialty:    mentor.Specialty,
		Existing:     mentor.ActiveProfile,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to synthesize profile", goerr.V(MentorIDKey, mentorID))
	}

	// applied to the current record so a review that landed during synthesis stays
	_, err = uc.repo.Mentor().Update(ctx, mentorID, func(m *model.Mentor) error {
		m.PendingProfile = candidate
		m.ProfileStatus = types.ProfileStatusPendingApproval
		m.ProfileUpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to store pending profile", goerr.V(MentorIDKey, mentorID))
	}

	logging.From(ctx).Info("profile pending approval",
		MentorIDKey, mentorID,
		"source", candidate.AnalysisSource,
		"traits", candidate.StyleTraits)
	return nil
}

// Contents lists a mentor's documents, newest first
func (uc *IngestUseCase) Contents(ctx context.Context, mentorID model.MentorID) ([]*model.Content, error) {
	contents, err := uc.repo.Content().ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list contents", goerr.V(MentorIDKey, mentorID))
	}
	return contents, nil
}

// DeleteContent removes a mentor's document and its chunks, returning how many
// chunks were removed. A document owned by another mentor is reported missing.
func (uc *IngestUseCase) DeleteContent(ctx context.Context, mentorID model.MentorID, contentID model.ContentID) (int, error) {
	content, err := uc.repo.Content().Get(ctx, contentID)
	if err != nil || content.MentorID != mentorID {
		return 0, goerr.Wrap(ErrContentNotFound, "content not found",
			goerr.V(ContentIDKey, contentID),
			goerr.V(MentorIDKey, mentorID))
	}

	removed, err := uc.repo.Chunk().DeleteByContent(ctx, contentID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to delete chunks", goerr.V(ContentIDKey, contentID))
	}
	if err := uc.repo.Content().Delete(ctx, contentID); err != nil {
		return removed, goerr.Wrap(err, "failed to delete content", goerr.V(ContentIDKey, contentID))
	}

	logging.From(ctx).Info("content deleted", ContentIDKey, contentID, "chunks", removed)
	return removed, nil
}

// DeleteContents removes several documents, skipping those the mentor does not
// own. It returns the number of documents and chunks removed.
func (uc *IngestUseCase) DeleteContents(ctx context.Context, mentorID model.MentorID, contentIDs []model.ContentID) (int, int, error) {
	var contents, chunks int
	for _, id := range contentIDs {
		removed, err := uc.DeleteContent(ctx, mentorID, id)
		if err != nil {
			if errors.Is(err, ErrContentNotFound) {
				continue
			}
			return contents, chunks, err
		}
		contents++
		chunks += removed
	}
	return contents, chunks, nil
}
