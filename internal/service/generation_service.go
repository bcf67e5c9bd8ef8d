package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"docuchat-be/internal/constant"
	"docuchat-be/internal/dto"
	"docuchat-be/internal/entity"
	"docuchat-be/internal/pkg/apperror"
	"docuchat-be/internal/repository/specification"
	"docuchat-be/internal/repository/unitofwork"
	"docuchat-be/pkg/events"
	"docuchat-be/pkg/llm"
	pktNats "docuchat-be/pkg/nats"
	"docuchat-be/pkg/rag/prompt"
	"docuchat-be/pkg/ragie"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Number of prior completed messages fed back to the model as context.
const historyWindow = 10

type IGenerationService interface {
	Consume(ctx context.Context) error
	GenerateReply(ctx context.Context, job *dto.GenerateReplyJob) error
}

type generationService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	retriever      *ragie.Client
	llmProvider    llm.Provider
	promptBuilder  *prompt.Builder
	eventPublisher *pktNats.Publisher
	retrievalTopK  int
}

func NewGenerationService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	retriever *ragie.Client,
	llmProvider llm.Provider,
	eventPublisher *pktNats.Publisher,
	retrievalTopK int,
) IGenerationService {
	return &generationService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		retriever:      retriever,
		llmProvider:    llmProvider,
		promptBuilder:  prompt.NewBuilder(),
		eventPublisher: eventPublisher,
		retrievalTopK:  retrievalTopK,
	}
}

func (gs *generationService) Consume(ctx context.Context) error {
	messages, err := gs.pubSub.Subscribe(ctx, gs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			gs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (gs *generationService) processMessage(ctx context.Context, msg *message.Message) {
	var job dto.GenerateReplyJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		log.Printf("[ERROR] Failed to unmarshal generation job: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Generating reply for message %s (session %s)", job.MessageId, job.ChatSessionId)

	if err := gs.GenerateReply(ctx, &job); err != nil {
		// GenerateReply records the failure on the message itself, so the
		// job is done either way.
		log.Printf("[ERROR] Generation failed for message %s: %v", job.MessageId, err)
	}
	msg.Ack()
}

// GenerateReply drives the assistant message through its lifecycle:
// pending -> streaming -> completed, or failed with the reason recorded on
// the row. The user's message is never touched on failure.
func (gs *generationService) GenerateReply(ctx context.Context, job *dto.GenerateReplyJob) error {
	uow := gs.uowFactory.NewUnitOfWork(ctx)

	reply, err := uow.ChatMessageRepository().FindOne(ctx,
		specification.ByID{ID: job.MessageId},
		specification.ByChatSessionID{ChatSessionID: job.ChatSessionId},
	)
	if err != nil {
		return err
	}
	if reply == nil {
		// Session deleted while the job was queued.
		log.Printf("[WARN] Reply message %s no longer exists, dropping job", job.MessageId)
		return nil
	}
	if reply.Status != constant.ChatMessageStatusPending {
		log.Printf("[WARN] Reply message %s is %s, not pending, dropping job", reply.Id, reply.Status)
		return nil
	}

	reply.Status = constant.ChatMessageStatusStreaming
	if err := uow.ChatMessageRepository().Update(ctx, reply); err != nil {
		return err
	}

	started := time.Now()
	result, chunks, err := gs.generate(ctx, uow, job)
	if err != nil {
		return gs.markFailed(ctx, uow, reply, job, err)
	}

	sources := make([]*entity.ChatSource, 0, len(chunks))
	for i, chunk := range chunks {
		sources = append(sources, &entity.ChatSource{
			Id:              uuid.New(),
			ChatMessageId:   reply.Id,
			RagieDocumentId: chunk.DocumentId,
			DocumentName:    chunk.DocumentName,
			PageNumber:      chunk.PageNumber,
			ChunkText:       chunk.Text,
			RelevanceScore:  chunk.Score,
			Position:        i + 1,
			Metadata:        chunk.Metadata,
			CreatedAt:       time.Now(),
		})
	}

	elapsed := time.Since(started).Milliseconds()
	reply.Content = result.Content
	reply.Status = constant.ChatMessageStatusCompleted
	reply.ProcessingMs = &elapsed
	if result.TokensTotal > 0 {
		tokens := result.TokensTotal
		reply.TokensTotal = &tokens
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if len(sources) > 0 {
		if err := uow.ChatMessageRepository().CreateSources(ctx, sources); err != nil {
			return err
		}
	}
	if err := uow.ChatMessageRepository().Update(ctx, reply); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().TouchLastMessage(ctx, job.ChatSessionId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	gs.publishEvent(ctx, events.NewMessageCompleted(job.ChatSessionId, reply.Id, job.UserId, len(sources)))
	log.Printf("[SUCCESS] Reply %s completed with %d sources in %dms", reply.Id, len(sources), elapsed)
	return nil
}

// generate runs retrieval plus the model call. The organization id doubles
// as the retrieval partition so tenants never see each other's documents.
func (gs *generationService) generate(ctx context.Context, uow unitofwork.UnitOfWork, job *dto.GenerateReplyJob) (*llm.Result, []ragie.Chunk, error) {
	chunks, err := gs.retriever.Retrieve(ctx, job.Question, gs.retrievalTopK, job.OrganizationId.String())
	if err != nil {
		return nil, nil, err
	}

	history, err := gs.buildHistory(ctx, uow, job)
	if err != nil {
		return nil, nil, err
	}

	systemPrompt := gs.promptBuilder.Build(job.Mode, chunks)
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: constant.ChatMessageRoleUser, Content: job.Question})

	result, err := gs.llmProvider.Chat(ctx, messages,
		llm.WithModel(job.Model),
		llm.WithTemperature(job.Temperature),
	)
	if err != nil {
		return nil, nil, err
	}
	return result, chunks, nil
}

// buildHistory loads the most recent completed turns before this exchange,
// oldest first.
func (gs *generationService) buildHistory(ctx context.Context, uow unitofwork.UnitOfWork, job *dto.GenerateReplyJob) ([]llm.Message, error) {
	recent, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: job.ChatSessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.LimitTo{Limit: historyWindow + 2},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		msg := recent[i]
		if msg.Id == job.MessageId {
			continue
		}
		if msg.Status != constant.ChatMessageStatusCompleted {
			continue
		}
		if msg.Role == constant.ChatMessageRoleUser && msg.Content == job.Question {
			// The question itself is appended separately.
			continue
		}
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	return history, nil
}

func (gs *generationService) markFailed(ctx context.Context, uow unitofwork.UnitOfWork, reply *entity.ChatMessage, job *dto.GenerateReplyJob, cause error) error {
	reason := failureReason(cause)
	reply.Status = constant.ChatMessageStatusFailed
	reply.ErrorMessage = reason

	if err := uow.ChatMessageRepository().Update(ctx, reply); err != nil {
		log.Printf("[ERROR] Failed to record failure on message %s: %v", reply.Id, err)
		return err
	}

	// The failed reply is still a row in the session, so the derived counter
	// has to account for it the same way the completion path does.
	if err := uow.ChatSessionRepository().TouchLastMessage(ctx, job.ChatSessionId); err != nil {
		log.Printf("[ERROR] Failed to touch session %s after failure: %v", job.ChatSessionId, err)
	}

	gs.publishEvent(ctx, events.NewMessageFailed(job.ChatSessionId, reply.Id, job.UserId, reason))
	return cause
}

// failureReason renders a user-presentable reason without leaking internals.
func failureReason(err error) string {
	switch apperror.KindOf(err) {
	case apperror.KindTimeout:
		return "The response took too long to generate. Please try again."
	case apperror.KindUpstreamUnavailable:
		return "A required service is temporarily unavailable. Please try again."
	default:
		return "Something went wrong while generating the response."
	}
}

func (gs *generationService) publishEvent(ctx context.Context, evt events.Event) {
	if gs.eventPublisher == nil {
		return
	}
	if err := gs.eventPublisher.Publish(ctx, evt); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", evt.EventType(), err)
	}
}
