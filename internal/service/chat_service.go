package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docuchat-be/internal/constant"
	"docuchat-be/internal/dto"
	"docuchat-be/internal/entity"
	"docuchat-be/internal/pkg/apperror"
	"docuchat-be/internal/repository/memory"
	"docuchat-be/internal/repository/specification"
	"docuchat-be/internal/repository/unitofwork"
	"docuchat-be/pkg/events"
	pktNats "docuchat-be/pkg/nats"

	"github.com/google/uuid"
)

type IChatService interface {
	GetActiveSession(ctx context.Context, userId, organizationId uuid.UUID) (*dto.ChatSessionResponse, error)
	CreateSession(ctx context.Context, userId, organizationId uuid.UUID) (*dto.ChatSessionResponse, error)
	ListSessions(ctx context.Context, userId, organizationId uuid.UUID, includeArchived bool, limit int) ([]*dto.ChatSessionResponse, error)
	RenameSession(ctx context.Context, userId, organizationId, sessionId uuid.UUID, req *dto.RenameSessionRequest) (*dto.ChatSessionResponse, error)
	ArchiveSession(ctx context.Context, userId, organizationId, sessionId uuid.UUID) (*dto.ChatSessionResponse, error)
	DeleteSession(ctx context.Context, userId, organizationId, sessionId uuid.UUID) error
	SendMessage(ctx context.Context, userId, organizationId uuid.UUID, sessionId *uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetSessionMessages(ctx context.Context, userId, organizationId, sessionId uuid.UUID, limit int, cursor string) (*dto.SessionMessagesResponse, error)
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	publisherService  IPublisherService
	generationService IGenerationService
	activeCache       *memory.ActiveSessionCache
	eventPublisher    *pktNats.Publisher
	syncGeneration    bool
	defaultModel      string
	defaultTemp       float64
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	generationService IGenerationService,
	activeCache *memory.ActiveSessionCache,
	eventPublisher *pktNats.Publisher,
	syncGeneration bool,
	defaultModel string,
	defaultTemp float64,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		publisherService:  publisherService,
		generationService: generationService,
		activeCache:       activeCache,
		eventPublisher:    eventPublisher,
		syncGeneration:    syncGeneration,
		defaultModel:      defaultModel,
		defaultTemp:       defaultTemp,
	}
}

// GetActiveSession returns the caller's active session, creating one when
// none exists. A user always has somewhere to type.
func (c *chatService) GetActiveSession(ctx context.Context, userId, organizationId uuid.UUID) (*dto.ChatSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if cachedId, found := c.activeCache.Get(userId, organizationId); found {
		session, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: cachedId},
			specification.OwnedBy{UserID: userId, OrganizationID: organizationId},
			specification.ActiveOnly{},
			specification.ExcludeArchived{},
		)
		if err != nil {
			return nil, err
		}
		if session != nil {
			return toSessionResponse(session), nil
		}
		c.activeCache.Invalidate(userId, organizationId)
	}

	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.OwnedBy{UserID: userId, OrganizationID: organizationId},
		specification.ActiveOnly{},
		specification.ExcludeArchived{},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return c.CreateSession(ctx, userId, organizationId)
	}

	c.activeCache.Save(userId, organizationId, session.Id)
	return toSessionResponse(session), nil
}

// CreateSession starts a fresh session and makes it the only active one for
// the caller.
func (c *chatService) CreateSession(ctx context.Context, userId, organizationId uuid.UUID) (*dto.ChatSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().DeactivateAll(ctx, userId, organizationId); err != nil {
		return nil, err
	}

	session := entity.ChatSession{
		Id:             uuid.New(),
		UserId:         userId,
		OrganizationId: organizationId,
		Title:          constant.DefaultSessionTitle,
		IsActive:       true,
		Temperature:    c.defaultTemp,
		ModelName:      c.defaultModel,
		CreatedAt:      time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	c.activeCache.Save(userId, organizationId, session.Id)
	return toSessionResponse(&session), nil
}

func (c *chatService) ListSessions(ctx context.Context, userId, organizationId uuid.UUID, includeArchived bool, limit int) ([]*dto.ChatSessionResponse, error) {
	if limit <= 0 || limit > constant.MaxMessagePageSize {
		limit = constant.DefaultSessionListSize
	}

	specs := []specification.Specification{
		specification.OwnedBy{UserID: userId, OrganizationID: organizationId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.LimitTo{Limit: limit},
	}
	if !includeArchived {
		specs = append(specs, specification.ExcludeArchived{})
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, toSessionResponse(session))
	}
	return res, nil
}

func (c *chatService) RenameSession(ctx context.Context, userId, organizationId, sessionId uuid.UUID, req *dto.RenameSessionRequest) (*dto.ChatSessionResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.Validation("title must not be empty")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	session, err := c.findOwnedSession(ctx, uow, userId, organizationId, sessionId)
	if err != nil {
		return nil, err
	}

	session.Title = title
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

// ArchiveSession retires a session from listings. Archiving twice is a no-op,
// not an error.
func (c *chatService) ArchiveSession(ctx context.Context, userId, organizationId, sessionId uuid.UUID) (*dto.ChatSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	session, err := c.findOwnedSession(ctx, uow, userId, organizationId, sessionId)
	if err != nil {
		return nil, err
	}

	if session.IsArchived {
		return toSessionResponse(session), nil
	}

	wasActive := session.IsActive
	session.IsArchived = true
	session.IsActive = false
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	if wasActive {
		c.activeCache.Invalidate(userId, organizationId)
	}

	if c.eventPublisher != nil {
		evt := events.NewSessionArchived(session.Id, userId)
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish session.archived event: %v\n", err)
		}
	}

	return toSessionResponse(session), nil
}

// DeleteSession permanently removes a session with all of its messages and
// sources. There is no undo.
func (c *chatService) DeleteSession(ctx context.Context, userId, organizationId, sessionId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	session, err := c.findOwnedSession(ctx, uow, userId, organizationId, sessionId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// Children first: sources reference messages, messages reference the session.
	if err := uow.ChatMessageRepository().DeleteSourcesByChatSessionIdUnscoped(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionIdUnscoped(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().DeleteUnscoped(ctx, session.Id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if session.IsActive {
		c.activeCache.Invalidate(userId, organizationId)
	}
	return nil
}

// SendMessage accepts a question, persists the exchange and either generates
// the reply inline or queues it. The returned reply reflects whichever path
// ran: completed/failed for inline, pending for queued.
func (c *chatService) SendMessage(ctx context.Context, userId, organizationId uuid.UUID, sessionId *uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apperror.Validation("question must not be empty")
	}

	mode := req.Mode
	if mode == "" {
		mode = constant.ResponseModeBalanced
	}
	if !constant.IsValidResponseMode(mode) {
		return nil, apperror.Validation(fmt.Sprintf("unknown response mode: %s", req.Mode))
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	var session *entity.ChatSession
	var err error
	if sessionId != nil {
		session, err = c.findOwnedSession(ctx, uow, userId, organizationId, *sessionId)
		if err != nil {
			return nil, err
		}
		if session.IsArchived {
			return nil, apperror.Validation("cannot send messages to an archived session")
		}
	} else {
		res, err := c.GetActiveSession(ctx, userId, organizationId)
		if err != nil {
			return nil, err
		}
		session, err = c.findOwnedSession(ctx, uow, userId, organizationId, res.Id)
		if err != nil {
			return nil, err
		}
	}

	model := session.ModelName
	if req.Model != "" {
		model = req.Model
	}

	now := time.Now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleUser,
		Content:       question,
		Status:        constant.ChatMessageStatusCompleted,
		CreatedAt:     now,
	}
	assistantMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleAssistant,
		Status:        constant.ChatMessageStatusPending,
		CreatedAt:     now.Add(time.Millisecond),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &assistantMessage); err != nil {
		return nil, err
	}

	// First question names the conversation.
	if session.MessageCount == 0 && session.Title == constant.DefaultSessionTitle {
		session.Title = deriveTitle(question)
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			return nil, err
		}
	}

	if err := uow.ChatSessionRepository().TouchLastMessage(ctx, session.Id); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}
	session.MessageCount++

	job := dto.GenerateReplyJob{
		MessageId:      assistantMessage.Id,
		ChatSessionId:  session.Id,
		UserId:         userId,
		OrganizationId: organizationId,
		Question:       question,
		Mode:           mode,
		Model:          model,
		Temperature:    session.Temperature,
	}

	if c.syncGeneration {
		if err := c.generationService.GenerateReply(ctx, &job); err != nil {
			fmt.Printf("[WARN] Inline generation failed for message %s: %v\n", assistantMessage.Id, err)
		}
		reloaded, err := uow.ChatMessageRepository().FindOne(ctx, specification.ByID{ID: assistantMessage.Id})
		if err != nil {
			return nil, err
		}
		if reloaded != nil {
			if err := c.attachSources(ctx, uow, []*entity.ChatMessage{reloaded}); err != nil {
				return nil, err
			}
			assistantMessage = *reloaded
		}
	} else {
		payload, err := json.Marshal(job)
		if err != nil {
			return nil, err
		}
		if err := c.publisherService.Publish(ctx, payload); err != nil {
			return nil, err
		}
	}

	return &dto.SendMessageResponse{
		Session: toSessionResponse(session),
		Sent:    toMessageResponse(&userMessage),
		Reply:   toMessageResponse(&assistantMessage),
	}, nil
}

// GetSessionMessages pages through a session's history in chronological
// order. The cursor is the id of the last message from the previous page.
func (c *chatService) GetSessionMessages(ctx context.Context, userId, organizationId, sessionId uuid.UUID, limit int, cursor string) (*dto.SessionMessagesResponse, error) {
	if limit <= 0 {
		limit = constant.DefaultMessagePageSize
	}
	if limit > constant.MaxMessagePageSize {
		limit = constant.MaxMessagePageSize
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	session, err := c.findOwnedSession(ctx, uow, userId, organizationId, sessionId)
	if err != nil {
		return nil, err
	}

	specs := []specification.Specification{
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
		specification.LimitTo{Limit: limit + 1},
	}

	if cursor != "" {
		cursorId, err := uuid.Parse(cursor)
		if err != nil {
			return nil, apperror.Validation("invalid cursor")
		}
		cursorMessage, err := uow.ChatMessageRepository().FindOne(ctx,
			specification.ByID{ID: cursorId},
			specification.ByChatSessionID{ChatSessionID: session.Id},
		)
		if err != nil {
			return nil, err
		}
		if cursorMessage == nil {
			return nil, apperror.Validation("invalid cursor")
		}
		specs = append(specs, specification.CreatedAfter{After: cursorMessage.CreatedAt})
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(messages) > limit {
		messages = messages[:limit]
		nextCursor = messages[len(messages)-1].Id.String()
	}

	if err := c.attachSources(ctx, uow, messages); err != nil {
		return nil, err
	}

	res := make([]*dto.ChatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		res = append(res, toMessageResponse(msg))
	}
	return &dto.SessionMessagesResponse{
		Messages:   res,
		NextCursor: nextCursor,
	}, nil
}

func (c *chatService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, organizationId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{UserID: userId, OrganizationID: organizationId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("chat session not found")
	}
	return session, nil
}

func (c *chatService) attachSources(ctx context.Context, uow unitofwork.UnitOfWork, messages []*entity.ChatMessage) error {
	ids := make([]uuid.UUID, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == constant.ChatMessageRoleAssistant && msg.Status == constant.ChatMessageStatusCompleted {
			ids = append(ids, msg.Id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	sources, err := uow.ChatMessageRepository().FindSourcesByMessageIds(ctx, ids)
	if err != nil {
		return err
	}

	byMessage := make(map[uuid.UUID][]*entity.ChatSource, len(ids))
	for _, src := range sources {
		byMessage[src.ChatMessageId] = append(byMessage[src.ChatMessageId], src)
	}
	for _, msg := range messages {
		msg.Sources = byMessage[msg.Id]
	}
	return nil
}

// deriveTitle turns the first question into a short session title, cutting
// on a word boundary where possible.
func deriveTitle(question string) string {
	title := strings.Join(strings.Fields(question), " ")
	runes := []rune(title)
	if len(runes) <= constant.SessionTitleMaxLen {
		return title
	}
	cut := string(runes[:constant.SessionTitleMaxLen])
	if idx := strings.LastIndex(cut, " "); idx > constant.SessionTitleMaxLen/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}

func toSessionResponse(session *entity.ChatSession) *dto.ChatSessionResponse {
	return &dto.ChatSessionResponse{
		Id:             session.Id,
		UserId:         session.UserId,
		OrganizationId: session.OrganizationId,
		Title:          session.Title,
		IsActive:       session.IsActive,
		IsArchived:     session.IsArchived,
		Temperature:    session.Temperature,
		ModelName:      session.ModelName,
		MessageCount:   session.MessageCount,
		LastMessageAt:  session.LastMessageAt,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
}

func toMessageResponse(msg *entity.ChatMessage) *dto.ChatMessageResponse {
	res := &dto.ChatMessageResponse{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Content:       msg.Content,
		Status:        msg.Status,
		ErrorMessage:  msg.ErrorMessage,
		TokensTotal:   msg.TokensTotal,
		ProcessingMs:  msg.ProcessingMs,
		CreatedAt:     msg.CreatedAt,
	}
	for _, src := range msg.Sources {
		res.Sources = append(res.Sources, ChatSourceToResponse(src))
	}
	return res
}

// ChatSourceToResponse is shared with the generation consumer.
func ChatSourceToResponse(src *entity.ChatSource) dto.ChatSourceResponse {
	return dto.ChatSourceResponse{
		Id:              src.Id,
		RagieDocumentId: src.RagieDocumentId,
		DocumentName:    src.DocumentName,
		PageNumber:      src.PageNumber,
		ChunkText:       src.ChunkText,
		RelevanceScore:  src.RelevanceScore,
	}
}
