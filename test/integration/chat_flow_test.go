package integration

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"docuchat-be/internal/constant"
	"docuchat-be/internal/dto"
	"docuchat-be/internal/entity"
	"docuchat-be/internal/repository/memory"
	"docuchat-be/internal/repository/specification"
	"docuchat-be/internal/repository/unitofwork"
	"docuchat-be/internal/service"
	"docuchat-be/pkg/database"
	"docuchat-be/pkg/ragie"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUow(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	return unitofwork.NewRepositoryFactory(gormDB)
}

func TestChatSessionLifecycle(t *testing.T) {
	uowFactory := setupUow(t)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	userId := uuid.New()
	orgId := uuid.New()

	first := &entity.ChatSession{
		Id:             uuid.New(),
		UserId:         userId,
		OrganizationId: orgId,
		Title:          constant.DefaultSessionTitle,
		IsActive:       true,
		Temperature:    0.7,
		ModelName:      "llama3",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, uow.ChatSessionRepository().Create(ctx, first))

	defer func() {
		uow.ChatMessageRepository().DeleteSourcesByChatSessionIdUnscoped(ctx, first.Id)
		uow.ChatMessageRepository().DeleteByChatSessionIdUnscoped(ctx, first.Id)
		uow.ChatSessionRepository().DeleteUnscoped(ctx, first.Id)
	}()

	t.Run("only one active session per principal", func(t *testing.T) {
		require.NoError(t, uow.ChatSessionRepository().DeactivateAll(ctx, userId, orgId))

		second := &entity.ChatSession{
			Id:             uuid.New(),
			UserId:         userId,
			OrganizationId: orgId,
			Title:          constant.DefaultSessionTitle,
			IsActive:       true,
			Temperature:    0.7,
			ModelName:      "llama3",
			CreatedAt:      time.Now(),
		}
		require.NoError(t, uow.ChatSessionRepository().Create(ctx, second))
		defer uow.ChatSessionRepository().DeleteUnscoped(ctx, second.Id)

		active, err := uow.ChatSessionRepository().FindAll(ctx,
			specification.OwnedBy{UserID: userId, OrganizationID: orgId},
			specification.ActiveOnly{},
		)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, second.Id, active[0].Id)
	})

	t.Run("ownership scoping hides other principals", func(t *testing.T) {
		otherUser := uuid.New()
		found, err := uow.ChatSessionRepository().FindOne(ctx,
			specification.ByID{ID: first.Id},
			specification.OwnedBy{UserID: otherUser, OrganizationID: orgId},
		)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("touch last message bumps the counter", func(t *testing.T) {
		require.NoError(t, uow.ChatSessionRepository().TouchLastMessage(ctx, first.Id))

		reloaded, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: first.Id})
		require.NoError(t, err)
		require.NotNil(t, reloaded)
		assert.Equal(t, 1, reloaded.MessageCount)
		assert.NotNil(t, reloaded.LastMessageAt)
	})
}

func TestChatMessageAndSourceFlow(t *testing.T) {
	uowFactory := setupUow(t)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	userId := uuid.New()
	orgId := uuid.New()

	session := &entity.ChatSession{
		Id:             uuid.New(),
		UserId:         userId,
		OrganizationId: orgId,
		Title:          "Source ordering check",
		IsActive:       true,
		Temperature:    0.7,
		ModelName:      "llama3",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, uow.ChatSessionRepository().Create(ctx, session))

	defer func() {
		uow.ChatMessageRepository().DeleteSourcesByChatSessionIdUnscoped(ctx, session.Id)
		uow.ChatMessageRepository().DeleteByChatSessionIdUnscoped(ctx, session.Id)
		uow.ChatSessionRepository().DeleteUnscoped(ctx, session.Id)
	}()

	reply := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleAssistant,
		Content:       "answer",
		Status:        constant.ChatMessageStatusCompleted,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, uow.ChatMessageRepository().Create(ctx, reply))

	sources := []*entity.ChatSource{
		{Id: uuid.New(), ChatMessageId: reply.Id, RagieDocumentId: "d1", DocumentName: "low.pdf", ChunkText: "low", RelevanceScore: 0.2, Position: 3, CreatedAt: time.Now()},
		{Id: uuid.New(), ChatMessageId: reply.Id, RagieDocumentId: "d2", DocumentName: "high.pdf", ChunkText: "high", RelevanceScore: 0.9, Position: 1, CreatedAt: time.Now()},
		{Id: uuid.New(), ChatMessageId: reply.Id, RagieDocumentId: "d3", DocumentName: "mid.pdf", ChunkText: "mid", RelevanceScore: 0.5, Position: 2, CreatedAt: time.Now()},
	}
	require.NoError(t, uow.ChatMessageRepository().CreateSources(ctx, sources))

	t.Run("sources come back in descending relevance order", func(t *testing.T) {
		got, err := uow.ChatMessageRepository().FindSourcesByMessageIds(ctx, []uuid.UUID{reply.Id})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "high.pdf", got[0].DocumentName)
		assert.Equal(t, "mid.pdf", got[1].DocumentName)
		assert.Equal(t, "low.pdf", got[2].DocumentName)
	})

	t.Run("cascade delete removes everything", func(t *testing.T) {
		require.NoError(t, uow.ChatMessageRepository().DeleteSourcesByChatSessionIdUnscoped(ctx, session.Id))
		require.NoError(t, uow.ChatMessageRepository().DeleteByChatSessionIdUnscoped(ctx, session.Id))
		require.NoError(t, uow.ChatSessionRepository().DeleteUnscoped(ctx, session.Id))

		gone, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
		require.NoError(t, err)
		assert.Nil(t, gone)

		count, err := uow.ChatMessageRepository().Count(ctx,
			specification.ByChatSessionID{ChatSessionID: session.Id},
		)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestArchiveSessionIsIdempotent(t *testing.T) {
	uowFactory := setupUow(t)
	ctx := context.Background()

	chatService := service.NewChatService(uowFactory, nil, nil,
		memory.NewActiveSessionCache(), nil, false, "llama3", 0.7)

	userId := uuid.New()
	orgId := uuid.New()

	created, err := chatService.CreateSession(ctx, userId, orgId)
	require.NoError(t, err)
	defer chatService.DeleteSession(ctx, userId, orgId, created.Id)

	first, err := chatService.ArchiveSession(ctx, userId, orgId, created.Id)
	require.NoError(t, err)
	assert.True(t, first.IsArchived)
	assert.False(t, first.IsActive)

	// Archiving again is a no-op, not an error, and lands in the same state.
	second, err := chatService.ArchiveSession(ctx, userId, orgId, created.Id)
	require.NoError(t, err)
	assert.True(t, second.IsArchived)
	assert.False(t, second.IsActive)
	assert.Equal(t, first.Id, second.Id)
}

func TestFailedGenerationKeepsCounterConsistent(t *testing.T) {
	uowFactory := setupUow(t)
	ctx := context.Background()
	uow := uowFactory.NewUnitOfWork(ctx)

	retrievalDown := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer retrievalDown.Close()

	generationService := service.NewGenerationService(nil, "",
		uowFactory, ragie.NewClient(retrievalDown.URL, "test-key"), nil, nil, 5)

	userId := uuid.New()
	orgId := uuid.New()

	session := &entity.ChatSession{
		Id:             uuid.New(),
		UserId:         userId,
		OrganizationId: orgId,
		Title:          constant.DefaultSessionTitle,
		IsActive:       true,
		Temperature:    0.7,
		ModelName:      "llama3",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, uow.ChatSessionRepository().Create(ctx, session))

	defer func() {
		uow.ChatMessageRepository().DeleteSourcesByChatSessionIdUnscoped(ctx, session.Id)
		uow.ChatMessageRepository().DeleteByChatSessionIdUnscoped(ctx, session.Id)
		uow.ChatSessionRepository().DeleteUnscoped(ctx, session.Id)
	}()

	reply := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: session.Id,
		Role:          constant.ChatMessageRoleAssistant,
		Status:        constant.ChatMessageStatusPending,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, uow.ChatMessageRepository().Create(ctx, reply))

	job := &dto.GenerateReplyJob{
		MessageId:      reply.Id,
		ChatSessionId:  session.Id,
		UserId:         userId,
		OrganizationId: orgId,
		Question:       "what is in the report?",
		Mode:           constant.ResponseModeBalanced,
		Model:          "llama3",
		Temperature:    0.7,
	}
	require.Error(t, generationService.GenerateReply(ctx, job))

	failed, err := uow.ChatMessageRepository().FindOne(ctx, specification.ByID{ID: reply.Id})
	require.NoError(t, err)
	require.NotNil(t, failed)
	assert.Equal(t, constant.ChatMessageStatusFailed, failed.Status)
	assert.NotEmpty(t, failed.ErrorMessage)

	// The failed reply still counts toward the session's message total.
	reloaded, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, 1, reloaded.MessageCount)
}
