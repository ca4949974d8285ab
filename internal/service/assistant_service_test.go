package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"legal-assistant-be/internal/config"
	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/pkg/serverutils"
	"legal-assistant-be/internal/repository/memory"
	"legal-assistant-be/pkg/analysis"
	"legal-assistant-be/pkg/assistant"
	"legal-assistant-be/pkg/conversation"
	"legal-assistant-be/pkg/docctx"
	"legal-assistant-be/pkg/llm"
)

type scriptedProvider struct {
	reply string
}

func (p *scriptedProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return p.reply, nil
}

func (p *scriptedProvider) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	return p.reply, nil
}

type scriptedAnalyzer struct {
	result *analysis.Result
	err    error
}

func (a *scriptedAnalyzer) Analyze(_ context.Context, _ *analysis.FileRef) (*analysis.Result, error) {
	return a.result, a.err
}

func newTestService(ctxStore docctx.Store) IAssistantService {
	return NewAssistantService(
		memory.NewSessionRegistry(),
		ctxStore,
		&scriptedAnalyzer{result: &analysis.Result{DocumentType: "NDA", RiskLevel: "low", OverallRiskScore: 10}},
		&scriptedProvider{reply: "Here is my take."},
		assistant.NopNotifier{},
		config.AssistantConfig{
			RetentionCap:    20,
			HistoryWindow:   10,
			PollInterval:    50 * time.Millisecond,
			GenerateTimeout: time.Second,
		},
		config.AIConfig{Temperature: 0.7},
		logger.NewNopLogger(),
	)
}

func TestSendMessageRoundtrip(t *testing.T) {
	svc := newTestService(docctx.NewMemoryStore())
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId)
	assert.NoError(t, err)

	res, err := svc.SendMessage(context.Background(), userId, created.Id, &dto.SendMessageRequest{
		Message: "Is this contract risky?",
	})
	assert.NoError(t, err)
	assert.NotNil(t, res.Reply)
	assert.Equal(t, conversation.RoleAssistant, res.Reply.Role)
	assert.Equal(t, "Here is my take.", res.Reply.Text)

	history, err := svc.GetHistory(context.Background(), userId, created.Id)
	assert.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, conversation.RoleUser, history[0].Role)
}

func TestSessionOwnershipIsEnforced(t *testing.T) {
	svc := newTestService(docctx.NewMemoryStore())
	owner := uuid.New()
	stranger := uuid.New()

	created, err := svc.CreateSession(context.Background(), owner)
	assert.NoError(t, err)

	_, err = svc.GetHistory(context.Background(), stranger, created.Id)
	assert.ErrorIs(t, err, serverutils.ErrSessionNotFound)

	_, err = svc.SendMessage(context.Background(), stranger, created.Id, &dto.SendMessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, serverutils.ErrSessionNotFound)
}

func TestUnknownSessionReportsNotFound(t *testing.T) {
	svc := newTestService(docctx.NewMemoryStore())

	err := svc.ClearHistory(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, serverutils.ErrSessionNotFound)
}

func TestCreateSessionBindsExistingDocument(t *testing.T) {
	store := docctx.NewMemoryStore()
	userId := uuid.New()

	seeded := &docctx.DocumentContext{
		Fingerprint: docctx.Fingerprint("lease.pdf", 2048, time.Now()),
		Summary: docctx.SummaryFields{
			DocumentType: "Lease Agreement",
			RiskLevel:    "medium",
			RiskScore:    55,
		},
		AnalyzedAt: time.Now(),
	}
	assert.NoError(t, store.Save(context.Background(), userId.String(), seeded))

	svc := newTestService(store)
	created, err := svc.CreateSession(context.Background(), userId)
	assert.NoError(t, err)

	// The pre-analyzed document binds at creation time, before the first
	// poll tick, seeding the summary turn.
	history, err := svc.GetHistory(context.Background(), userId, created.Id)
	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, conversation.RoleSystem, history[0].Role)
	assert.Contains(t, history[0].Text, "Lease Agreement")
}

func TestAnalyzeDocumentReturnsSummaryAndTurn(t *testing.T) {
	svc := newTestService(docctx.NewMemoryStore())
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId)
	assert.NoError(t, err)

	res, err := svc.AnalyzeDocument(context.Background(), userId, created.Id, &analysis.FileRef{
		Name:       "nda.pdf",
		Size:       1024,
		Content:    []byte("confidentiality terms"),
		UploadedAt: time.Now(),
	})
	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "NDA", res.Document.DocumentType)
	assert.NotNil(t, res.Turn)
	assert.Equal(t, conversation.RoleSystem, res.Turn.Role)
}

func TestAnalyzeFailureSurfacesAssistantTurn(t *testing.T) {
	svc := NewAssistantService(
		memory.NewSessionRegistry(),
		docctx.NewMemoryStore(),
		&scriptedAnalyzer{err: assert.AnError},
		&scriptedProvider{reply: "unused"},
		assistant.NopNotifier{},
		config.AssistantConfig{RetentionCap: 20, HistoryWindow: 10, PollInterval: 50 * time.Millisecond, GenerateTimeout: time.Second},
		config.AIConfig{Temperature: 0.7},
		logger.NewNopLogger(),
	)
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId)
	assert.NoError(t, err)

	res, err := svc.AnalyzeDocument(context.Background(), userId, created.Id, &analysis.FileRef{
		Name: "broken.pdf", Size: 10, UploadedAt: time.Now(),
	})
	assert.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Document)
	assert.NotNil(t, res.Turn)
	assert.Equal(t, conversation.RoleAssistant, res.Turn.Role)
}

func TestDeleteSessionRemovesIt(t *testing.T) {
	svc := newTestService(docctx.NewMemoryStore())
	userId := uuid.New()

	created, err := svc.CreateSession(context.Background(), userId)
	assert.NoError(t, err)

	assert.NoError(t, svc.DeleteSession(context.Background(), userId, created.Id))

	_, err = svc.GetHistory(context.Background(), userId, created.Id)
	assert.ErrorIs(t, err, serverutils.ErrSessionNotFound)
}
