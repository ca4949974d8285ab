package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

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
	"legal-assistant-be/pkg/narration"
)

type IAssistantService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.TurnDTO, error)
	SendMessage(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	Regenerate(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SendMessageResponse, error)
	ToggleNarration(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.NarrationRequest) (*dto.NarrationResponse, error)
	AnalyzeDocument(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, file *analysis.FileRef) (*dto.AnalyzeDocumentResponse, error)
	ClearHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	SetVisibility(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, visible bool) error
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
}

type assistantService struct {
	registry    *memory.SessionRegistry
	ctxStore    docctx.Store
	analyzer    analysis.Analyzer
	llmProvider llm.LLMProvider
	notifier    assistant.Notifier
	assistCfg   config.AssistantConfig
	aiCfg       config.AIConfig
	narrBaseURL string
	sysLogger   logger.ILogger
}

func NewAssistantService(
	registry *memory.SessionRegistry,
	ctxStore docctx.Store,
	analyzer analysis.Analyzer,
	llmProvider llm.LLMProvider,
	notifier assistant.Notifier,
	assistCfg config.AssistantConfig,
	aiCfg config.AIConfig,
	sysLogger logger.ILogger,
) IAssistantService {
	return &assistantService{
		registry:    registry,
		ctxStore:    ctxStore,
		analyzer:    analyzer,
		llmProvider: llmProvider,
		notifier:    notifier,
		assistCfg:   assistCfg,
		aiCfg:       aiCfg,
		narrBaseURL: assistCfg.NarrationBaseURL,
		sysLogger:   sysLogger,
	}
}

// CreateSession builds a fresh controller plus watcher pair, checks the
// context store once so an already-analyzed document binds immediately, and
// starts the poll loop.
func (s *assistantService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	sessionId := uuid.New()

	narrator := narration.NewCoordinator(narration.NewHTTPEngine(s.narrBaseURL), s.sysLogger)

	controller := assistant.NewController(
		sessionId,
		userId.String(),
		s.ctxStore,
		s.analyzer,
		s.llmProvider,
		narrator,
		s.notifier,
		s.sysLogger,
		assistant.Options{
			RetentionCap:    s.assistCfg.RetentionCap,
			HistoryWindow:   s.assistCfg.HistoryWindow,
			GenerateTimeout: s.assistCfg.GenerateTimeout,
			Temperature:     s.aiCfg.Temperature,
		},
	)

	watcher := assistant.NewWatcher(controller, s.ctxStore, s.assistCfg.PollInterval, s.sysLogger)
	watcher.CheckNow(ctx)

	watchCtx, stop := context.WithCancel(context.Background())
	go watcher.Run(watchCtx)

	s.registry.Put(sessionId, controller, watcher, stop)

	s.sysLogger.Info("AssistantService", "Session created", map[string]interface{}{
		"session_id": sessionId.String(),
		"user_id":    userId.String(),
	})

	return &dto.CreateSessionResponse{Id: sessionId}, nil
}

func (s *assistantService) GetHistory(_ context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.TurnDTO, error) {
	entry, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}

	turns := entry.Controller.History(0)
	res := make([]*dto.TurnDTO, 0, len(turns))
	for i := range turns {
		res = append(res, toTurnDTO(&turns[i]))
	}
	return res, nil
}

func (s *assistantService) SendMessage(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	entry, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}

	reply, err := entry.Controller.SubmitMessage(ctx, req.Message)
	if err != nil {
		return nil, err
	}

	return &dto.SendMessageResponse{
		SessionId: sessionId,
		Reply:     toTurnDTO(reply),
	}, nil
}

func (s *assistantService) Regenerate(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SendMessageResponse, error) {
	entry, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}

	reply, err := entry.Controller.RegenerateLast(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.SendMessageResponse{
		SessionId: sessionId,
		Reply:     toTurnDTO(reply),
	}, nil
}

func (s *assistantService) ToggleNarration(_ context.Context, userId uuid.UUID, sessionId uuid.UUID, req *dto.NarrationRequest) (*dto.NarrationResponse, error) {
	entry, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}

	started, err := entry.Controller.ToggleNarration(req.Text, req.UtteranceId)
	if err != nil {
		return nil, err
	}

	res := &dto.NarrationResponse{Speaking: started}
	if started {
		res.ActiveUtteranceId = req.UtteranceId
	}
	return res, nil
}

func (s *assistantService) AnalyzeDocument(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID, file *analysis.FileRef) (*dto.AnalyzeDocumentResponse, error) {
	entry, err := s.session(userId, sessionId)
	if err != nil {
		return nil, err
	}

	doc, err := entry.Controller.AnalyzeAndBindDocument(ctx, file)
	if err != nil {
		if errors.Is(err, assistant.ErrAnalysisInFlight) {
			return nil, err
		}
		// The controller already appended the failure turn; surface it so
		// the widget renders the same message without a history refetch.
		return &dto.AnalyzeDocumentResponse{
			Success: false,
			Turn:    lastTurnDTO(entry.Controller),
		}, nil
	}

	return &dto.AnalyzeDocumentResponse{
		Success: true,
		Document: &dto.DocumentSummaryDTO{
			Fingerprint:    doc.Fingerprint,
			DocumentType:   doc.Summary.DocumentType,
			RiskLevel:      doc.Summary.RiskLevel,
			RiskScore:      doc.Summary.RiskScore,
			MainConcerns:   doc.Summary.MainConcerns,
			Parties:        doc.Summary.Parties,
			Recommendation: doc.Summary.Recommendation,
		},
		Turn: lastTurnDTO(entry.Controller),
	}, nil
}

func (s *assistantService) ClearHistory(_ context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	entry, err := s.session(userId, sessionId)
	if err != nil {
		return err
	}
	entry.Controller.ClearHistory()
	return nil
}

// SetVisibility pauses or resumes the session's context watcher as the chat
// panel is hidden or shown. Resuming triggers an immediate check.
func (s *assistantService) SetVisibility(_ context.Context, userId uuid.UUID, sessionId uuid.UUID, visible bool) error {
	entry, err := s.session(userId, sessionId)
	if err != nil {
		return err
	}
	entry.Watcher.SetVisible(visible)
	return nil
}

func (s *assistantService) DeleteSession(_ context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	entry, err := s.session(userId, sessionId)
	if err != nil {
		return err
	}
	entry.Controller.ClearHistory()
	s.registry.Delete(sessionId)

	s.sysLogger.Info("AssistantService", "Session deleted", map[string]interface{}{
		"session_id": sessionId.String(),
	})
	return nil
}

// session resolves and authorizes a live session. A session owned by another
// user reports not-found rather than forbidden.
func (s *assistantService) session(userId uuid.UUID, sessionId uuid.UUID) (*memory.Entry, error) {
	entry, found := s.registry.Get(sessionId)
	if !found || entry.Controller.Owner() != userId.String() {
		return nil, serverutils.ErrSessionNotFound
	}
	s.registry.Touch(sessionId)
	return entry, nil
}

func toTurnDTO(t *conversation.Turn) *dto.TurnDTO {
	if t == nil {
		return nil
	}
	return &dto.TurnDTO{
		Id:        t.Id,
		Role:      t.Role,
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
	}
}

func lastTurnDTO(c *assistant.Controller) *dto.TurnDTO {
	turns := c.History(1)
	if len(turns) == 0 {
		return nil
	}
	return toTurnDTO(&turns[0])
}
