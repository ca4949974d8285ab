package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/pkg/analysis"
	"legal-assistant-be/pkg/conversation"
	"legal-assistant-be/pkg/docctx"
	"legal-assistant-be/pkg/llm"
	"legal-assistant-be/pkg/narration"
)

// Options tunes a session controller. Zero values fall back to defaults.
type Options struct {
	RetentionCap    int
	HistoryWindow   int
	GenerateTimeout time.Duration
	Temperature     float64
}

const (
	defaultHistoryWindow   = 10
	defaultGenerateTimeout = 15 * time.Second
	defaultTemperature     = 0.7
)

// Controller is the single entry point for one conversational session:
// message submission, response generation, narration toggling and document
// binding. One Controller exists per page activation.
type Controller struct {
	mu            sync.Mutex
	id            uuid.UUID
	owner         string
	turns         *conversation.Store
	boundDocument *docctx.DocumentContext
	pending       bool
	uploading     bool
	resetToken    uint64

	store    docctx.Store
	analyzer analysis.Analyzer
	provider llm.LLMProvider
	narrator *narration.Coordinator
	notifier Notifier
	logger   logger.ILogger

	historyWindow   int
	generateTimeout time.Duration
	temperature     float64
}

func NewController(
	id uuid.UUID,
	owner string,
	store docctx.Store,
	analyzer analysis.Analyzer,
	provider llm.LLMProvider,
	narrator *narration.Coordinator,
	notifier Notifier,
	log logger.ILogger,
	opts Options,
) *Controller {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = defaultHistoryWindow
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = defaultGenerateTimeout
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTemperature
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	c := &Controller{
		id:              id,
		owner:           owner,
		turns:           conversation.NewStore(opts.RetentionCap),
		store:           store,
		analyzer:        analyzer,
		provider:        provider,
		narrator:        narrator,
		notifier:        notifier,
		logger:          log,
		historyWindow:   opts.HistoryWindow,
		generateTimeout: opts.GenerateTimeout,
		temperature:     opts.Temperature,
	}

	if narrator != nil {
		narrator.SetStateListener(func(activeID string) {
			c.notifier.NarrationState(c.id, activeID)
		})
	}

	return c
}

// Id returns the session id.
func (c *Controller) Id() uuid.UUID { return c.id }

// Owner returns the context-store owner key this session reads and writes.
func (c *Controller) Owner() string { return c.owner }

// Pending reports whether a generation request is outstanding.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Uploading reports whether a document analysis is in flight.
func (c *Controller) Uploading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading
}

// BoundDocument returns the document context currently bound to the session,
// or nil before any document is loaded.
func (c *Controller) BoundDocument() *docctx.DocumentContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.boundDocument
}

// History returns the most recent limit turns (all when limit <= 0).
func (c *Controller) History(limit int) []conversation.Turn {
	return c.turns.Snapshot(limit)
}

// SubmitMessage appends a user turn and requests a response. Empty input is
// silently ignored. While a request is outstanding further submissions are
// rejected with ErrSubmissionPending; the turn count does not change.
//
// The returned turn is the appended assistant turn: the generated reply on
// success, a user-safe canned message on failure. A late result arriving
// after the session was reset is discarded and both return values are nil.
func (c *Controller) SubmitMessage(ctx context.Context, text string) (*conversation.Turn, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		// Empty input is not surfaced as an error.
		return nil, nil
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return nil, ErrSubmissionPending
	}
	c.pending = true
	token := c.resetToken

	// History bundled with the request excludes the turn being submitted.
	history := c.turns.Snapshot(c.historyWindow)
	c.turns.Append(conversation.NewTurn(conversation.RoleUser, trimmed))

	var summary *docctx.SummaryFields
	if c.boundDocument != nil {
		s := c.boundDocument.Summary
		summary = &s
	}
	c.mu.Unlock()

	reply, genErr := c.generate(ctx, trimmed, history, summary)

	c.mu.Lock()
	c.pending = false
	if c.resetToken != token {
		c.mu.Unlock()
		c.logger.Info("Assistant", "Discarding late response after session reset", map[string]interface{}{
			"session_id": c.id.String(),
		})
		return nil, nil
	}

	var turn conversation.Turn
	if genErr != nil {
		c.logger.Error("Assistant", "Generation failed", map[string]interface{}{
			"session_id": c.id.String(),
			"error":      genErr.Error(),
		})
		turn = conversation.NewTurn(conversation.RoleAssistant, cannedFailureMessage(genErr))
	} else {
		turn = conversation.NewTurn(conversation.RoleAssistant, reply)
	}
	c.turns.Append(turn)
	c.mu.Unlock()

	return &turn, nil
}

// RegenerateLast re-submits the text of the most recent user turn. The new
// exchange is appended; prior turns are never rewritten.
func (c *Controller) RegenerateLast(ctx context.Context) (*conversation.Turn, error) {
	text, ok := c.turns.LastUserText()
	if !ok {
		return nil, ErrNoUserTurn
	}
	return c.SubmitMessage(ctx, text)
}

// ToggleNarration starts, stops or replaces narration for the given
// utterance id (stop/start toggle on the same control).
func (c *Controller) ToggleNarration(text, utteranceID string) (bool, error) {
	if c.narrator == nil {
		return false, fmt.Errorf("narration is not available")
	}
	return c.narrator.Toggle(text, utteranceID)
}

// AnalyzeAndBindDocument sends a file to the analysis gateway and, on
// success, publishes the result to the context store, rebinds this session
// directly and clears the conversation. On failure the previous binding and
// history are kept and one assistant turn explains the failure. Concurrent
// uploads are rejected with ErrAnalysisInFlight.
func (c *Controller) AnalyzeAndBindDocument(ctx context.Context, file *analysis.FileRef) (*docctx.DocumentContext, error) {
	c.mu.Lock()
	if c.uploading {
		c.mu.Unlock()
		return nil, ErrAnalysisInFlight
	}
	c.uploading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.uploading = false
		c.mu.Unlock()
	}()

	result, err := c.analyzer.Analyze(ctx, file)
	if err != nil {
		c.logger.Error("Assistant", "Document analysis failed", map[string]interface{}{
			"session_id": c.id.String(),
			"file":       file.Name,
			"error":      err.Error(),
		})
		c.turns.Append(conversation.NewTurn(conversation.RoleAssistant, MsgAnalysisFailed))
		return nil, fmt.Errorf("analyze document: %w", err)
	}

	doc := &docctx.DocumentContext{
		Fingerprint: docctx.Fingerprint(file.Name, file.Size, file.UploadedAt),
		Summary: docctx.SummaryFields{
			DocumentType:   result.DocumentType,
			RiskLevel:      result.RiskLevel,
			RiskScore:      result.OverallRiskScore,
			MainConcerns:   result.MainConcerns,
			Parties:        result.Parties,
			Recommendation: result.Recommendation,
		},
		AnalyzedAt: time.Now(),
	}

	// Publish first so the watcher and any other consumer observe the new
	// fingerprint; the write replaces the whole record atomically.
	if err := c.store.Save(ctx, c.owner, doc); err != nil {
		c.logger.Error("Assistant", "Context store write failed", map[string]interface{}{
			"session_id":  c.id.String(),
			"fingerprint": doc.Fingerprint,
			"error":       err.Error(),
		})
		c.turns.Append(conversation.NewTurn(conversation.RoleAssistant, MsgAnalysisFailed))
		return nil, fmt.Errorf("save document context: %w", err)
	}

	// Rebind directly instead of waiting a poll interval. Going through the
	// fingerprint comparison keeps the reset single when a watcher poll
	// lands between the store write above and this rebind.
	c.ApplyExternalContext(doc)

	c.logger.Info("Assistant", "Document bound to session", map[string]interface{}{
		"session_id":  c.id.String(),
		"fingerprint": doc.Fingerprint,
		"type":        doc.Summary.DocumentType,
	})

	return doc, nil
}

// ApplyExternalContext rebinds the session when the given document context
// carries a new fingerprint. Re-applying the same fingerprint is a no-op.
// Called by the context watcher.
func (c *Controller) ApplyExternalContext(doc *docctx.DocumentContext) bool {
	c.mu.Lock()
	if c.boundDocument != nil && c.boundDocument.Fingerprint == doc.Fingerprint {
		c.mu.Unlock()
		return false
	}
	c.rebindLocked(doc)
	c.mu.Unlock()

	c.notifier.DocumentChanged(c.id, doc)
	return true
}

// ClearHistory empties the conversation on user request. Any in-progress
// narration is silenced and an outstanding response is invalidated; the
// document binding survives.
func (c *Controller) ClearHistory() {
	c.mu.Lock()
	c.resetToken++
	c.mu.Unlock()

	if c.narrator != nil {
		c.narrator.CancelActive()
	}
	c.turns.Clear()
}

// rebindLocked replaces the bound document wholesale, resets the
// conversation and seeds the one-time system summary turn. Callers hold
// c.mu and notify outside the lock.
func (c *Controller) rebindLocked(doc *docctx.DocumentContext) {
	c.boundDocument = doc
	c.resetToken++
	if c.narrator != nil {
		c.narrator.CancelActive()
	}
	c.turns.Clear()
	c.turns.Append(conversation.NewTurn(conversation.RoleSystem, SummaryMessage(doc.Summary)))
}

// generate performs the bounded-wait call to the generation endpoint.
func (c *Controller) generate(
	ctx context.Context,
	message string,
	history []conversation.Turn,
	summary *docctx.SummaryFields,
) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	messages := buildMessages(message, history, summary)
	return c.provider.Chat(genCtx, messages, llm.WithTemperature(c.temperature))
}

func buildMessages(message string, history []conversation.Turn, summary *docctx.SummaryFields) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)

	if summary != nil {
		messages = append(messages, llm.Message{
			Role:    conversation.RoleSystem,
			Content: documentPrompt(summary),
		})
	}
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Text})
	}
	messages = append(messages, llm.Message{Role: conversation.RoleUser, Content: message})

	return messages
}

func documentPrompt(s *docctx.SummaryFields) string {
	var sb strings.Builder
	sb.WriteString("You are a legal document assistant. The user has the following document loaded:\n")
	sb.WriteString(fmt.Sprintf("- Type: %s\n", s.DocumentType))
	sb.WriteString(fmt.Sprintf("- Risk level: %s (%d/100)\n", s.RiskLevel, s.RiskScore))
	if len(s.Parties) > 0 {
		sb.WriteString(fmt.Sprintf("- Parties: %s\n", strings.Join(s.Parties, ", ")))
	}
	if len(s.MainConcerns) > 0 {
		sb.WriteString(fmt.Sprintf("- Main concerns: %s\n", strings.Join(s.MainConcerns, "; ")))
	}
	if s.Recommendation != "" {
		sb.WriteString(fmt.Sprintf("- Recommendation: %s\n", s.Recommendation))
	}
	sb.WriteString("Answer questions about this document plainly and do not give formal legal advice.")
	return sb.String()
}

func cannedFailureMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return MsgRateLimited
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	default:
		return MsgGenericFailure
	}
}
