package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/llm"
	"mindful-chat/internal/repository"
)

const (
	defaultProviderTimeout = 30 * time.Second

	msgEmptyInput          = "Please type a message before sending."
	msgProviderUnavailable = "I apologize, but I'm having trouble connecting right now. Please try again in a moment."
	msgPersistenceFailure  = "I couldn't save our conversation right now. Please try again later."
)

// ChatService coordina un ciclo de conversación: turno del usuario, llamada al proveedor,
// turno del modelo y respuesta al cliente. El log del servidor es siempre la fuente de verdad.
type ChatService struct {
	logger    *zap.Logger
	history   repository.HistoryRepository
	llmClient llm.LLMClient
	assembler PromptAssembler
	timeout   time.Duration
	locks     *sessionLocks
}

func NewChatService(logger *zap.Logger, history repository.HistoryRepository, llmClient llm.LLMClient, assembler PromptAssembler, timeout time.Duration) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return &ChatService{
		logger:    logger,
		history:   history,
		llmClient: llmClient,
		assembler: assembler,
		timeout:   timeout,
		locks:     newSessionLocks(),
	}
}

// HandleTurn ejecuta un turno completo. clientHistory es solo una pista: nunca se escribe.
func (s *ChatService) HandleTurn(ctx context.Context, sessionID, userText string, clientHistory []domain.Turn) (domain.TurnResult, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return domain.TurnResult{}, domain.NewError(domain.ErrorEmptyInput, msgEmptyInput, nil)
	}

	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		s.logger.Warn("session busy", zap.String("session_id", sessionID), zap.Error(err))
		return domain.TurnResult{}, domain.NewError(domain.ErrorProviderUnavailable, msgProviderUnavailable, err)
	}
	defer unlock()

	log, err := s.history.Get(ctx, sessionID)
	if err != nil {
		s.logger.Error("load history failed", zap.String("session_id", sessionID), zap.Error(err))
		return domain.TurnResult{}, domain.NewError(domain.ErrorPersistenceFailure, msgPersistenceFailure, err)
	}
	s.logDivergence(sessionID, log, clientHistory)

	log, err = s.storeUserTurn(ctx, sessionID, log, userText)
	if err != nil {
		s.logger.Error("append user turn failed", zap.String("session_id", sessionID), zap.Error(err))
		return domain.TurnResult{}, domain.NewError(domain.ErrorPersistenceFailure, msgPersistenceFailure, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	reply, err := s.llmClient.Complete(callCtx, s.assembler.ToProviderRequest(log))
	if err == nil && strings.TrimSpace(reply) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		s.logger.Warn("provider call failed", zap.String("session_id", sessionID), zap.Error(err))
		return domain.TurnResult{}, domain.NewError(domain.ErrorProviderUnavailable, msgProviderUnavailable, err)
	}
	reply = strings.TrimSpace(reply)

	modelTurn := domain.Turn{Role: domain.RoleModel, Text: reply}
	if err := s.history.Append(ctx, sessionID, modelTurn); err != nil {
		s.logger.Error("append model turn failed", zap.String("session_id", sessionID), zap.Error(err))
		return domain.TurnResult{}, domain.NewError(domain.ErrorPersistenceFailure, msgPersistenceFailure, err)
	}
	log = append(log, modelTurn)

	return domain.TurnResult{
		ResponseText: reply,
		NewHistory:   s.assembler.ToClientView(log),
	}, nil
}

// History devuelve la vista de cliente del log de la sesión.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	log, err := s.history.Get(ctx, sessionID)
	if err != nil {
		s.logger.Error("load history failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, domain.NewError(domain.ErrorPersistenceFailure, msgPersistenceFailure, err)
	}
	return s.assembler.ToClientView(log), nil
}

// Clear vacía el log de la sesión. Es idempotente.
func (s *ChatService) Clear(ctx context.Context, sessionID string) error {
	unlock, err := s.locks.Lock(ctx, sessionID)
	if err != nil {
		return domain.NewError(domain.ErrorPersistenceFailure, msgPersistenceFailure, err)
	}
	defer unlock()

	if err := s.history.Clear(ctx, sessionID); err != nil {
		s.logger.Error("clear history failed", zap.String("session_id", sessionID), zap.Error(err))
		return domain.NewError(domain.ErrorPersistenceFailure, msgPersistenceFailure, err)
	}
	return nil
}

// storeUserTurn persiste el turno del usuario y, si falta, el preámbulo al inicio del log.
// Un log vacío se escribe con un único Append; uno sin preámbulo al inicio se reescribe con Replace.
func (s *ChatService) storeUserTurn(ctx context.Context, sessionID string, log []domain.Turn, userText string) ([]domain.Turn, error) {
	var pending []domain.Turn
	if !endsWithPendingUserTurn(log, userText) {
		pending = append(pending, domain.Turn{Role: domain.RoleUser, Text: userText})
	}

	if s.assembler.HasPreamble(log) {
		if len(pending) == 0 {
			return log, nil
		}
		if err := s.history.Append(ctx, sessionID, pending...); err != nil {
			return nil, err
		}
		return append(log, pending...), nil
	}

	if len(log) == 0 {
		turns := append(s.assembler.Preamble(), pending...)
		if err := s.history.Append(ctx, sessionID, turns...); err != nil {
			return nil, err
		}
		return turns, nil
	}

	full := make([]domain.Turn, 0, len(s.assembler.Preamble())+len(log)+len(pending))
	full = append(full, s.assembler.Preamble()...)
	full = append(full, log...)
	full = append(full, pending...)
	if err := s.history.Replace(ctx, sessionID, full); err != nil {
		return nil, err
	}
	return full, nil
}

// endsWithPendingUserTurn detecta el reintento de una pregunta que quedó sin respuesta.
func endsWithPendingUserTurn(log []domain.Turn, userText string) bool {
	if len(log) == 0 {
		return false
	}
	last := log[len(log)-1]
	return last.Role == domain.RoleUser && last.Text == userText
}

func (s *ChatService) logDivergence(sessionID string, log, clientHistory []domain.Turn) {
	if clientHistory == nil {
		return
	}
	view := s.assembler.ToClientView(log)
	if len(view) != len(clientHistory) {
		s.logger.Debug("client history diverged",
			zap.String("session_id", sessionID),
			zap.Int("server_turns", len(view)),
			zap.Int("client_turns", len(clientHistory)),
		)
	}
}
