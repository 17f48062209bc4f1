package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/repository"
)

const defaultCommunityPageSize = 10

var (
	ErrPostNotFound     = domain.NewError(domain.ErrorNotFound, "Question not found", nil)
	ErrAnswerNotFound   = domain.NewError(domain.ErrorNotFound, "Answer not found", nil)
	ErrSelfAnswer       = domain.NewError(domain.ErrorForbidden, "You can't answer your own question", nil)
	ErrNotPostAuthor    = domain.NewError(domain.ErrorForbidden, "Only the question author can mark a solution", nil)
	ErrPostInvalidInput = domain.NewError(domain.ErrorInvalidInput, "Title and content are required", nil)
	ErrAnswerEmpty      = domain.NewError(domain.ErrorInvalidInput, "Answer content is required", nil)
)

// CommunityService maneja preguntas y respuestas de la comunidad y protege la invariante
// de una sola solución por pregunta.
type CommunityService struct {
	logger   *zap.Logger
	posts    repository.PostRepository
	answers  repository.AnswerRepository
	pageSize int
	now      func() time.Time
}

func NewCommunityService(logger *zap.Logger, posts repository.PostRepository, answers repository.AnswerRepository, pageSize int) *CommunityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = defaultCommunityPageSize
	}
	return &CommunityService{
		logger:   logger,
		posts:    posts,
		answers:  answers,
		pageSize: pageSize,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListLatest devuelve las preguntas más recientes primero.
func (s *CommunityService) ListLatest(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.ListLatest(ctx, s.pageSize)
	if err != nil {
		s.logger.Error("list posts failed", zap.Error(err))
		return nil, persistenceError("Failed to load community posts", err)
	}
	return posts, nil
}

func (s *CommunityService) GetPost(ctx context.Context, id string) (domain.PostDetail, error) {
	post, err := s.loadPost(ctx, id)
	if err != nil {
		return domain.PostDetail{}, err
	}
	answers, err := s.answers.ListByPostID(ctx, post.ID)
	if err != nil {
		s.logger.Error("list answers failed", zap.String("post_id", post.ID), zap.Error(err))
		return domain.PostDetail{}, persistenceError("Failed to load question", err)
	}
	SortAnswers(answers)
	return domain.PostDetail{Post: post, Answers: answers}, nil
}

func (s *CommunityService) CreatePost(ctx context.Context, authorID, title, content string, tags []string) (domain.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" || strings.TrimSpace(authorID) == "" {
		return domain.Post{}, ErrPostInvalidInput
	}
	post := domain.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Tags:      NormalizeTags(tags),
		AuthorID:  authorID,
		CreatedAt: s.now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("create post failed", zap.Error(err))
		return domain.Post{}, persistenceError("Failed to create question", err)
	}
	return post, nil
}

// CreateAnswer rechaza que el autor responda su propia pregunta; en ese caso no se crea nada.
func (s *CommunityService) CreateAnswer(ctx context.Context, postID, requesterID, content string) (domain.Answer, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return domain.Answer{}, err
	}
	if post.AuthorID == requesterID {
		return domain.Answer{}, ErrSelfAnswer
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Answer{}, ErrAnswerEmpty
	}
	answer := domain.Answer{
		ID:        uuid.NewString(),
		PostID:    post.ID,
		Content:   content,
		AuthorID:  requesterID,
		CreatedAt: s.now(),
	}
	if err := s.answers.Create(ctx, answer); err != nil {
		s.logger.Error("create answer failed", zap.String("post_id", post.ID), zap.Error(err))
		return domain.Answer{}, persistenceError("Failed to add answer", err)
	}
	return answer, nil
}

// MarkSolution marca answerID como la solución de su pregunta. Solo el autor de la pregunta puede hacerlo
// y el cambio de todas las banderas ocurre en una única transacción del repositorio.
func (s *CommunityService) MarkSolution(ctx context.Context, answerID, requesterID string) (domain.Answer, error) {
	if _, err := uuid.Parse(answerID); err != nil {
		return domain.Answer{}, ErrAnswerNotFound
	}
	answer, err := s.answers.GetByID(ctx, answerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Answer{}, ErrAnswerNotFound
	}
	if err != nil {
		s.logger.Error("get answer failed", zap.String("answer_id", answerID), zap.Error(err))
		return domain.Answer{}, persistenceError("Failed to mark solution", err)
	}

	post, err := s.loadPost(ctx, answer.PostID)
	if err != nil {
		return domain.Answer{}, err
	}
	if post.AuthorID != requesterID {
		return domain.Answer{}, ErrNotPostAuthor
	}

	err = s.answers.MarkSolution(ctx, post.ID, answer.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Answer{}, ErrAnswerNotFound
	}
	if err != nil {
		s.logger.Error("mark solution failed", zap.String("answer_id", answerID), zap.Error(err))
		return domain.Answer{}, persistenceError("Failed to mark solution", err)
	}
	answer.IsSolution = true
	s.logger.Info("solution marked", zap.String("post_id", post.ID), zap.String("answer_id", answer.ID))
	return answer, nil
}

func (s *CommunityService) loadPost(ctx context.Context, id string) (domain.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Post{}, ErrPostNotFound
	}
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, ErrPostNotFound
	}
	if err != nil {
		s.logger.Error("get post failed", zap.String("post_id", id), zap.Error(err))
		return domain.Post{}, persistenceError("Failed to load question", err)
	}
	return post, nil
}

// SortAnswers ordena primero la solución y luego de más reciente a más antigua.
func SortAnswers(answers []domain.Answer) {
	sort.SliceStable(answers, func(i, j int) bool {
		if answers[i].IsSolution != answers[j].IsSolution {
			return answers[i].IsSolution
		}
		return answers[i].CreatedAt.After(answers[j].CreatedAt)
	})
}

// NormalizeTags acepta listas o valores separados por coma y devuelve un conjunto ordenado por aparición.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			tag := strings.ToLower(strings.TrimSpace(part))
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

func persistenceError(message string, err error) error {
	return domain.NewError(domain.ErrorPersistenceFailure, message, err)
}
