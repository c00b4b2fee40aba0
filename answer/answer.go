package answer

import (
	"context"
	"fmt"

	"llm_api/cache"
	"llm_api/completion"
	"llm_api/logger"
)

// Service produces an answer for a user question.
type Service interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Pipeline implements [Service] by formatting the question into the
// prompt template and submitting the prompt to the completion service.
type Pipeline struct {
	template   completion.PromptTemplate
	completion completion.Service
}

func NewPipeline(template completion.PromptTemplate, compl completion.Service) *Pipeline {
	return &Pipeline{
		template:   template,
		completion: compl,
	}
}

// Answer implements [Service].
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	prompt := p.template.Format(map[string]string{"question": question})

	text, err := p.completion.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("llm call failed: %w", err)
	}
	return text, nil
}

// CachedService implements [Service] by consulting a cache before
// delegating to the wrapped service. Cache failures degrade to the
// wrapped service instead of failing the request, and failed answers
// are never cached.
type CachedService struct {
	next  Service
	cache cache.Service
}

func NewCached(next Service, c cache.Service) *CachedService {
	return &CachedService{
		next:  next,
		cache: c,
	}
}

// Answer implements [Service].
func (s *CachedService) Answer(ctx context.Context, question string) (string, error) {
	cached, isHit, err := s.cache.Get(ctx, question)
	if err != nil {
		logger.Error("failed to get answer from cache: %s", err)
	}
	if isHit {
		logger.Debug("cache hit")
		return cached, nil
	}

	text, err := s.next.Answer(ctx, question)
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, question, text); err != nil {
		logger.Error("failed to cache answer: %s", err)
	}
	return text, nil
}
