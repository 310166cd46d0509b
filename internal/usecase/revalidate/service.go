// Package revalidate handles on-demand cache topic invalidation.
package revalidate

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/domain"
)

// Invalidator discards every cached entry of a topic.
type Invalidator interface {
	Invalidate(ctx context.Context, topic domain.Topic) error
}

// Service resolves revalidation tags and invalidates their topic.
type Service struct {
	cache         Invalidator
	invalidations *prometheus.CounterVec
	logger        *zap.Logger
}

// New creates a revalidation service. cache can be nil when caching is
// disabled; invalidations (label "topic") can be nil.
func New(cache Invalidator, invalidations *prometheus.CounterVec, logger *zap.Logger) *Service {
	return &Service{cache: cache, invalidations: invalidations, logger: logger}
}

// Revalidate invalidates the topic named by tag and returns it.
// Unknown tags fail with domain.ErrUnknownTopic.
func (s *Service) Revalidate(ctx context.Context, tag string) (domain.Topic, error) {
	topic, err := domain.ParseTopic(tag)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, topic); err != nil {
			return "", fmt.Errorf("invalidate %s: %w", topic, err)
		}
	}
	if s.invalidations != nil {
		s.invalidations.WithLabelValues(string(topic)).Inc()
	}
	s.logger.Info("Cache topic invalidated", zap.String("topic", string(topic)))
	return topic, nil
}
