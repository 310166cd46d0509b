package domain

import (
	"fmt"
	"strings"
	"time"
)

// KeyPrefix namespaces every key reportdex writes to a shared key-value store.
const KeyPrefix = "reportdex:"

// Topic is a named cache invalidation scope.
type Topic string

// Cache topics.
const (
	// TopicDocuments groups every cached report search result.
	TopicDocuments Topic = "documents"
	// TopicFacetOptions groups the cached facet vocabularies.
	TopicFacetOptions Topic = "facet-options"
)

// Default freshness windows per topic.
const (
	DefaultDocumentsWindow    = 10 * time.Minute
	DefaultFacetOptionsWindow = 24 * time.Hour
)

// topicAliases maps the legacy revalidation tags onto topics.
var topicAliases = map[string]Topic{
	"documents":      TopicDocuments,
	"reports":        TopicDocuments,
	"facet-options":  TopicFacetOptions,
	"filter-options": TopicFacetOptions,
}

// ParseTopic resolves a topic name or legacy tag.
func ParseTopic(s string) (Topic, error) {
	if t, ok := topicAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTopic, s)
}

// Topics lists every known topic.
func Topics() []Topic {
	return []Topic{TopicDocuments, TopicFacetOptions}
}
