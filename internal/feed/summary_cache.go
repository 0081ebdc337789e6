package feed

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"postdigest/internal/domain"
)

const summaryCacheMaxEntries = 1024

type summaryCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
}

type summaryCacheEntry struct {
	key       string
	summary   domain.Summary
	expiresAt time.Time
}

func newSummaryCache(maxEntries int) *summaryCache {
	if maxEntries <= 0 {
		return nil
	}

	return &summaryCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func (c *summaryCache) get(key string, now time.Time) (domain.Summary, bool) {
	if c == nil || key == "" {
		return domain.Summary{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return domain.Summary{}, false
	}

	entry, ok := elem.Value.(*summaryCacheEntry)
	if !ok {
		return domain.Summary{}, false
	}

	if now.After(entry.expiresAt) {
		c.removeElement(elem)

		return domain.Summary{}, false
	}

	c.order.MoveToFront(elem)

	return entry.summary, true
}

func (c *summaryCache) set(
	key string,
	summary domain.Summary,
	expiresAt time.Time,
	now time.Time,
) {
	if c == nil || key == "" || summary.IsEmpty() || expiresAt.IsZero() {
		return
	}

	if !expiresAt.After(now) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry, castOk := elem.Value.(*summaryCacheEntry)
		if !castOk {
			return
		}

		entry.summary = summary
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return
	}

	elem := c.order.PushFront(&summaryCacheEntry{
		key:       key,
		summary:   summary,
		expiresAt: expiresAt,
	})
	c.entries[key] = elem

	c.evictExpiredLocked(now)
	c.enforceSizeLimitLocked()
}

func (c *summaryCache) len() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *summaryCache) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()

		entry, ok := elem.Value.(*summaryCacheEntry)
		if ok && now.After(entry.expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *summaryCache) enforceSizeLimitLocked() {
	for len(c.entries) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

func (c *summaryCache) removeElement(elem *list.Element) {
	entry, ok := elem.Value.(*summaryCacheEntry)
	if !ok {
		return
	}

	delete(c.entries, entry.key)
	c.order.Remove(elem)
}

// summaryCacheKey ties a summary to both the post identity and its text, so
// an edited post is summarized again.
func summaryCacheKey(postID string, text string) string {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return ""
	}

	normalizedText := strings.TrimSpace(text)
	if normalizedText == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(normalizedText))

	return postID + "|" + hex.EncodeToString(hash[:])
}
