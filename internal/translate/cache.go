package translate

// Cache memoizes translations keyed by normalized OCR text for one region
// selection. It is touched only from the polling goroutine while running and
// cleared only while stopped, so it carries no locking. No expiry and no size
// bound: growth is limited in practice by the distinct screens a user scrolls
// through during one session, and entries are discarded wholesale on region
// reselection.
type Cache struct {
	entries map[string]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Lookup returns the cached translation for text, if any.
func (c *Cache) Lookup(text string) (string, bool) {
	translated, ok := c.entries[text]
	return translated, ok
}

// Store records a successful translation. Failures are never stored.
func (c *Cache) Store(text, translated string) {
	c.entries[text] = translated
}

// Clear discards all entries.
func (c *Cache) Clear() {
	clear(c.entries)
}

// Len returns the number of cached translations.
func (c *Cache) Len() int { return len(c.entries) }
