package trend

// cacheKey identifies one filtered window: the range and the day of its newest reading.
type cacheKey struct {
	rng     Range
	lastDay Day
}

type cached struct {
	res        Classification
	computedOn Day
}

// InsightCache memoises classifications so a stable window is classified at most
// once per calendar day. Any mutation of the underlying series must call Invalidate.
type InsightCache struct {
	items map[cacheKey]cached
}

func NewInsightCache() *InsightCache {
	return &InsightCache{items: make(map[cacheKey]cached)}
}

// Get returns the classification stored for (r, lastDay) if it was computed today.
func (c *InsightCache) Get(r Range, lastDay, today Day) (Classification, bool) {
	it, ok := c.items[cacheKey{r, lastDay}]
	if !ok || it.computedOn != today {
		return Classification{}, false
	}
	return it.res, true
}

func (c *InsightCache) Put(r Range, lastDay, today Day, res Classification) {
	c.items[cacheKey{r, lastDay}] = cached{res: res, computedOn: today}
}

// Invalidate drops every memoised classification.
func (c *InsightCache) Invalidate() {
	clear(c.items)
}

func (c *InsightCache) Len() int { return len(c.items) }
