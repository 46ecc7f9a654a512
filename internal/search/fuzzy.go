package search

import (
	"strings"
	"unicode/utf8"

	"go.klb.dev/clipflow/internal/history"
	"go.klb.dev/clipflow/internal/settings"
)

// Unbounded disables an individual edit-type limit.
const Unbounded = -1

// Options configures approximate matching. Substitutions replace a query
// character, insertions are extra content characters inside the match and
// deletions are query characters missing from the content. MaxDistance caps
// the total.
type Options struct {
	MaxDistance      int
	MaxSubstitutions int
	MaxInsertions    int
	MaxDeletions     int
	CaseSensitive    bool
}

// DefaultOptions mirrors the default settings: one edit, case-insensitive.
func DefaultOptions() Options {
	return Options{
		MaxDistance:      1,
		MaxSubstitutions: Unbounded,
		MaxInsertions:    Unbounded,
		MaxDeletions:     Unbounded,
	}
}

// OptionsFromSettings reads the fuzzy_search.* settings.
func OptionsFromSettings(s *settings.Settings) Options {
	opt := func(key string) int {
		if n, ok := s.OptInt(key); ok {
			return n
		}
		return Unbounded
	}
	return Options{
		MaxDistance:      s.Int(settings.KeyMaxLDist),
		MaxSubstitutions: opt(settings.KeyMaxSubstitutions),
		MaxInsertions:    opt(settings.KeyMaxInsertions),
		MaxDeletions:     opt(settings.KeyMaxDeletions),
		CaseSensitive:    s.Bool(settings.KeyCaseSensitive),
	}
}

// Fuzzy matches a query anywhere inside an item's content within a bounded
// edit distance.
type Fuzzy struct {
	opts Options
}

// NewFuzzy returns a fuzzy matcher. A negative MaxDistance is treated as 0.
func NewFuzzy(opts Options) *Fuzzy {
	opts.MaxDistance = max(opts.MaxDistance, 0)
	return &Fuzzy{opts: opts}
}

func (f *Fuzzy) Search(items []history.Item, query string) []history.Item {
	return filter(f, items, query)
}

func (f *Fuzzy) IsMatch(item history.Item, query string) bool {
	if query == "" {
		return true
	}
	content := normalize(item.Content, f.opts.CaseSensitive)
	q := normalize(query, f.opts.CaseSensitive)

	if utf8.RuneCountInString(q) <= ShortQueryLen || f.opts.MaxDistance == 0 {
		return strings.Contains(content, q)
	}
	if strings.Contains(content, q) {
		return true
	}

	qr, cr := []rune(q), []rune(content)
	if !withinDistance(qr, cr, f.opts.MaxDistance) {
		return false
	}
	if !f.hasTypeLimits() {
		return true
	}
	return withinLimits(qr, cr, f.limits(), f.opts.MaxDistance)
}

// hasTypeLimits reports whether any per-type limit is tighter than the
// overall distance, which is the only case the plain distance can't decide.
func (f *Fuzzy) hasTypeLimits() bool {
	k := f.opts.MaxDistance
	tight := func(n int) bool { return n != Unbounded && n < k }
	return tight(f.opts.MaxSubstitutions) || tight(f.opts.MaxInsertions) || tight(f.opts.MaxDeletions)
}

func (f *Fuzzy) limits() edits {
	k := f.opts.MaxDistance
	capAt := func(n int) int {
		if n == Unbounded || n > k {
			return k
		}
		return n
	}
	return edits{
		subs: capAt(f.opts.MaxSubstitutions),
		ins:  capAt(f.opts.MaxInsertions),
		dels: capAt(f.opts.MaxDeletions),
	}
}

// withinDistance reports whether some substring of text is within k edits
// of pattern (Sellers' algorithm: the first row is zero so a match may start
// anywhere).
func withinDistance(pattern, text []rune, k int) bool {
	m := len(pattern)
	if m <= k {
		return true
	}
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for j := range prev {
		prev[j] = j
	}
	for _, r := range text {
		cur[0] = 0
		for j := 1; j <= m; j++ {
			cost := 1
			if pattern[j-1] == r {
				cost = 0
			}
			cur[j] = min(prev[j-1]+cost, prev[j]+1, cur[j-1]+1)
		}
		if cur[m] <= k {
			return true
		}
		prev, cur = cur, prev
	}
	return false
}

// edits counts edit operations by type.
type edits struct {
	subs, ins, dels int
}

func (e edits) total() int { return e.subs + e.ins + e.dels }

// partial is a match in progress: pos query runes consumed using e edits.
type partial struct {
	pos int
	e   edits
}

// withinLimits reports whether pattern occurs in text using at most lim
// edits of each type and at most k in total. It advances a set of partial
// matches one text rune at a time, starting a fresh one at every position.
func withinLimits(pattern, text []rune, lim edits, k int) bool {
	m := len(pattern)
	budget := func(e edits) bool { return e.total() < k }

	// closure adds states reachable by skipping query runes (deletions) and
	// reports whether any state has consumed the whole pattern.
	closure := func(set map[partial]struct{}) bool {
		queue := make([]partial, 0, len(set))
		for p := range set {
			queue = append(queue, p)
		}
		for len(queue) > 0 {
			p := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			if p.pos == m {
				return true
			}
			if p.e.dels < lim.dels && budget(p.e) {
				next := partial{pos: p.pos + 1, e: edits{subs: p.e.subs, ins: p.e.ins, dels: p.e.dels + 1}}
				if _, seen := set[next]; !seen {
					set[next] = struct{}{}
					queue = append(queue, next)
				}
			}
		}
		return false
	}

	start := partial{}
	states := map[partial]struct{}{start: {}}
	if closure(states) {
		return true
	}
	for _, r := range text {
		next := map[partial]struct{}{start: {}}
		for p := range states {
			if p.pos == m {
				continue
			}
			if pattern[p.pos] == r {
				next[partial{pos: p.pos + 1, e: p.e}] = struct{}{}
			} else if p.e.subs < lim.subs && budget(p.e) {
				next[partial{pos: p.pos + 1, e: edits{subs: p.e.subs + 1, ins: p.e.ins, dels: p.e.dels}}] = struct{}{}
			}
			// An extra text rune before the first matched rune is just a
			// later start, so insertions only count inside the match.
			if p.pos > 0 && p.e.ins < lim.ins && budget(p.e) {
				next[partial{pos: p.pos, e: edits{subs: p.e.subs, ins: p.e.ins + 1, dels: p.e.dels}}] = struct{}{}
			}
		}
		if closure(next) {
			return true
		}
		states = next
	}
	return false
}
