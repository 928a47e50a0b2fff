package fitz

import (
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/gogpu/fitz/internal/buffer"
)

// DefaultMaxHits is the hit limit used when a search asks for fewer than
// one hit.
const DefaultMaxHits = 16

// maxPooledHits is the largest hit buffer kept in a shared pool; larger
// searches allocate a one-off buffer.
const maxPooledHits = 256

// maxHitCapacity bounds the quads a single search may buffer.
const maxHitCapacity = 1 << 24

var hitPools sync.Map // capacity -> *buffer.Pool[Quad]

// hitCapacity sizes the hit buffer for a page of chars characters. Every
// quad covers at least one character, so chars bounds the useful size
// whatever maxHits asks for.
func hitCapacity(op string, maxHits, chars int) (int, error) {
	if maxHits < 1 {
		maxHits = DefaultMaxHits
	}
	n := min(maxHits, max(chars, 0))
	if n > maxHitCapacity {
		return 0, newError(KindAllocation, op, nil, "hit buffer of %d quads exceeds %d", n, maxHitCapacity)
	}
	return n, nil
}

func hitBuffer(capacity int) *buffer.Buffer[Quad] {
	if capacity > maxPooledHits {
		return buffer.NewPool[Quad](capacity, 1).Get()
	}
	p, ok := hitPools.Load(capacity)
	if !ok {
		p, _ = hitPools.LoadOrStore(capacity, buffer.NewPool[Quad](capacity, 8))
	}
	return p.(*buffer.Pool[Quad]).Get()
}

// SearchOption configures a text page search.
type SearchOption func(*searchOptions)

type searchOptions struct {
	ignoreCase bool
}

// SearchIgnoreCase matches letters regardless of case using Unicode case
// folding.
func SearchIgnoreCase() SearchOption {
	return func(o *searchOptions) {
		o.ignoreCase = true
	}
}

// checkNeedle rejects needles the text matcher cannot represent.
func checkNeedle(op, needle string) error {
	if strings.IndexByte(needle, 0) >= 0 {
		return newError(KindInvalidArgument, op, nil, "needle contains NUL")
	}
	if !utf8.ValidString(needle) {
		return newError(KindInvalidArgument, op, nil, "needle is not valid UTF-8")
	}
	return nil
}

// Search finds needle in the text of the recording and returns at most
// maxHits quads marking the matches in reading order, one quad per line a
// match touches. maxHits < 1 means DefaultMaxHits. No match yields an
// empty slice.
func (l *DisplayList) Search(needle string, maxHits int) ([]Quad, error) {
	const op = "search"
	if err := checkNeedle(op, needle); err != nil {
		return nil, err
	}
	page, err := l.ToTextPage(0)
	if err != nil {
		return nil, err
	}
	capacity, err := hitCapacity(op, maxHits, page.CharCount())
	if err != nil {
		return nil, err
	}

	buf := hitBuffer(capacity)
	n := page.searchInto(needle, buf.Data(), searchOptions{})
	hits, err := buffer.Take(buf, n)
	if err != nil {
		_ = buf.Release()
		return nil, newError(KindAllocation, op, err, "transfer %d hits", n)
	}
	return hits, nil
}

// Search finds needle in the page text. Line breaks and block breaks match
// a single space; with TextDehyphenate a hyphen ending a line is dropped
// and the line joins the next without a space.
func (p *TextPage) Search(needle string, maxHits int, opts ...SearchOption) ([]Quad, error) {
	const op = "search"
	if err := checkNeedle(op, needle); err != nil {
		return nil, err
	}
	capacity, err := hitCapacity(op, maxHits, p.CharCount())
	if err != nil {
		return nil, err
	}
	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}
	dst := make([]Quad, capacity)
	n := p.searchInto(needle, dst, o)
	return dst[:n:n], nil
}

// searchChar is one haystack position. Virtual characters stand for line
// and block breaks and have no quad.
type searchChar struct {
	r       rune
	quad    Quad
	line    int
	virtual bool
}

func (p *TextPage) haystack(fold func(rune) rune) []searchChar {
	var hs []searchChar
	space := func() {
		if n := len(hs); n > 0 && hs[n-1].r != ' ' {
			hs = append(hs, searchChar{r: ' ', line: -1, virtual: true})
		}
	}
	line := 0
	for _, b := range p.Blocks {
		if b.Image != nil {
			continue
		}
		for _, l := range b.Lines {
			chars := l.Chars
			join := p.flags&TextDehyphenate != 0 && l.hyphenated()
			if join {
				chars = chars[:len(chars)-1]
			}
			for _, c := range chars {
				hs = append(hs, searchChar{r: fold(c.Rune), quad: c.Quad, line: line})
			}
			if !join {
				space()
			}
			line++
		}
	}
	return hs
}

// searchInto writes hit quads into dst and returns how many it wrote.
func (p *TextPage) searchInto(needle string, dst []Quad, o searchOptions) int {
	if needle == "" || len(dst) == 0 {
		return 0
	}
	fold := func(r rune) rune { return r }
	if o.ignoreCase {
		caser := cases.Fold()
		fold = func(r rune) rune {
			s := caser.String(string(r))
			if f, size := utf8.DecodeRuneInString(s); size == len(s) {
				return f
			}
			return r
		}
	}
	pat := []rune(needle)
	for i, r := range pat {
		pat[i] = fold(r)
	}
	hs := p.haystack(fold)

	n := 0
	for i := 0; i+len(pat) <= len(hs) && n < len(dst); {
		if !matchAt(hs[i:], pat) {
			i++
			continue
		}
		n = appendHit(dst, n, hs[i:i+len(pat)])
		i += len(pat)
	}
	return n
}

func matchAt(hs []searchChar, pat []rune) bool {
	for k, r := range pat {
		if hs[k].r != r {
			return false
		}
	}
	return true
}

// appendHit writes one quad per line covered by match, stopping when dst
// is full.
func appendHit(dst []Quad, n int, match []searchChar) int {
	var (
		cur  Quad
		line = -1
	)
	flush := func() {
		if line >= 0 && n < len(dst) {
			dst[n] = cur
			n++
		}
	}
	for _, c := range match {
		if c.virtual {
			continue
		}
		if c.line != line {
			flush()
			cur, line = c.quad, c.line
			continue
		}
		cur = cur.Union(c.quad)
	}
	flush()
	return n
}
