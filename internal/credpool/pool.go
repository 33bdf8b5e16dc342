package credpool

import (
	"errors"
	"strings"
	"sync/atomic"
)

// ErrEmpty is returned when the pool is constructed without any credentials.
var ErrEmpty = errors.New("credential pool: no credentials configured")

// Pool holds an ordered, fixed set of API credentials and a shared cursor.
// The cursor is process-wide: all sessions rotate through the same pool, so
// under concurrent load rotation is best-effort rather than per-session.
type Pool struct {
	creds  []string
	cursor atomic.Int64
}

// New creates a pool from the given credentials. Blank entries are dropped.
// Returns ErrEmpty if no usable credential remains — missing credentials are
// a fatal configuration error, not something to retry.
func New(creds []string) (*Pool, error) {
	clean := make([]string, 0, len(creds))
	for _, c := range creds {
		if c = strings.TrimSpace(c); c != "" {
			clean = append(clean, c)
		}
	}
	if len(clean) == 0 {
		return nil, ErrEmpty
	}
	return &Pool{creds: clean}, nil
}

// ParseList splits a comma-separated credential list as found in configuration.
func ParseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// Current returns the credential at the cursor.
func (p *Pool) Current() string {
	return p.creds[p.index()]
}

// Advance moves the cursor to the next credential, wrapping around.
// Concurrent advances may skip an entry; wrap-around guarantees every
// credential is eventually retried, so that race is acceptable.
func (p *Pool) Advance() {
	p.cursor.Add(1)
}

// Index returns the zero-based cursor position.
func (p *Pool) Index() int {
	return p.index()
}

// Size returns the fixed number of credentials in the pool.
func (p *Pool) Size() int {
	return len(p.creds)
}

func (p *Pool) index() int {
	n := p.cursor.Load() % int64(len(p.creds))
	if n < 0 {
		n += int64(len(p.creds))
	}
	return int(n)
}
