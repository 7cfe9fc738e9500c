package searchcache

import (
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueResolve(t *testing.T) {
	c := New(4)
	token := c.Issue(1, "cat")

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}$`), token)

	q, ok := c.Resolve(1, token)
	require.True(t, ok)
	assert.Equal(t, "cat", q)
}

func TestResolveMisses(t *testing.T) {
	c := New(4)
	token := c.Issue(1, "secret query")

	_, ok := c.Resolve(2, token)
	assert.False(t, ok, "another owner must not see the query")

	_, ok = c.Resolve(1, "deadbeef")
	assert.False(t, ok)

	c.Reset()
	_, ok = c.Resolve(1, token)
	assert.False(t, ok)
	assert.Zero(t, c.Owners())
}

func TestPerOwnerBound(t *testing.T) {
	c := New(2)
	n := 0
	c.newToken = func() string {
		n++
		return fmt.Sprintf("%08x", n)
	}

	first := c.Issue(1, "a")
	second := c.Issue(1, "b")
	third := c.Issue(1, "c")
	other := c.Issue(2, "z")

	assert.Equal(t, 2, c.Len(1))
	_, ok := c.Resolve(1, first)
	assert.False(t, ok, "oldest token is evicted")

	q, ok := c.Resolve(1, second)
	require.True(t, ok)
	assert.Equal(t, "b", q)
	q, ok = c.Resolve(1, third)
	require.True(t, ok)
	assert.Equal(t, "c", q)

	q, ok = c.Resolve(2, other)
	require.True(t, ok)
	assert.Equal(t, "z", q)
	assert.Equal(t, 2, c.Owners())
}

func TestCollisionOverwritesOlderQuery(t *testing.T) {
	c := New(4)
	c.newToken = func() string { return "0000abcd" }

	c.Issue(1, "old")
	token := c.Issue(1, "new")

	q, ok := c.Resolve(1, token)
	require.True(t, ok)
	assert.Equal(t, "new", q)
}

func TestConcurrentIssue(t *testing.T) {
	c := New(DefaultPerOwner)
	var wg sync.WaitGroup
	for owner := int64(1); owner <= 8; owner++ {
		wg.Add(1)
		go func(owner int64) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				token := c.Issue(owner, fmt.Sprintf("q%d", i))
				if _, ok := c.Resolve(owner, token); !ok {
					t.Errorf("owner %d lost fresh token", owner)
				}
			}
		}(owner)
	}
	wg.Wait()

	assert.Equal(t, 8, c.Owners())
	assert.Equal(t, DefaultPerOwner, c.Len(3))
}
