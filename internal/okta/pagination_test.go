package okta

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextCursor(t *testing.T) {
	t.Run("extracts the after cursor from rel=next", func(t *testing.T) {
		header := http.Header{}
		header.Add("Link", `<https://org.okta.com/api/v1/users?limit=200>; rel="self"`)
		header.Add("Link", `<https://org.okta.com/api/v1/users?after=100uAbc123&limit=200>; rel="next"`)

		assert.Equal(t, "100uAbc123", nextCursor(header))
	})

	t.Run("handles both links in one header value", func(t *testing.T) {
		header := http.Header{}
		header.Set("Link", `<https://org.okta.com/api/v1/users?limit=2>; rel="self", <https://org.okta.com/api/v1/users?after=cursor2&limit=2>; rel="next"`)

		assert.Equal(t, "cursor2", nextCursor(header))
	})

	t.Run("no next link means no cursor", func(t *testing.T) {
		header := http.Header{}
		header.Set("Link", `<https://org.okta.com/api/v1/users?limit=200>; rel="self"`)

		assert.Empty(t, nextCursor(header))
	})

	t.Run("empty header means no cursor", func(t *testing.T) {
		assert.Empty(t, nextCursor(http.Header{}))
	})

	t.Run("malformed links are ignored", func(t *testing.T) {
		header := http.Header{}
		header.Add("Link", `not a link at all`)
		header.Add("Link", `<https://org.okta.com/api/v1/users?after=good>; rel="next"`)

		assert.Equal(t, "good", nextCursor(header))
	})
}

func TestParseLinkValue(t *testing.T) {
	target, rel, ok := parseLinkValue(`<https://org.okta.com/api/v1/users?after=x>; rel="next"`)
	assert.True(t, ok)
	assert.Equal(t, "https://org.okta.com/api/v1/users?after=x", target)
	assert.Equal(t, "next", rel)

	_, _, ok = parseLinkValue(`<https://org.okta.com/api/v1/users>`)
	assert.False(t, ok, "a link without parameters is not usable")
}
