package ssr

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBundle(t *testing.T) {
	b := NewBundle("var SSR = {}", "")

	assert.True(t, strings.HasPrefix(b.Source(), Shim+";"))
	assert.True(t, strings.HasSuffix(b.Source(), ";var SSR = {};"+DefaultEntrypoint))
	assert.Equal(t, len(b.Source()), b.Size())
}

func TestLoadBundle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ssr"), 0o755))
	code := `var App = { page: function (p) { return "<h1>" + JSON.parse(p).location + "</h1>"; } };`
	require.NoError(t, os.WriteFile(BundlePath(dir), []byte(code), 0o644))

	b, err := LoadBundle(dir, "App")
	require.NoError(t, err)
	assert.Equal(t, BundlePath(dir), b.Name())

	r, err := New(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"page"}, r.Exports())

	params, err := NewPageParams("/cleaning").Encode()
	require.NoError(t, err)

	out, err := r.RenderToString(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "<h1>/cleaning</h1>", out)
}

func TestLoadBundleMissing(t *testing.T) {
	_, err := LoadBundle(t.TempDir(), DefaultEntrypoint)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestShimRoundTrip(t *testing.T) {
	code := `var SSR = {
		roundTrip: function () {
			return new TextDecoder().decode(new TextEncoder().encode("звенигородок ✓"));
		}
	};`

	r, err := New(NewBundle(code, DefaultEntrypoint))
	require.NoError(t, err)

	out, err := r.RenderToString(context.Background(), NoParams)
	require.NoError(t, err)
	assert.Equal(t, "звенигородок ✓", out)
}
