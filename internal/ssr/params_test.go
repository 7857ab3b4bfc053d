package ssr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageParamsEncode(t *testing.T) {
	tests := []struct {
		name   string
		params PageParams
		want   string
	}{
		{
			name:   "default context",
			params: NewPageParams("/cleaning?page=2"),
			want:   `{"location":"/cleaning?page=2","context":{}}`,
		},
		{
			name:   "nil context",
			params: PageParams{Location: "/"},
			want:   `{"location":"/","context":{}}`,
		},
		{
			name:   "quotes are escaped",
			params: NewPageParams(`/a"b`),
			want:   `{"location":"/a\"b","context":{}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.params.Encode()
			require.NoError(t, err)

			got, ok := p.Value()
			assert.True(t, ok)
			assert.JSONEq(t, tt.want, got)
		})
	}
}

func TestNoParams(t *testing.T) {
	_, ok := NoParams.Value()
	assert.False(t, ok)

	v, ok := StringParams("").Value()
	assert.True(t, ok)
	assert.Empty(t, v)
}
