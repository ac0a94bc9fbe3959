package models

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppBuildInfo_WriteBanner(t *testing.T) {
	tests := []struct {
		name string
		info AppBuildInfo
		want string
	}{
		{
			name: "all set",
			info: NewAppBuildInfo("v1.2.0", "2026-10-01", "a1b2c3"),
			want: "Build version: v1.2.0\nBuild date: 2026-10-01\nBuild commit: a1b2c3\n",
		},
		{
			name: "blank values",
			info: NewAppBuildInfo("", "", "deadbeef"),
			want: "Build version: N/A\nBuild date: N/A\nBuild commit: deadbeef\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.info.WriteBanner(&buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
