package pkgmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstallArgs(t *testing.T) {
	tests := []struct {
		name     string
		manager  Manager
		packages []string
		opts     InstallOptions
		expected []string
	}{
		{
			name:     "pnpm global",
			manager:  Pnpm,
			packages: []string{"@mediaproc/image"},
			opts:     InstallOptions{Global: true},
			expected: []string{"add", "-g", "@mediaproc/image"},
		},
		{
			name:     "npm local",
			manager:  Npm,
			packages: []string{"@mediaproc/image"},
			expected: []string{"install", "@mediaproc/image"},
		},
		{
			name:     "npm global dev",
			manager:  Npm,
			packages: []string{"mediaproc-filters"},
			opts:     InstallOptions{Global: true, SaveDev: true},
			expected: []string{"install", "-g", "--save-dev", "mediaproc-filters"},
		},
		{
			name:     "yarn global",
			manager:  Yarn,
			packages: []string{"@mediaproc/video"},
			opts:     InstallOptions{Global: true},
			expected: []string{"global", "add", "@mediaproc/video"},
		},
		{
			name:     "yarn local dev",
			manager:  Yarn,
			packages: []string{"@mediaproc/video"},
			opts:     InstallOptions{SaveDev: true},
			expected: []string{"add", "--dev", "@mediaproc/video"},
		},
		{
			name:     "bun local",
			manager:  Bun,
			packages: []string{"@mediaproc/audio"},
			expected: []string{"add", "@mediaproc/audio"},
		},
		{
			name:     "multiple packages keep order",
			manager:  Pnpm,
			packages: []string{"@mediaproc/image", "@mediaproc/video"},
			expected: []string{"add", "@mediaproc/image", "@mediaproc/video"},
		},
		{
			name:     "deno yields the skip sentinel",
			manager:  Deno,
			packages: []string{"@mediaproc/image"},
			opts:     InstallOptions{Global: true},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InstallArgs(tt.manager, tt.packages, tt.opts))
		})
	}
}

func TestUninstallArgs(t *testing.T) {
	assert.Equal(t, []string{"uninstall", "-g", "@mediaproc/image"},
		UninstallArgs(Npm, []string{"@mediaproc/image"}, true))
	assert.Equal(t, []string{"remove", "@mediaproc/image"},
		UninstallArgs(Pnpm, []string{"@mediaproc/image"}, false))
	assert.Equal(t, []string{"global", "remove", "@mediaproc/image"},
		UninstallArgs(Yarn, []string{"@mediaproc/image"}, true))
	assert.Nil(t, UninstallArgs(Deno, []string{"@mediaproc/image"}, false))
}

func TestUpdateArgs(t *testing.T) {
	assert.Equal(t, []string{"update", "@mediaproc/image"},
		UpdateArgs(Npm, []string{"@mediaproc/image"}, false))
	assert.Equal(t, []string{"global", "upgrade", "@mediaproc/image"},
		UpdateArgs(Yarn, []string{"@mediaproc/image"}, true))
	assert.Equal(t, []string{"update", "-g", "@mediaproc/image"},
		UpdateArgs(Bun, []string{"@mediaproc/image"}, true))
	assert.Nil(t, UpdateArgs(Deno, []string{"@mediaproc/image"}, true))
}

func TestListArgs(t *testing.T) {
	assert.Equal(t, []string{"ls", "--json", "--depth=0", "-g"}, ListArgs(Npm, true))
	assert.Equal(t, []string{"ls", "--json", "--depth=0"}, ListArgs(Pnpm, false))
	assert.Equal(t, []string{"global", "list"}, ListArgs(Yarn, true))
	assert.Equal(t, []string{"pm", "ls"}, ListArgs(Bun, false))
	assert.Nil(t, ListArgs(Deno, true))
}

func TestGlobalRootArgs(t *testing.T) {
	assert.Equal(t, []string{"root", "-g"}, GlobalRootArgs(Npm))
	assert.Equal(t, []string{"global", "dir"}, GlobalRootArgs(Yarn))
	assert.Nil(t, GlobalRootArgs(Bun))
	assert.Nil(t, GlobalRootArgs(Deno))
}
