package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("EXAM_PASS_PERCENT", "")
	t.Setenv("ADMIN_USERNAMES", " root, Alice ,,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultExamPassPercent, cfg.ExamPassPercent)
	assert.Equal(t, []string{"root", "Alice"}, cfg.AdminUsernames)
	assert.True(t, cfg.IsAdminUsername("alice"))
	assert.False(t, cfg.IsAdminUsername("bob"))
}

func TestLoadConfigPassPercent(t *testing.T) {
	t.Setenv("EXAM_PASS_PERCENT", "65.5")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 65.5, cfg.ExamPassPercent)

	for _, bad := range []string{"abc", "-1", "101"} {
		t.Setenv("EXAM_PASS_PERCENT", bad)
		_, err := LoadConfig()
		assert.Error(t, err, bad)
	}
}
