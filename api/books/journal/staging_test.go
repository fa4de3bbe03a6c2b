package journal

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeOwner(t *testing.T) {
	assert.Equal(t, "user_example_com", SanitizeOwner("User@Example.Com"))
	assert.Equal(t, "a_b_c", SanitizeOwner(" a+b/c "))
	assert.Equal(t, "plain_user", SanitizeOwner("plain_user"))
}

func TestNewStagingIDFormat(t *testing.T) {
	now := time.UnixMilli(1717000000000)
	id := NewStagingID("user@example.com", now)
	assert.Equal(t, fmt.Sprintf("journal_temp_user_example_com_%d", now.UnixMilli()), id)
}

func TestNewStagingIDDistinctPerMillisecond(t *testing.T) {
	a := NewStagingID("user@example.com", time.UnixMilli(1000))
	b := NewStagingID("user@example.com", time.UnixMilli(1001))
	assert.NotEqual(t, a, b)
}
