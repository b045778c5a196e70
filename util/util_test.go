package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMinMax(t *testing.T) {
	assert.Equal(t, 2, Min(2, 5))
	assert.Equal(t, 2, Min(5, 2))
	assert.Equal(t, 5, Max(2, 5))
	assert.Equal(t, 5, Max(5, 2))
}

func TestStringInSlice(t *testing.T) {
	list := []string{"abuseipdb", "ipqs"}
	assert.True(t, StringInSlice("ipqs", list))
	assert.False(t, StringInSlice("internetdb", list))
	assert.False(t, StringInSlice("ipqs", nil))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, 0, FormatSeconds(0))
	assert.Equal(t, 1, FormatSeconds(time.Second))
	assert.Equal(t, 1, FormatSeconds(300*time.Millisecond), "partial seconds round up")
	assert.Equal(t, 61, FormatSeconds(60*time.Second+time.Millisecond))
}
