package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thawtrack/thawtrack/internal/models"
)

func TestSummarize(t *testing.T) {
	records := []models.ThawRecord{
		{Amount: 1.5},
		{Amount: 0.5},
		{Amount: 2.0},
	}

	s := Summarize(records, 2.5)
	assert.Equal(t, 4.0, s.TotalAmount)
	assert.Equal(t, 2.5, s.UnitPrice)
	assert.Equal(t, 10.0, s.TotalValue)
	assert.Len(t, s.Records, 3)
}

func TestSummarizeWithoutPrice(t *testing.T) {
	records := []models.ThawRecord{{Amount: 2.0}}

	s := Summarize(records, 0)
	assert.Equal(t, 2.0, s.TotalAmount)
	assert.Equal(t, 0.0, s.UnitPrice)
	assert.Equal(t, 0.0, s.TotalValue)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 2.5)
	assert.Equal(t, 0.0, s.TotalAmount)
	assert.Equal(t, 0.0, s.TotalValue)
	assert.Empty(t, s.Records)
}
