package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdonin/contracts-lite/internal/model"
)

func TestGenerate(t *testing.T) {
	contract := model.Contract{
		ID:         1,
		Number:     "C-001",
		ClientID:   1,
		ClientName: "Ivanov Ivan Ivanovich",
		Principal:  1000,
		Status:     model.StatusActive,
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt:  time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
	}

	content, err := NewGenerator().Generate(contract)
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}
