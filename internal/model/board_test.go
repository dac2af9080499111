package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Lutefd/tasas-board/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_IsReady(t *testing.T) {
	tests := []struct {
		name     string
		state    model.BoardState
		expected bool
	}{
		{name: "Ready", state: model.BoardStateReady, expected: true},
		{name: "Empty", state: model.BoardStateEmpty, expected: false},
		{name: "Reconnecting", state: model.BoardStateReconnecting, expected: false},
		{name: "Loading", state: model.BoardStateLoading, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := model.Board{State: tt.state}
			assert.Equal(t, tt.expected, board.IsReady())
		})
	}
}

func TestBoard_JSONFieldNames(t *testing.T) {
	board := model.Board{
		CycleID: uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		State:   model.BoardStateReady,
		Cards: []model.Card{
			{Flag: "🇨🇴", Country: "Colombia", Rate: "4.100", Currency: "COP"},
		},
		Columns:   3,
		Status:    "Actualizado: 2024-01-03 - 10:30",
		AsOfDate:  "2024-01-03",
		UpdatedAt: time.Date(2024, 1, 3, 10, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(board)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, "ready", fields["state"])
	assert.Equal(t, "2024-01-03", fields["as_of_date"])
	assert.EqualValues(t, 3, fields["columns"])
	assert.NotContains(t, fields, "message")
	cards, ok := fields["cards"].([]interface{})
	require.True(t, ok)
	assert.Len(t, cards, 1)
}
