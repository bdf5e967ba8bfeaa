package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellDisplayValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "string loses quoting", raw: `"hello"`, expected: "hello"},
		{name: "whole number", raw: `42`, expected: "42"},
		{name: "float keeps fraction", raw: `3.5`, expected: "3.5"},
		{name: "bool", raw: `true`, expected: "true"},
		{name: "null is empty", raw: `null`, expected: ""},
		{name: "empty is empty", raw: ``, expected: ""},
		{name: "object passes through", raw: `{"a":1}`, expected: `{"a":1}`},
		{name: "array passes through", raw: `[1,2]`, expected: `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CellDisplayValue(json.RawMessage(tt.raw)))
		})
	}
}
