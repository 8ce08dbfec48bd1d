package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsInitialize(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"single init", `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`, true},
		{"single tool call", `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{}}`, false},
		{"batch with init", `[{"method":"notifications/initialized"},{"method":"initialize"}]`, true},
		{"batch without init", `[{"method":"tools/list"},{"method":"tools/call"}]`, false},
		{"initialized notification is not initialize", `{"method":"notifications/initialized"}`, false},
		{"empty body", ``, false},
		{"whitespace body", "  \n\t", false},
		{"malformed json", `{"method": "initialize"`, false},
		{"malformed batch", `[{"method": "initialize"}`, false},
		{"leading whitespace", "\n  {\"method\":\"initialize\"}", true},
		{"non-object payload", `"initialize"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsInitialize([]byte(tt.body)))
		})
	}
}
