package session

import (
	"bytes"
	"encoding/json"
)

// initializeMethod is the JSON-RPC method name that starts a session.
const initializeMethod = "initialize"

type rpcEnvelope struct {
	Method string `json:"method"`
}

// ContainsInitialize reports whether an inbound payload is, or contains, a
// session-initialization call. The payload may be a single JSON-RPC object or
// an ordered batch array. The check is purely syntactic: malformed payloads
// are simply not initialization calls, and no tool semantics are interpreted.
func ContainsInitialize(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false
	}

	if trimmed[0] == '[' {
		var batch []rpcEnvelope
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return false
		}
		for _, call := range batch {
			if call.Method == initializeMethod {
				return true
			}
		}
		return false
	}

	var call rpcEnvelope
	if err := json.Unmarshal(trimmed, &call); err != nil {
		return false
	}
	return call.Method == initializeMethod
}
