// Package toolkit provides the shared JSON argument/result helpers used by
// every tool family, so each one follows the same error envelope without
// importing the registry package itself (which would create an import
// cycle back from the families it wires).
package toolkit

import (
	"encoding/json"
	"fmt"
)

// Error serializes a tool failure as the fixed envelope:
// {"error": "<message>", ...args}. args should be the tool's own decoded
// argument struct (or nil) so the failure is traceable back to its inputs.
func Error(message string, args interface{}) string {
	m := map[string]interface{}{"error": message}
	mergeArgs(m, args)
	b, _ := json.Marshal(m)
	return string(b)
}

// Errorf is Error with fmt-style formatting of the message.
func Errorf(args interface{}, format string, fmtArgs ...interface{}) string {
	return Error(fmt.Sprintf(format, fmtArgs...), args)
}

// Success serializes a tool's successful result, embedding the decoded
// arguments alongside the domain payload for traceability.
func Success(args interface{}, payload map[string]interface{}) string {
	m := map[string]interface{}{}
	mergeArgs(m, args)
	for k, v := range payload {
		m[k] = v
	}
	b, _ := json.Marshal(m)
	return string(b)
}

// Decode unmarshals raw tool arguments into dst. Returns a ready-to-return
// error envelope string and false if decoding fails.
func Decode(raw json.RawMessage, dst interface{}) (string, bool) {
	if len(raw) == 0 {
		return "", true
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return Error("invalid arguments: "+err.Error(), nil), false
	}
	return "", true
}

func mergeArgs(m map[string]interface{}, args interface{}) {
	if args == nil {
		return
	}
	b, err := json.Marshal(args)
	if err != nil {
		return
	}
	var asMap map[string]interface{}
	if err := json.Unmarshal(b, &asMap); err != nil {
		return
	}
	for k, v := range asMap {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
}
