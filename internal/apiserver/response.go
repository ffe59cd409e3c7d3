package apiserver

import (
	"encoding/json"
	"io"
)

// writeJSON encodes data as JSON without HTML-escaping, matching the
// wire payloads' exact field values (ARNs and error messages often
// contain characters json.Marshal would otherwise escape).
func writeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(data)
}
