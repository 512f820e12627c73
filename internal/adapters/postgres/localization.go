package postgres

import "encoding/json"

// localizationJSON serializes a LocalizationMap for storage in a jsonb
// column; marshal of a map[string]string cannot fail.
func localizationJSON(m map[string]string) []byte {
	b, _ := json.Marshal(m)
	return b
}

func unmarshalLocalization(raw []byte) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]string
	_ = json.Unmarshal(raw, &m)
	return m
}
