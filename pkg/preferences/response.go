package preferences

import "encoding/json"

func unmarshalResponse(raw json.RawMessage, dst any) error {
	return json.Unmarshal(raw, dst)
}
