package repository

import "encoding/json"

// jsonb列をUpdates(map)で書くときのテキスト表現
func jsonText(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}
