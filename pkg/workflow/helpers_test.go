package workflow

import "github.com/goccy/go-json"

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
