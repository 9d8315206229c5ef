package helpers

import (
	"net/http"
	"time"
)

// GetBaseData fills the fields every server-rendered page expects and merges
// pageSpecificData over them.
func GetBaseData(r *http.Request, title string, pageSpecificData map[string]interface{}) map[string]interface{} {
	data := map[string]interface{}{
		"Title":      title,
		"IsLoggedIn": false,
		"IsAdmin":    false,
		"Year":       time.Now().Year(),
	}

	if rc, ok := RequestContextFrom(r.Context()); ok {
		data["IsLoggedIn"] = true
		data["IsAdmin"] = rc.IsAdmin()
		data["UserID"] = rc.UserID
	}

	for k, v := range pageSpecificData {
		data[k] = v
	}
	return data
}
