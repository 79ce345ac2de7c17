package param

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// Binding binds query values for GET requests and the json body
// otherwise.
func Binding(r *http.Request, v interface{}) error {
	if r.Method == http.MethodGet {
		if err := r.ParseForm(); err != nil {
			return err
		}
		return decoder.Decode(v, r.Form)
	}

	return json.NewDecoder(r.Body).Decode(v)
}
