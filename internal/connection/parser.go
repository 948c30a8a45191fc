package connection

import "encoding/json"

// Parser turns an accumulated response body into a structured value.
type Parser interface {
	Parse(body []byte) (any, error)
}

// JSONParser decodes bodies with encoding/json into maps, slices and scalars.
type JSONParser struct{}

// Parse implements Parser.
func (JSONParser) Parse(body []byte) (any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}
