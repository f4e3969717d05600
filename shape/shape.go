// Package shape normalizes list responses that arrive in several JSON
// encodings: a bare array, or an object holding the array under one of a
// few field names.
package shape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fwojciec/watsonx"
	"github.com/tidwall/gjson"
)

// Availability declares how a list endpoint degrades when its payload
// matches no accepted shape.
type Availability int

const (
	// PropagateError reports a shape mismatch as an error. Used for
	// endpoints the client cannot work without.
	PropagateError Availability = iota
	// EmptyOk resolves a mismatch, an empty body or a 404 to an empty list.
	// Used for endpoints that only some deployments provide.
	EmptyOk
)

func (a Availability) String() string {
	if a == EmptyOk {
		return "optional"
	}
	return "required"
}

// Normalize decodes raw into a list of T, trying in order:
//  1. raw as a bare array of T;
//  2. raw as an object, taking the first alias whose value is an array and
//     decoding its elements one by one, skipping elements that do not decode;
//  3. an empty list when onUnavailable is EmptyOk, otherwise an error
//     wrapping [watsonx.ErrShapeMismatch].
//
// The result is never nil on success.
func Normalize[T any](raw []byte, aliases []string, onUnavailable Availability) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err == nil {
			if items == nil {
				items = []T{}
			}
			return items, nil
		}
	}

	if len(trimmed) > 0 && gjson.ValidBytes(trimmed) {
		doc := gjson.ParseBytes(trimmed)
		if doc.IsObject() {
			for _, alias := range aliases {
				field := doc.Get(gjson.Escape(alias))
				if !field.IsArray() {
					continue
				}
				return decodeElements[T](field), nil
			}
		}
	}

	if onUnavailable == EmptyOk {
		return []T{}, nil
	}
	return nil, fmt.Errorf("expected array or object with %v: %w", aliases, watsonx.ErrShapeMismatch)
}

func decodeElements[T any](arr gjson.Result) []T {
	elems := arr.Array()
	items := make([]T, 0, len(elems))
	for _, el := range elems {
		var item T
		if err := json.Unmarshal([]byte(el.Raw), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

// Response normalizes an HTTP response body. A 404 on an EmptyOk endpoint
// is an empty list; any other non-2xx status is an [*watsonx.APIError].
func Response[T any](status int, body []byte, aliases []string, onUnavailable Availability) ([]T, error) {
	if status == http.StatusNotFound && onUnavailable == EmptyOk {
		return []T{}, nil
	}
	if status < 200 || status > 299 {
		return nil, &watsonx.APIError{StatusCode: status, Body: string(bytes.TrimSpace(body))}
	}
	return Normalize[T](body, aliases, onUnavailable)
}
