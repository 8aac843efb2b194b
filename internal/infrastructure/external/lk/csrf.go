package lk

import (
	"errors"
	"io"

	"golang.org/x/net/html"
)

// errCSRFNotFound is returned when the login page has no _csrf input.
var errCSRFNotFound = errors.New("lk: _csrf input not found on login page")

// extractCSRF returns the value of the first <input name="_csrf"> in the page.
func extractCSRF(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return "", errCSRFNotFound
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "input" {
				continue
			}
			var name, value string
			for _, a := range tok.Attr {
				switch a.Key {
				case "name":
					name = a.Val
				case "value":
					value = a.Val
				}
			}
			if name == "_csrf" && value != "" {
				return value, nil
			}
		}
	}
}
