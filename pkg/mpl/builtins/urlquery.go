package builtins

import (
	"net/url"
	"strings"

	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
)

// urlQueryBase turns a bare query string into a URL the parser accepts.
const urlQueryBase = "https://non-existent?"

func urlqueryDecodeObject(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "urlquery.decode_object"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	query, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}

	// A fragment never reaches the query pairs.
	query, _, _ = strings.Cut(query, "#")
	u, err := url.Parse(urlQueryBase + query)
	if err != nil {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeParse, spanOf(param(params, 0)), err,
			"not a valid url query")
	}

	// Values keep their order of appearance; keys iterate in key order.
	pairs := map[string][]value.Value{}
	for piece := range strings.SplitSeq(u.RawQuery, "&") {
		if piece == "" {
			continue
		}
		k, v, _ := strings.Cut(piece, "=")
		key := unescapeQueryComponent(k)
		pairs[key] = append(pairs[key], value.String(unescapeQueryComponent(v)))
	}

	obj := value.NewObject()
	for key, items := range pairs {
		obj.Set(value.String(key), value.NewArray(items...))
	}
	return value.FromObject(obj), nil
}

// unescapeQueryComponent decodes a form-encoded key or value. '+' becomes a
// space and well-formed %XX escapes are decoded; malformed escapes are kept
// as written. Bytes that do not form valid UTF-8 become U+FFFD.
func unescapeQueryComponent(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	if decoded, err := url.QueryUnescape(s); err == nil {
		return lossyString([]byte(decoded))
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			buf = append(buf, ' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
		default:
			buf = append(buf, c)
		}
	}
	return lossyString(buf)
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c <= '9':
		return c - '0'
	case c <= 'F':
		return c - 'A' + 10
	default:
		return c - 'a' + 10
	}
}
