package builtins

import (
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"mercator-hq/mpl-builtins/pkg/mpl/ast"
	mplerrors "mercator-hq/mpl-builtins/pkg/mpl/errors"
	"mercator-hq/mpl-builtins/pkg/mpl/value"
)

var (
	base64Std      = base64.StdEncoding.Strict()
	base64URL      = base64.URLEncoding.Strict()
	base64URLNoPad = base64.RawURLEncoding.Strict()

	errLineBreak = errors.New("line breaks are not allowed in encoded input")
)

// decodeBase64 decodes s with enc. Unlike encoding/base64 it does not skip
// line breaks.
func decodeBase64(enc *base64.Encoding, s string) ([]byte, error) {
	if strings.ContainsAny(s, "\r\n") {
		return nil, errLineBreak
	}
	return enc.DecodeString(s)
}

// lossyString converts decoded bytes to text, replacing invalid UTF-8
// sequences with U+FFFD.
//
// TODO: add a builtins.strict_utf8 option that fails the decode with a
// DecodeError instead of replacing.
func lossyString(b []byte) string {
	s, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(s)
}

func base64Decode(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "base64.decode"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	encoded, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}

	decoded, err := decodeBase64(base64Std, encoded)
	if err != nil {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeDecode, spanOf(param(params, 0)), err,
			"`"+name+"` expects valid base64 input")
	}
	return value.String(lossyString(decoded)), nil
}

func base64Encode(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "base64.encode"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	s, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.String(base64Std.EncodeToString([]byte(s))), nil
}

func base64IsValid(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "base64.is_valid"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	encoded, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}

	_, err = decodeBase64(base64Std, encoded)
	return value.Bool(err == nil), nil
}

func base64URLDecode(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "base64url.decode"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	encoded, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}

	// Padded first, then unpadded.
	decoded, err := decodeBase64(base64URL, encoded)
	if err != nil {
		decoded, err = decodeBase64(base64URLNoPad, encoded)
	}
	if err != nil {
		return value.Value{}, mplerrors.Wrap(mplerrors.ErrorTypeDecode, spanOf(param(params, 0)), err,
			"`"+name+"` expects valid base64url input")
	}
	return value.String(lossyString(decoded)), nil
}

func base64URLEncode(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "base64url.encode"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	s, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.String(base64URL.EncodeToString([]byte(s))), nil
}

func base64URLEncodeNoPad(span ast.Span, params []ast.Expr, args []value.Value, _ bool) (value.Value, error) {
	const name = "base64url.encode_no_pad"
	if err := ensureArgsCount(span, name, args, 1); err != nil {
		return value.Value{}, err
	}

	s, err := ensureString(name, param(params, 0), args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.String(base64URLNoPad.EncodeToString([]byte(s))), nil
}
