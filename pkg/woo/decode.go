package woo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// charsetPolicy определяет, как байты тела ответа превращаются в UTF-8 перед json.Unmarshal.
type charsetPolicy struct {
	label  string
	auto   bool
	forced encoding.Encoding // nil при auto
}

func newCharsetPolicy(label string) (charsetPolicy, error) {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" || l == "auto" {
		return charsetPolicy{label: "auto", auto: true}, nil
	}

	enc, err := htmlindex.Get(l)
	if err != nil {
		return charsetPolicy{}, fmt.Errorf("%w: %q", ErrUnknownCharset, label)
	}
	name, _ := htmlindex.Name(enc)
	return charsetPolicy{label: name, forced: enc}, nil
}

// String возвращает каноническое имя политики ("utf-8", "auto", "windows-1251"...).
func (p charsetPolicy) String() string { return p.label }

// toUTF8 приводит тело к UTF-8.
//
// Принудительная кодировка игнорирует charset из Content-Type.
// В режиме auto используется объявленная кодировка, а при её отсутствии — UTF-8.
func (p charsetPolicy) toUTF8(body []byte, contentType string) ([]byte, error) {
	enc := p.forced
	if p.auto {
		enc = declaredEncoding(contentType)
	}

	if enc == nil || isUTF8(enc) {
		return bytes.TrimPrefix(body, utf8BOM), nil
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("transcode from %s: %w", p.label, err)
	}
	return out, nil
}

// declaredEncoding извлекает charset из Content-Type. nil = не объявлен или неизвестен.
func declaredEncoding(contentType string) encoding.Encoding {
	if contentType == "" {
		return nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	cs, ok := params["charset"]
	if !ok {
		return nil
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return nil
	}
	return enc
}

func isUTF8(enc encoding.Encoding) bool {
	name, err := htmlindex.Name(enc)
	return err == nil && name == "utf-8"
}

// decodeInto декодирует тело успешного ответа в dest. dest == nil — тело отбрасывается.
func (c *Client) decodeInto(raw *rawResponse, dest any) error {
	if dest == nil {
		return nil
	}

	body, err := c.decoder.toUTF8(raw.body, raw.contentType)
	if err != nil {
		return &DecodeError{Err: err}
	}

	if err := DecodeJSON(body, dest); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// DecodeJSON разбирает JSON в dest, сохраняя числа как json.Number.
//
// Полезная нагрузка магазина не должна терять точность: id и значения
// meta_data бывают больше 2^53 и не помещаются в float64.
func DecodeJSON(data []byte, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := dec.Decode(dest); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}
