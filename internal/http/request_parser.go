package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finboard/internal/core"
	"finboard/internal/validator"
)

// maxBodyBytes caps request bodies. Record forms are a few hundred bytes.
const maxBodyBytes = 64 << 10

var errMalformedBody = errors.New("malformed request body")

// RequestBodyParser reads a JSON object or a urlencoded form into flat
// string fields. JSON numbers keep their literal text so amounts are never
// rounded through float64.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("%w: body exceeds %d bytes", errMalformedBody, maxBodyBytes)
	}
	return p
}

// Parse decodes the body. Every failure wraps errMalformedBody.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		if !errors.Is(p.err, errMalformedBody) {
			p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
		}
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.isJSONContent() || trimmed[0] == '{' || trimmed[0] == '[' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var data map[string]any
		if err := dec.Decode(&data); err != nil {
			p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
			return p.err
		}
		if dec.More() {
			p.err = fmt.Errorf("%w: trailing data after JSON object", errMalformedBody)
			return p.err
		}
		if data == nil {
			data = map[string]any{}
		}
		p.jsonData = data
		return nil
	}

	form, err := url.ParseQuery(string(trimmed))
	if err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
		return p.err
	}
	p.formData = form
	return nil
}

func (p *RequestBodyParser) isJSONContent() bool {
	mt, _, err := mime.ParseMediaType(p.contentType)
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

// Get returns a field from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// TransactionInput maps the parsed fields onto a transaction form.
func (p *RequestBodyParser) TransactionInput() validator.TransactionInput {
	return validator.TransactionInput{
		Amount:      p.Get("amount"),
		Date:        p.Get("date"),
		Description: p.Get("description"),
		Type:        p.Get("type"),
		Category:    p.Get("category"),
	}
}

// BudgetInput maps the parsed fields onto a budget form.
func (p *RequestBodyParser) BudgetInput() validator.BudgetInput {
	return validator.BudgetInput{
		Category: p.Get("category"),
		Amount:   p.Get("amount"),
		Month:    p.Get("month"),
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// parseTypeParam reads an optional income|expense query parameter.
func parseTypeParam(q url.Values, key string, fallback core.TransactionType) (core.TransactionType, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return fallback, nil
	}
	return core.ParseTransactionType(raw)
}

// parseMonthParam reads an optional YYYY-MM query parameter. ok is false
// when the parameter is absent.
func parseMonthParam(q url.Values, key string) (ym core.YearMonth, ok bool, err error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return core.YearMonth{}, false, nil
	}
	ym, err = core.ParseYearMonth(raw)
	return ym, err == nil, err
}

// parseLimitParam reads an optional positive integer capped at max.
func parseLimitParam(q url.Values, key string, fallback, max int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	if n > max {
		n = max
	}
	return n, nil
}
