package inbound

import (
	"encoding/json"
	"mime"
	"net/url"
	"strings"
)

// Payload is the normalized inbound-email webhook body. Providers post it
// as multipart/form-data, JSON, or URL-encoded form data; every field is
// optional and must be checked downstream.
type Payload struct {
	To       string `json:"to"`
	From     string `json:"from"`
	Text     string `json:"text"`
	HTML     string `json:"html"`
	RawEmail string `json:"email"`
}

// ParsePayload normalizes a raw webhook body. It never fails: a malformed
// boundary or unknown content type degrades to empty fields, and the
// pipeline rejects the request later for whatever is missing.
func ParsePayload(contentType string, body []byte) Payload {
	if strings.Contains(contentType, "multipart/form-data") {
		return parseMultipart(contentType, string(body))
	}
	if p, ok := parseJSON(body); ok {
		return p
	}
	return parseURLEncoded(string(body))
}

// parseMultipart scans form parts by their name markers rather than with a
// full multipart reader; inbound providers are known to post slightly
// malformed bodies that a strict reader rejects.
func parseMultipart(contentType, body string) Payload {
	var p Payload
	boundary := multipartBoundary(contentType)
	if boundary == "" {
		return p
	}
	for _, part := range strings.Split(body, "--"+boundary) {
		switch {
		case strings.Contains(part, `name="to"`):
			p.To = partValue(part)
		case strings.Contains(part, `name="from"`):
			p.From = partValue(part)
		case strings.Contains(part, `name="text"`):
			p.Text = partValue(part)
		case strings.Contains(part, `name="html"`):
			p.HTML = partValue(part)
		case strings.Contains(part, `name="email"`):
			p.RawEmail = partValue(part)
		}
	}
	return p
}

func multipartBoundary(contentType string) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if b := params["boundary"]; b != "" {
			return b
		}
	}
	// Salvage what a strict parser rejects.
	if _, after, found := strings.Cut(contentType, "boundary="); found {
		return strings.Trim(strings.TrimSpace(after), `"`)
	}
	return ""
}

// partValue returns the part body following the blank-line separator after
// the part headers, trimmed.
func partValue(part string) string {
	_, after, found := strings.Cut(part, "\r\n\r\n")
	if !found {
		_, after, found = strings.Cut(part, "\n\n")
		if !found {
			return ""
		}
	}
	return strings.TrimSpace(after)
}

func parseJSON(body []byte) (Payload, bool) {
	var raw struct {
		To       string `json:"to"`
		From     string `json:"from"`
		Text     string `json:"text"`
		HTML     string `json:"html"`
		Email    string `json:"email"`
		RawEmail string `json:"raw_email"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Payload{}, false
	}
	p := Payload{
		To:       raw.To,
		From:     raw.From,
		Text:     raw.Text,
		HTML:     raw.HTML,
		RawEmail: raw.Email,
	}
	if p.RawEmail == "" {
		p.RawEmail = raw.RawEmail
	}
	return p, true
}

func parseURLEncoded(body string) Payload {
	values, err := url.ParseQuery(body)
	if err != nil {
		return Payload{}
	}
	return Payload{
		To:       values.Get("to"),
		From:     values.Get("from"),
		Text:     values.Get("text"),
		HTML:     values.Get("html"),
		RawEmail: values.Get("email"),
	}
}
