package service

import (
	"net/url"
	"strings"

	"yocto-led-bridge/internal/domain/model"
)

const redacted = "**REDACTED**"

func redactEntryData(data model.EntryData) map[string]interface{} {
	return map[string]interface{}{
		"url":        redactURL(data.URL),
		"color_mode": string(data.ColorMode),
	}
}

// redactURL hides the password of a "user:pass@host" hub URL.
func redactURL(raw string) string {
	at := strings.LastIndex(raw, "@")
	if at < 0 {
		return raw
	}
	prefix, rest := raw[:at], raw[at+1:]
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.User == nil {
		return redacted
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	start := 0
	if i := strings.Index(prefix, "://"); i >= 0 {
		start = i + 3
	}
	colon := strings.Index(prefix[start:], ":")
	if colon < 0 {
		return redacted
	}
	return prefix[:start+colon] + ":" + redacted + "@" + rest
}

func buildDiagnostics(entry *model.Entry, hub *Hub) *model.Diagnostics {
	d := &model.Diagnostics{
		EntryData: redactEntryData(entry.Data),
		Leds:      []model.ModuleID{},
		Disp:      []model.ModuleID{},
	}
	if hub != nil {
		d.Leds = append(d.Leds, hub.Leds()...)
		d.Disp = append(d.Disp, hub.Disp()...)
	}
	return d
}
