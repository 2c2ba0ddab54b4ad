// Package postcodec converts between social post text and launch payloads.
//
// A post carries a payload as a trigger line followed by a ```json fenced
// block. Decode extracts and normalizes it; Encode renders the exact text
// that Decode accepts.
package postcodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"agent-launchpad/internal/apperr"
	"agent-launchpad/internal/domain"
)

// DefaultTrigger is the trigger line used when none is configured.
const DefaultTrigger = "!solclawnbot"

// Limits bounds the length of free-text fields, counted in characters.
type Limits struct {
	MaxName        int
	MaxSymbol      int
	MaxDescription int
}

// DefaultLimits returns the production limits.
func DefaultLimits() Limits {
	return Limits{MaxName: 50, MaxSymbol: 10, MaxDescription: 500}
}

// Codec decodes and encodes launch posts for one trigger.
type Codec struct {
	trigger string
	limits  Limits
}

// New creates a Codec. Zero limits fall back to DefaultLimits.
func New(trigger string, limits Limits) *Codec {
	if trigger == "" {
		trigger = DefaultTrigger
	}
	def := DefaultLimits()
	if limits.MaxName <= 0 {
		limits.MaxName = def.MaxName
	}
	if limits.MaxSymbol <= 0 {
		limits.MaxSymbol = def.MaxSymbol
	}
	if limits.MaxDescription <= 0 {
		limits.MaxDescription = def.MaxDescription
	}
	return &Codec{trigger: strings.TrimSpace(trigger), limits: limits}
}

// Trigger returns the trigger line.
func (c *Codec) Trigger() string { return c.trigger }

// Limits returns the field limits.
func (c *Codec) Limits() Limits { return c.limits }

var jsonBlock = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// Decode extracts the payload that follows the trigger line in content.
// Every failure is a FORMAT error.
func (c *Codec) Decode(content string) (domain.LaunchPayload, error) {
	start := c.triggerOffset(content)
	if start < 0 {
		return domain.LaunchPayload{}, apperr.Format("Post must contain %s on its own line", c.trigger)
	}

	m := jsonBlock.FindStringSubmatch(content[start:])
	if m == nil {
		return domain.LaunchPayload{}, apperr.Format("No valid JSON found. Wrap JSON in a ```json code block.")
	}

	raw, err := parseObject(m[1])
	if err != nil {
		return domain.LaunchPayload{}, apperr.Format("Invalid JSON found. Use double quotes and no trailing commas.")
	}
	return c.normalize(raw, apperr.CodeFormat)
}

// NormalizeInput applies the field rules to a payload supplied directly by a
// caller. Failures are VALIDATION errors.
func (c *Codec) NormalizeInput(p domain.LaunchPayload) (domain.LaunchPayload, error) {
	return c.normalize(fieldsOf(p), apperr.CodeValidation)
}

// Encode renders the post text for p: trigger line, then the payload as
// two-space indented JSON in a ```json block. Decode(Encode(p)) == p for
// every normalized p.
func (c *Codec) Encode(p domain.LaunchPayload) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	// LaunchPayload only holds strings; Encode cannot fail.
	_ = enc.Encode(p)

	// Backticks can only appear inside JSON strings; escaping them keeps a
	// value from closing the fence early.
	body := strings.ReplaceAll(strings.TrimRight(buf.String(), "\n"), "`", `\u0060`)
	return c.trigger + "\n```json\n" + body + "\n```"
}

// triggerOffset returns the byte offset of the first line equal to the
// trigger after trimming, or -1.
func (c *Codec) triggerOffset(content string) int {
	offset := 0
	for {
		end := strings.IndexByte(content[offset:], '\n')
		line := content[offset:]
		if end >= 0 {
			line = content[offset : offset+end]
		}
		if strings.TrimSpace(line) == c.trigger {
			return offset
		}
		if end < 0 {
			return -1
		}
		offset += end + 1
	}
}

// fields is the untyped view of a payload before validation.
type fields struct {
	name, symbol, wallet, description, image string
	website, twitter, telegram               string
}

func fieldsOf(p domain.LaunchPayload) fields {
	return fields{
		name: p.Name, symbol: p.Symbol, wallet: p.Wallet,
		description: p.Description, image: p.Image,
		website: p.Website, twitter: p.Twitter, telegram: p.Telegram,
	}
}

// parseObject decodes a JSON object, stringifying scalar values.
func parseObject(s string) (fields, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return fields{}, err
	}
	if obj == nil {
		return fields{}, fmt.Errorf("payload is not an object")
	}
	if dec.More() {
		return fields{}, fmt.Errorf("trailing data after payload")
	}

	return fields{
		name:        stringify(obj["name"]),
		symbol:      stringify(obj["symbol"]),
		wallet:      stringify(obj["wallet"]),
		description: stringify(obj["description"]),
		image:       stringify(obj["image"]),
		website:     stringify(obj["website"]),
		twitter:     stringify(obj["twitter"]),
		telegram:    stringify(obj["telegram"]),
	}, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return ""
	default:
		return ""
	}
}
