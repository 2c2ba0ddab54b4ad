package postcodec

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"agent-launchpad/internal/apperr"
	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/solana"
)

var (
	symbolPattern  = regexp.MustCompile(`^[A-Z0-9]+$`)
	schemePattern  = regexp.MustCompile(`(?i)^https?://`)
	imageExtension = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|gif|webp|svg)$`)
	twitterPrefix  = regexp.MustCompile(`(?i)^(x\.com|twitter\.com)/`)
	telegramPrefix = regexp.MustCompile(`(?i)^t\.me/`)
)

// imageHosts serve direct image bytes regardless of path.
var imageHosts = []string{
	"arweave.net",
	"iili.io",
	"i.imgur.com",
	"placehold.co",
	"via.placeholder.com",
}

func (c *Codec) normalize(f fields, code apperr.Code) (domain.LaunchPayload, error) {
	fail := func(msg string) (domain.LaunchPayload, error) {
		return domain.LaunchPayload{}, apperr.New(code, msg)
	}

	p := domain.LaunchPayload{
		Name:        strings.TrimSpace(f.name),
		Symbol:      strings.TrimSpace(f.symbol),
		Wallet:      strings.TrimSpace(f.wallet),
		Description: strings.TrimSpace(f.description),
		Image:       strings.TrimSpace(f.image),
		Website:     NormalizeWebsite(f.website),
		Twitter:     NormalizeTwitter(f.twitter),
		Telegram:    NormalizeTelegram(f.telegram),
	}

	if p.Name == "" || utf8.RuneCountInString(p.Name) > c.limits.MaxName {
		return fail(fmt.Sprintf("Token name is required (max %d chars)", c.limits.MaxName))
	}
	if p.Symbol == "" || utf8.RuneCountInString(p.Symbol) > c.limits.MaxSymbol || !symbolPattern.MatchString(p.Symbol) {
		return fail(fmt.Sprintf("Symbol invalid (max %d chars, A-Z 0-9)", c.limits.MaxSymbol))
	}
	if p.Description == "" || utf8.RuneCountInString(p.Description) > c.limits.MaxDescription {
		return fail(fmt.Sprintf("Description is required (max %d chars)", c.limits.MaxDescription))
	}
	if p.Image == "" {
		return fail("Token image URL is required")
	}
	if !IsDirectImageURL(p.Image) {
		return fail("Image must be a direct link to an image file")
	}
	if !solana.IsValidAddress(p.Wallet) {
		return fail("Invalid Solana wallet address")
	}
	return p, nil
}

// IsDirectImageURL reports whether image points straight at image bytes:
// an ipfs:// URI, a known image host, or a path ending in an image extension.
func IsDirectImageURL(image string) bool {
	if strings.HasPrefix(image, "ipfs://") {
		return true
	}

	withoutQuery, _, _ := strings.Cut(image, "?")
	withoutQuery, _, _ = strings.Cut(withoutQuery, "#")
	if imageExtension.MatchString(withoutQuery) {
		return true
	}

	u, err := url.Parse(image)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range imageHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// NormalizeWebsite prefixes https:// when v has no http(s) scheme.
func NormalizeWebsite(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || schemePattern.MatchString(v) {
		return v
	}
	return "https://" + strings.TrimLeft(v, "/")
}

// NormalizeTwitter maps a URL, x.com/handle or @handle to a profile URL.
func NormalizeTwitter(v string) string {
	return normalizeSocial(v, twitterPrefix, "https://x.com/")
}

// NormalizeTelegram maps a URL, t.me/handle or @handle to a profile URL.
func NormalizeTelegram(v string) string {
	return normalizeSocial(v, telegramPrefix, "https://t.me/")
}

func normalizeSocial(v string, domainPrefix *regexp.Regexp, profileBase string) string {
	v = strings.TrimSpace(v)
	if v == "" || schemePattern.MatchString(v) {
		return v
	}
	if domainPrefix.MatchString(v) {
		return "https://" + v
	}
	handle, _, _ := strings.Cut(strings.TrimPrefix(v, "@"), "/")
	return profileBase + handle
}
