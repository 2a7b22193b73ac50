package usecase

import (
	"net"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

// UnknownVendor is returned for links that cannot be parsed
const UnknownVendor = "Unknown"

// VendorResolver derives a display vendor name from a listing URL
type VendorResolver struct {
	names domain.VendorTable
}

// NewVendorResolver creates a resolver over the given table. Keys are
// matched case-insensitively.
func NewVendorResolver(table domain.VendorTable) *VendorResolver {
	names := make(domain.VendorTable, len(table))
	for label, name := range table {
		names[strings.ToLower(label)] = name
	}
	return &VendorResolver{names: names}
}

// ResolveVendor maps a link such as "https://www.meckeys.com/product/x" to
// "Meckeys". Unknown domains are capitalized ("https://kbdfans.com" ->
// "Kbdfans"); unparseable links resolve to UnknownVendor.
func (r *VendorResolver) ResolveVendor(link string) string {
	label := domainLabel(link)
	if label == "" {
		return UnknownVendor
	}

	if name, ok := r.names[label]; ok {
		return name
	}

	return capitalize(label)
}

// domainLabel returns the lowercase registrable label of the link's host
func domainLabel(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	host = strings.TrimPrefix(host, "www.")

	if net.ParseIP(host) == nil {
		if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
			host = registrable
		}
	}

	label, _, _ := strings.Cut(host, ".")
	return label
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
