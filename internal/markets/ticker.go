package markets

import (
	"strings"
)

// exchangeSuffixes maps exchange codes to EODHD symbol suffixes. Symbols may
// arrive exchange-qualified ("ASX:GNP", "NYSE:AAPL"); the provider wants
// CODE.SUFFIX ("GNP.AU", "AAPL.US").
var exchangeSuffixes = map[string]string{
	"ASX":    ".AU",
	"NYSE":   ".US",
	"NASDAQ": ".US",
	"AMEX":   ".US",
	"LSE":    ".LSE",
	"TSX":    ".TO",
	"XETRA":  ".XETRA",
	"HK":     ".HK",
	"SG":     ".SG",
	"TYO":    ".TYO",
}

// NormalizeSymbol converts a ticker into the provider's symbol format.
// Exchange-qualified forms are translated via the suffix map:
//
//	"ASX:GNP"  -> "GNP.AU"
//	"NYSE.AAPL" -> "AAPL.US"
//
// The dot form is only treated as exchange-qualified when the prefix is a
// known exchange, so provider-format symbols like "CBA.AU" pass through.
// Unknown exchange prefixes drop to the bare code (the provider defaults
// suffixless symbols to US). Plain symbols are upper-cased and trimmed.
func NormalizeSymbol(raw string) string {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return ""
	}

	if idx := strings.Index(symbol, ":"); idx >= 0 {
		exchange := symbol[:idx]
		code := symbol[idx+1:]
		if code == "" {
			return ""
		}
		if suffix, ok := exchangeSuffixes[exchange]; ok {
			return code + suffix
		}
		return code
	}

	if idx := strings.Index(symbol, "."); idx > 0 {
		if suffix, ok := exchangeSuffixes[symbol[:idx]]; ok {
			return symbol[idx+1:] + suffix
		}
	}

	return symbol
}
