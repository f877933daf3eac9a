// Package smartquotes replaces straight quotes and apostrophes with their
// typographic equivalents.
//
// The rules run in a fixed order and later rules rely on the curly marks
// inserted by earlier ones, so the list must not be reordered. They use
// lookahead, which RE2 lacks; regexp2 in ECMAScript mode keeps \w and \W
// ASCII-only as the rules expect.
package smartquotes

import (
	"time"

	"github.com/dlclark/regexp2"
)

const (
	lsquo  = "\u2018"
	rsquo  = "\u2019"
	ldquo  = "\u201c"
	rdquo  = "\u201d"
	prime  = "\u2032"
	dprime = "\u2033"
	tprime = "\u2034"
)

// asciiWord replaces \b and \B around curly quotes: regexp2 counts
// non-ASCII letters as word characters at boundaries, so Zoë's would keep
// an opening quote.
const asciiWord = `[A-Za-z0-9_]`

// matchTimeout bounds the backtracking rules on pathological input.
const matchTimeout = 2 * time.Second

type rule struct {
	re   *regexp2.Regexp
	repl string
}

func newRule(pattern, repl string, opts regexp2.RegexOptions) rule {
	re := regexp2.MustCompile(pattern, regexp2.ECMAScript|opts)
	re.MatchTimeout = matchTimeout
	return rule{re: re, repl: repl}
}

var rules = []rule{
	// triple prime
	newRule(`'''`, tprime, 0),
	// opening double quote
	newRule(`(\W|^)"(\S)`, "$1"+ldquo+"$2", 0),
	// closing double quote
	newRule(`(`+ldquo+`[^"]*)"([^"]*$|[^`+ldquo+`"]*`+ldquo+`)`, "$1"+rdquo+"$2", 0),
	// remaining double quote at the end of a word
	newRule(`([^0-9])"`, "$1"+rdquo, 0),
	// double prime
	newRule(`''`, dprime, 0),
	// opening single quote
	newRule(`(\W|^)'(\S)`, "$1"+lsquo+"$2", 0),
	// apostrophe inside a word
	newRule(`([a-z])'([a-z])`, "$1"+rsquo+"$2", regexp2.IgnoreCase),
	// closing single quote
	newRule(`((`+lsquo+`[^']*)|[a-z])'([^0-9]|$)`, "$1"+rsquo+"$3", regexp2.IgnoreCase),
	// abbreviated years like '93
	newRule(`(`+lsquo+`)([0-9]{2}[^`+rsquo+`]*)(`+lsquo+`([^0-9]|$)|$|`+rsquo+`[a-z])`, rsquo+"$2$3", regexp2.IgnoreCase),
	// backwards apostrophe
	newRule(`(^|(?<!`+asciiWord+`))`+lsquo+`(?=([^`+rsquo+`]*`+rsquo+`(?=`+asciiWord+`))*([^`+rsquo+lsquo+`]*\W[`+rsquo+lsquo+`](?=`+asciiWord+`)|[^`+rsquo+lsquo+`]*$))`, "$1"+rsquo, regexp2.IgnoreCase),
	// everything else is a prime
	newRule(`'`, prime, 0),
}

// String applies every rule, in order, to s.
func String(s string) string {
	for _, r := range rules {
		out, err := r.re.Replace(s, r.repl, -1, -1)
		if err != nil {
			// Only a match timeout lands here; keep the text as it was.
			continue
		}
		s = out
	}
	return s
}
