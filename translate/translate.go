// File: translate/translate.go
// Author: momentics <momentics@gmail.com>
//
// Locale-aware formatting of diagnostics and error strings.

package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("[translate] locale: %v", err)
	}
	if len(locales) == 0 {
		locales = []string{"en-US"}
	}
	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From formats an en-US Sprintf() format in the process locale.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
