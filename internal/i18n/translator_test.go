package i18n_test

import (
	"testing"

	"github.com/rockstar-cards/cashback-bfa-go/internal/i18n"
)

func TestTranslator_Lookup(t *testing.T) {
	tr := i18n.New()

	if got := tr.T("errors.errorCargarDatos"); got == "" || got == "errors.errorCargarDatos" {
		t.Errorf("expected a translated string, got %q", got)
	}
}

func TestTranslator_MissingKeyReturnsKey(t *testing.T) {
	tr := i18n.New()

	if got := tr.T("nope.doesNotExist"); got != "nope.doesNotExist" {
		t.Errorf("expected key fallback, got %q", got)
	}
}

func TestTranslator_SetLanguage(t *testing.T) {
	tr := i18n.New()

	tr.SetLanguage(i18n.English)
	if got := tr.T("filters.todos"); got != "All" {
		t.Errorf("expected english 'All', got %q", got)
	}

	// Unsupported languages are ignored.
	tr.SetLanguage(i18n.Language("fr"))
	if tr.Language() != i18n.English {
		t.Errorf("expected language to stay english, got %s", tr.Language())
	}
}
