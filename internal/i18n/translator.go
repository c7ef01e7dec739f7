// Package i18n provides the translation tables for the cashback screen.
// Keys use the "section.key" format; a missing key resolves to the key
// itself so untranslated strings stay visible instead of failing.
package i18n

import "sync"

// Language is a supported UI language.
type Language string

const (
	Spanish Language = "es"
	English Language = "en"
)

// DefaultLanguage is the screen's startup language.
const DefaultLanguage = Spanish

var tables = map[Language]map[string]string{
	Spanish: {
		"common.cashback":    "Cashback",
		"common.resumen":     "Resumen",
		"common.promociones": "Promociones",
		"common.filtrar":     "Filtrar",
		"common.cancelar":    "Cancelar",
		"common.aplicar":     "Aplicar",
		"common.cerrar":      "Cerrar",
		"common.continuar":   "Continuar",
		"common.verMas":      "Ver más",
		"common.cargando":    "Cargando...",
		"common.volver":      "Volver",

		"card.enTuTarjeta":        "En tu tarjeta",
		"card.seleccionarTarjeta": "Seleccionar tarjeta",

		"cashback.acumuladoMensual":          "Acumulado mensual",
		"cashback.acumuladoAnual":            "Acumulado anual",
		"cashback.mensualPorEstablecimiento": "Mensual por establecimiento",

		"transactions.movimientos":           "Movimientos",
		"transactions.montosEnMXN":           "Montos expresados en MXN",
		"transactions.filtrarMovimientos":    "Filtrar movimientos",
		"transactions.noHayMovimientos":      "No hay movimientos en este periodo",
		"transactions.cargandoMas":           "Cargando más movimientos...",
		"transactions.cargandoTransacciones": "Cargando transacciones...",

		"filters.periodo":            "Periodo",
		"filters.establecimiento":    "Establecimiento",
		"filters.todos":              "Todos",
		"filters.supermercados":      "Supermercados",
		"filters.restaurantes":       "Restaurantes",
		"filters.farmacias":          "Farmacias",
		"filters.telecomunicaciones": "Telecomunicaciones",

		"promotions.exclusivas":        "Promociones exclusivas",
		"promotions.rockstarRewards":   "RockStar Rewards",
		"promotions.verMasPromociones": "Ver más promociones",

		"errors.errorCargarDatos":         "No se pudieron cargar los datos. Por favor, intenta nuevamente más tarde.",
		"errors.errorCargarTransacciones": "No se pudieron cargar las transacciones. Por favor, intenta nuevamente.",
		"errors.errorCalculos":            "Ocurrió un error al calcular el cashback. Por favor, intenta nuevamente.",
	},
	English: {
		"common.cashback":    "Cashback",
		"common.resumen":     "Summary",
		"common.promociones": "Promotions",
		"common.filtrar":     "Filter",
		"common.cancelar":    "Cancel",
		"common.aplicar":     "Apply",
		"common.cerrar":      "Close",
		"common.continuar":   "Continue",
		"common.verMas":      "See more",
		"common.cargando":    "Loading...",
		"common.volver":      "Back",

		"card.enTuTarjeta":        "On your card",
		"card.seleccionarTarjeta": "Select card",

		"cashback.acumuladoMensual":          "Monthly total",
		"cashback.acumuladoAnual":            "Annual total",
		"cashback.mensualPorEstablecimiento": "Monthly by merchant",

		"transactions.movimientos":           "Transactions",
		"transactions.montosEnMXN":           "Amounts in MXN",
		"transactions.filtrarMovimientos":    "Filter transactions",
		"transactions.noHayMovimientos":      "No transactions in this period",
		"transactions.cargandoMas":           "Loading more transactions...",
		"transactions.cargandoTransacciones": "Loading transactions...",

		"filters.periodo":            "Period",
		"filters.establecimiento":    "Merchant",
		"filters.todos":              "All",
		"filters.supermercados":      "Supermarkets",
		"filters.restaurantes":       "Restaurants",
		"filters.farmacias":          "Pharmacies",
		"filters.telecomunicaciones": "Telecommunications",

		"promotions.exclusivas":        "Exclusive promotions",
		"promotions.rockstarRewards":   "RockStar Rewards",
		"promotions.verMasPromociones": "See more promotions",

		"errors.errorCargarDatos":         "Could not load data. Please try again later.",
		"errors.errorCargarTransacciones": "Could not load transactions. Please try again.",
		"errors.errorCalculos":            "An error occurred while calculating cashback. Please try again.",
	},
}

// Translator resolves translation keys for a selected language.
type Translator struct {
	mu   sync.RWMutex
	lang Language
}

// New creates a Translator in the default language.
func New() *Translator {
	return &Translator{lang: DefaultLanguage}
}

// SetLanguage switches the active language. Unsupported languages are
// ignored.
func (t *Translator) SetLanguage(lang Language) {
	if _, ok := tables[lang]; !ok {
		return
	}
	t.mu.Lock()
	t.lang = lang
	t.mu.Unlock()
}

// Language returns the active language.
func (t *Translator) Language() Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// T resolves a "section.key" lookup. Missing keys return the key
// itself as a visible fallback.
func (t *Translator) T(key string) string {
	t.mu.RLock()
	lang := t.lang
	t.mu.RUnlock()

	if v, ok := tables[lang][key]; ok {
		return v
	}
	return key
}

// TableFor returns a copy of a specific language's table. The second
// return is false for unsupported languages.
func TableFor(lang Language) (map[string]string, bool) {
	table, ok := tables[lang]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out, true
}

// Table returns a copy of the active language's full table, for the
// /v1/translations endpoint.
func (t *Translator) Table() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]string, len(tables[t.lang]))
	for k, v := range tables[t.lang] {
		out[k] = v
	}
	return out
}
