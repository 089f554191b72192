package locale

import (
	"sync"
	"testing"
)

func TestPrinterSelectsLanguage(t *testing.T) {
	b, err := New("en")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := b.Printer("ru").T("menu.back"); got != "⬅ Назад" {
		t.Fatalf("ru = %q", got)
	}
	if got := b.Printer("en-US").T("menu.back"); got != "⬅ Back" {
		t.Fatalf("en-US = %q", got)
	}
	if got := b.Printer("de").T("menu.back"); got != "⬅ Back" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestFallbackFromConfig(t *testing.T) {
	b, err := New("ru")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := b.Printer("").T("listing.empty"); got != "Здесь пока ничего не добавлено" {
		t.Fatalf("got %q", got)
	}
}

func TestTemplateData(t *testing.T) {
	b, _ := New("en")
	got := b.Printer("en").T("start.greeting", map[string]any{"Name": "Ann"})
	if got != "Hello, Ann\nChoose a command to get started:" {
		t.Fatalf("got %q", got)
	}
	if got := b.Printer("en").T("no.such.id"); got != "no.such.id" {
		t.Fatalf("unknown id = %q", got)
	}
}

func TestLanguagesHaveSameKeys(t *testing.T) {
	b, _ := New("en")
	if len(b.Languages()) != 2 {
		t.Fatalf("languages = %v", b.Languages())
	}
	ids := []string{"menu.favourites", "menu.films", "menu.cinemas", "menu.comedy", "menu.action",
		"menu.random", "menu.back", "menu.send_location", "listing.empty", "favourites.added", "favourites.removed"}
	for _, p := range b.Printers() {
		for _, id := range ids {
			if p.T(id) == id {
				t.Fatalf("missing %s", id)
			}
		}
	}
}

func TestPrintersAreIndependentUnderConcurrency(t *testing.T) {
	b, _ := New("en")
	var wg sync.WaitGroup
	errs := make(chan string, 100)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if got := b.Printer("ru").T("menu.back"); got != "⬅ Назад" {
				errs <- got
			}
		}()
		go func() {
			defer wg.Done()
			if got := b.Printer("en").T("menu.back"); got != "⬅ Back" {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatalf("cross-request leak: %q", e)
	}
}
