package dom

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const testPage = `<!doctype html>
<html><body>
<nav>
  <a href="#" class="nav-link active" data-tab="dashboard">Dashboard</a>
  <a href="#" class="nav-link" data-tab="properties">Properties</a>
  <a href="#" data-tab="reports">Reports</a>
</nav>
<div id="main-content"><h2>Overview</h2><canvas id="revenueChart"></canvas><div id="occupancyChart"></div></div>
</body></html>`

func mustParse(t *testing.T) *Document {
	t.Helper()
	d, err := Parse(testPage)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return d
}

func TestParseRequiresContentRegion(t *testing.T) {
	_, err := Parse(`<html><body><p>no region</p></body></html>`)
	if !errors.Is(err, ErrNoContentRegion) {
		t.Fatalf("Parse() error = %v; want ErrNoContentRegion", err)
	}
}

func TestSetActiveMarksExactlyOne(t *testing.T) {
	d := mustParse(t)

	for _, tab := range []string{"properties", "reports", "dashboard"} {
		if !d.SetActive(tab) {
			t.Fatalf("SetActive(%q) = false; want true", tab)
		}
		if got, want := d.ActiveTabs(), []string{tab}; !reflect.DeepEqual(got, want) {
			t.Fatalf("ActiveTabs() after SetActive(%q) = %v; want %v", tab, got, want)
		}
	}
}

func TestSetActiveUnknownClearsAll(t *testing.T) {
	d := mustParse(t)
	if d.SetActive("missing") {
		t.Fatal("SetActive(missing) = true; want false")
	}
	if got := d.ActiveTabs(); len(got) != 0 {
		t.Fatalf("ActiveTabs() = %v; want none", got)
	}
}

func TestSetActiveKeepsOtherClasses(t *testing.T) {
	d := mustParse(t)
	d.SetActive("properties")
	page := d.Render()
	if !strings.Contains(page, `class="nav-link" data-tab="dashboard"`) {
		t.Fatalf("dashboard link lost nav-link class: %s", page)
	}
	if !strings.Contains(page, `class="nav-link active" data-tab="properties"`) {
		t.Fatalf("properties link not marked active: %s", page)
	}
}

func TestTabsInDocumentOrder(t *testing.T) {
	d := mustParse(t)
	want := []string{"dashboard", "properties", "reports"}
	if got := d.Tabs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Tabs() = %v; want %v", got, want)
	}
}

func TestRestoreSnapshotIsExact(t *testing.T) {
	d := mustParse(t)
	initial := d.Content()
	if initial != d.Snapshot() {
		t.Fatalf("Snapshot() = %q; want %q", d.Snapshot(), initial)
	}

	if err := d.SetContent(`<p>somewhere else</p>`); err != nil {
		t.Fatalf("SetContent() error = %v", err)
	}
	if err := d.SetContent(`<section>and again</section>`); err != nil {
		t.Fatalf("SetContent() error = %v", err)
	}
	d.RestoreSnapshot()
	if got := d.Content(); got != initial {
		t.Fatalf("Content() after restore = %q; want %q", got, initial)
	}
}

func TestSetContentReplacesWholesale(t *testing.T) {
	d := mustParse(t)
	if err := d.SetContent(`<section id="tenants">Tenants</section>`); err != nil {
		t.Fatalf("SetContent() error = %v", err)
	}
	if got, want := d.Content(), `<section id="tenants">Tenants</section>`; got != want {
		t.Fatalf("Content() = %q; want %q", got, want)
	}
	if d.HasCanvas("revenueChart") {
		t.Fatal("HasCanvas(revenueChart) = true after replacement; want false")
	}
}

func TestHasCanvasRequiresCanvasElement(t *testing.T) {
	d := mustParse(t)
	if !d.HasCanvas("revenueChart") {
		t.Fatal("HasCanvas(revenueChart) = false; want true")
	}
	if d.HasCanvas("occupancyChart") {
		t.Fatal("HasCanvas(occupancyChart) = true for a div; want false")
	}
	if d.HasCanvas("nope") {
		t.Fatal("HasCanvas(nope) = true; want false")
	}
}

func TestExtractMain(t *testing.T) {
	got, ok := ExtractMain(`<html><body><header>h</header><main>X</main><main>Y</main></body></html>`)
	if !ok || got != "X" {
		t.Fatalf("ExtractMain() = %q, %v; want %q, true", got, ok, "X")
	}

	got, ok = ExtractMain(`<div role="main"><p>list</p></div>`)
	if !ok || got != "<p>list</p>" {
		t.Fatalf("ExtractMain(role=main) = %q, %v; want %q, true", got, ok, "<p>list</p>")
	}

	if _, ok := ExtractMain(`<div>no landmark</div>`); ok {
		t.Fatal("ExtractMain() ok = true for document without main")
	}
}
