package contracts

import "testing"

func TestEvent_IdentityKey(t *testing.T) {
	a := Event{Title: "Company X Cuts Production", Source: "鉅亨網", PublishedAt: "2026-03-10 09:00:00"}
	b := Event{Title: "company x cuts production", Source: "鉅亨網", PublishedAt: "2026-03-10 11:30:00"}
	c := Event{Title: "Company X Cuts Production", Source: "TWSE"}

	if a.IdentityKey() != b.IdentityKey() {
		t.Errorf("case and timestamp must not affect identity: %q != %q", a.IdentityKey(), b.IdentityKey())
	}
	if a.IdentityKey() == c.IdentityKey() {
		t.Errorf("different sources must not collide: %q", a.IdentityKey())
	}
}

func TestEvent_IdentityKey_TrimsWhitespace(t *testing.T) {
	a := Event{Title: "  Company X Cuts Production ", Source: " TWSE"}
	b := Event{Title: "Company X Cuts Production", Source: "TWSE"}
	if a.IdentityKey() != b.IdentityKey() {
		t.Errorf("surrounding whitespace must not affect identity: %q != %q", a.IdentityKey(), b.IdentityKey())
	}
}

func TestEvent_ComposedText(t *testing.T) {
	ev := Event{Title: "Company X cuts production", Source: "TWSE", PublishedAt: "2026-03-10 09:00:00"}
	want := "Company X cuts production | TWSE | 2026-03-10 09:00:00"
	if got := ev.ComposedText(); got != want {
		t.Errorf("ComposedText() = %q, want %q", got, want)
	}
}
